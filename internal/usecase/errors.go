package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// handlerがステータスとメッセージに変換するエラー
type HTTPError struct {
	Status  int
	Message string
	// フォームの項目ごとのエラー
	Fields map[string]string
	// クライアントが遷移すべきページ
	Redirect string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

// 入力エラー（400）
func NewFieldError(message string, fields map[string]string) error {
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Message: message,
		Fields:  fields,
	}
}

// リダイレクト先付き
func NewRedirectError(status int, message string, redirect string) error {
	return &HTTPError{
		Status:   status,
		Message:  message,
		Redirect: redirect,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 破壊的な操作の前に確認が必要（428）
type ConfirmationError struct {
	Title   string
	Message string
}

func (e *ConfirmationError) Error() string {
	return "confirmation required: " + e.Title
}

func AsConfirmationError(err error) (*ConfirmationError, bool) {
	var ce *ConfirmationError
	ok := errors.As(err, &ce)
	return ce, ok
}
