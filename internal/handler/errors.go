package handler

import (
	"net/http"

	"quickcart/internal/middleware"
	"quickcart/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error    string            `json:"error"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

// 確認ダイアログ（428）
type ConfirmResponse struct {
	Error   string `json:"error"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := usecase.AsConfirmationError(err); ok {
		return c.JSON(http.StatusPreconditionRequired, ConfirmResponse{
			Error:   "confirmation required",
			Title:   ce.Title,
			Message: ce.Message,
		})
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Fields: he.Fields, Redirect: he.Redirect})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// Sessionミドルウェアが入れたセッションID
func getSessionID(c echo.Context) (string, bool) {
	return middleware.SessionID(c)
}

// ?confirm=true
func confirmed(c echo.Context) bool {
	return c.QueryParam("confirm") == "true"
}
