package validator

import (
	"regexp"
	"strings"

	auth "quickcart/internal/usecase/auth_usecase"
)

const (
	minPasswordLength = 6
	// bcrypt は72バイトを超える入力を扱えない
	maxPasswordLength = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() auth.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateSignup(in auth.SignupInput) map[string]string {
	fields := map[string]string{}

	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "Name is required"
	}
	if !isEmailLike(in.Email) {
		fields["email"] = "Please enter a valid email"
	}
	if msg := checkPasswordLength(in.Password); msg != "" {
		fields["password"] = msg
	}
	if in.Password != in.ConfirmPassword {
		fields["confirm_password"] = "Passwords do not match"
	}

	return orNil(fields)
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(in auth.LoginInput) map[string]string {
	fields := map[string]string{}

	if !isEmailLike(in.Email) {
		fields["email"] = "Please enter a valid email"
	}
	if msg := checkPasswordLength(in.Password); msg != "" {
		fields["password"] = msg
	}

	return orNil(fields)
}

func checkPasswordLength(p string) string {
	switch {
	case len(p) < minPasswordLength:
		return "Password must be at least 6 characters"
	case len(p) > maxPasswordLength:
		return "Password must be at most 72 characters"
	}
	return ""
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func orNil(fields map[string]string) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	return fields
}
