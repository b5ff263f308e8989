package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"quickcart/internal/repository"
	"quickcart/internal/usecase"
)

const msgInvalidCredentials = "Invalid email or password"

// handlerからusecaseに渡す入力
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type LoginUsecase struct {
	userRepo  repository.UserRepository
	sessions  repository.SessionRepository
	validator AuthValidator
	verifier  PasswordVerifier
	log       *slog.Logger
}

// DI
func NewLoginUsecase(
	userRepo repository.UserRepository,
	sessions repository.SessionRepository,
	validator AuthValidator,
	verifier PasswordVerifier,
	log *slog.Logger,
) *LoginUsecase {
	return &LoginUsecase{
		userRepo:  userRepo,
		sessions:  sessions,
		validator: validator,
		verifier:  verifier,
		log:       log,
	}
}

// ログイン処理を実行する
func (u *LoginUsecase) Execute(ctx context.Context, sessionID string, in LoginInput) (StatusOutput, error) {
	var out StatusOutput

	if fields := u.validator.ValidateLogin(in); len(fields) > 0 {
		return out, usecase.NewFieldError("invalid input", fields)
	}

	//emailでユーザー取得
	user, err := u.userRepo.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return out, invalidCredentials()
		}
		u.log.ErrorContext(ctx, "find user failed", "err", err)
		return out, usecase.NewHTTPError(http.StatusInternalServerError, "store error")
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return out, invalidCredentials()
	}

	if err := u.sessions.MarkLoggedIn(ctx, sessionID, user.Name, user.Email); err != nil {
		u.log.ErrorContext(ctx, "mark logged in failed", "session_id", sessionID, "err", err)
		return out, usecase.NewHTTPError(http.StatusInternalServerError, "store error")
	}

	out.LoggedIn = true
	out.Username = user.Name
	out.Message = "Login successful!"
	return out, nil
}

func invalidCredentials() error {
	return &usecase.HTTPError{
		Status:  http.StatusUnauthorized,
		Message: msgInvalidCredentials,
		Fields:  map[string]string{"email": msgInvalidCredentials},
	}
}
