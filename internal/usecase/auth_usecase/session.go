package auth

import (
	"context"
	"log/slog"
	"net/http"

	"quickcart/internal/domain/model"
	"quickcart/internal/repository"
	"quickcart/internal/usecase"
)

// ログアウトとログイン状態の参照
type SessionUsecase struct {
	sessions repository.SessionRepository
	carts    repository.CartStore
	notifier usecase.CartNotifier
	log      *slog.Logger
}

// DI
func NewSessionUsecase(
	sessions repository.SessionRepository,
	carts repository.CartStore,
	notifier usecase.CartNotifier,
	log *slog.Logger,
) *SessionUsecase {
	return &SessionUsecase{sessions: sessions, carts: carts, notifier: notifier, log: log}
}

func (u *SessionUsecase) Status(ctx context.Context, sessionID string) (StatusOutput, error) {
	s, err := u.sessions.Find(ctx, sessionID)
	if err != nil {
		u.log.ErrorContext(ctx, "load session failed", "session_id", sessionID, "err", err)
		return StatusOutput{}, usecase.NewHTTPError(http.StatusInternalServerError, "store error")
	}
	return StatusOutput{LoggedIn: s.LoggedIn, Username: s.DisplayName()}, nil
}

// Logout はログインフラグ・ユーザー名・カートを消す。
func (u *SessionUsecase) Logout(ctx context.Context, sessionID string) (StatusOutput, error) {
	if err := u.sessions.Forget(ctx, sessionID); err != nil {
		u.log.ErrorContext(ctx, "forget session failed", "session_id", sessionID, "err", err)
		return StatusOutput{}, usecase.NewHTTPError(http.StatusInternalServerError, "store error")
	}
	if err := u.carts.Clear(ctx, sessionID); err != nil {
		u.log.ErrorContext(ctx, "clear cart failed", "session_id", sessionID, "err", err)
		return StatusOutput{}, usecase.NewHTTPError(http.StatusInternalServerError, "store error")
	}
	if u.notifier != nil {
		u.notifier.CartChanged(ctx, sessionID, 0)
	}

	return StatusOutput{LoggedIn: false, Username: model.GuestName, Message: "Logged out successfully"}, nil
}
