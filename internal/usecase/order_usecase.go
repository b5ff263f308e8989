package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"quickcart/internal/domain/model"
	repo "quickcart/internal/repository"
)

// アカウントページ
type AccountView struct {
	Username string        `json:"username"`
	Orders   []model.Order `json:"orders"`
}

type OrderUsecase struct {
	orders   repo.OrderRepository
	sessions repo.SessionRepository
	log      *slog.Logger
}

// DI
func NewOrderUsecase(orders repo.OrderRepository, sessions repo.SessionRepository, log *slog.Logger) *OrderUsecase {
	return &OrderUsecase{orders: orders, sessions: sessions, log: log}
}

// ログイン中ユーザーの情報（注文履歴の持ち主）
func (u *OrderUsecase) session(ctx context.Context, sessionID string) (model.Session, error) {
	s, err := u.sessions.Find(ctx, sessionID)
	if err != nil {
		u.log.ErrorContext(ctx, "load session failed", "session_id", sessionID, "err", err)
		return s, NewHTTPError(http.StatusInternalServerError, "store error")
	}
	if !s.LoggedIn || s.Email == "" {
		return s, NewRedirectError(http.StatusUnauthorized, "unauthorized", "/login.html")
	}
	return s, nil
}

func (u *OrderUsecase) Account(ctx context.Context, sessionID string) (AccountView, error) {
	s, err := u.session(ctx, sessionID)
	if err != nil {
		return AccountView{}, err
	}

	orders, err := u.orders.List(ctx, s.Email)
	if err != nil {
		u.log.ErrorContext(ctx, "list orders failed", "session_id", sessionID, "err", err)
		return AccountView{}, NewHTTPError(http.StatusInternalServerError, "store error")
	}

	return AccountView{Username: s.DisplayName(), Orders: orders}, nil
}

func (u *OrderUsecase) Order(ctx context.Context, sessionID string, orderID string) (model.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s, err := u.session(ctx, sessionID)
	if err != nil {
		return model.Order{}, err
	}

	o, err := u.orders.FindByID(ctx, s.Email, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "Order not found")
	}
	if err != nil {
		u.log.ErrorContext(ctx, "find order failed", "session_id", sessionID, "order_id", orderID, "err", err)
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "store error")
	}
	return o, nil
}
