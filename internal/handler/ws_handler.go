package handler

import (
	"log/slog"
	"net/http"

	"quickcart/internal/middleware"
	"quickcart/internal/notify"
	"quickcart/internal/repository"
	"quickcart/internal/usecase"

	"github.com/labstack/echo/v4"
)

// カートバッジの websocket
type WSHandler struct {
	hub   *notify.Hub
	carts *usecase.CartUsecase
	log   *slog.Logger
}

// DI
func NewWSHandler(hub *notify.Hub, carts *usecase.CartUsecase, log *slog.Logger) *WSHandler {
	return &WSHandler{hub: hub, carts: carts, log: log}
}

func (h *WSHandler) RegisterRoutes(e *echo.Echo, sessions repository.SessionRepository) {
	e.GET("/ws/cart", h.cart, middleware.RequireLogin(sessions))
}

func (h *WSHandler) cart(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	count, err := h.carts.ItemCount(c.Request().Context(), sid)
	if err != nil {
		return writeError(c, err)
	}

	//アップグレード後はJSONを返せないのでログだけ
	if err := h.hub.Serve(c.Response(), c.Request(), sid, count); err != nil {
		h.log.WarnContext(c.Request().Context(), "websocket upgrade failed", "session_id", sid, "err", err)
	}
	return nil
}
