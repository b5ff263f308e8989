package handler

import (
	"bytes"
	"net/http"

	"quickcart/internal/middleware"
	"quickcart/internal/receipt"
	"quickcart/internal/repository"
	"quickcart/internal/usecase"

	"github.com/labstack/echo/v4"
)

// アカウントページと注文履歴
type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, sessions repository.SessionRepository) {
	login := middleware.RequireLogin(sessions)

	e.GET("/account", h.account, login)

	g := e.Group("/orders")
	g.Use(login)
	g.GET("/:id", h.detail)
	g.GET("/:id/receipt.xlsx", h.downloadReceipt)
}

func (h *OrderHandler) account(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Account(c.Request().Context(), sid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Order(c.Request().Context(), sid, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 領収書をxlsxで返す
func (h *OrderHandler) downloadReceipt(c echo.Context) error {
	sid, ok := getSessionID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	order, err := h.uc.Order(c.Request().Context(), sid, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	//書き込み途中で失敗したら500を返せるように一度バッファする
	var buf bytes.Buffer
	if err := receipt.Write(&buf, order); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+receipt.Filename(order)+`"`)
	return c.Blob(http.StatusOK, receipt.ContentType, buf.Bytes())
}
