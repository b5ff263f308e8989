package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// カタログのサーキットブレーカー状態
type BreakerState interface {
	State() string
}

type HealthHandler struct {
	catalog BreakerState
}

// DI
func NewHealthHandler(catalog BreakerState) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Catalog string `json:"catalog"`
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.healthz)
}

func (h *HealthHandler) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Catalog: h.catalog.State()})
}
