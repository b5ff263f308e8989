package server

import (
	"quickcart/internal/handler"
	"quickcart/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health   *handler.HealthHandler
	Product  *handler.ProductHandler
	Contact  *handler.ContactHandler
	Auth     *handler.AuthHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	WS       *handler.WSHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, sessions repository.SessionRepository) {
	//公開
	h.Health.RegisterRoutes(e)
	h.Product.RegisterRoutes(e)
	h.Contact.RegisterRoutes(e)

	//ログイン・登録（GuestOnly）
	h.Auth.RegisterRoutes(e, sessions)

	//ログイン必須
	h.Cart.RegisterRoutes(e, sessions)
	h.Checkout.RegisterRoutes(e, sessions)
	h.Order.RegisterRoutes(e, sessions)
	h.WS.RegisterRoutes(e, sessions)
}
