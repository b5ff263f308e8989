package middleware

import (
	"net/http"

	"quickcart/internal/repository"

	"github.com/labstack/echo/v4"
)

const (
	LoginPage = "/login.html"
	HomePage  = "/index.html"
)

// ログインしていなければ401 とログインページへの誘導を返す。
func RequireLogin(sessions repository.SessionRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, ok := SessionID(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Redirect: LoginPage})
			}

			s, err := sessions.Find(c.Request().Context(), sid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("store error"))
			}
			if !s.LoggedIn {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized", Redirect: LoginPage})
			}

			c.Set(CtxSessionKey, s)
			return next(c)
		}
	}
}

// ログイン済みならログイン・登録ページには入れない。
func GuestOnly(sessions repository.SessionRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, ok := SessionID(c)
			if !ok {
				return next(c)
			}

			s, err := sessions.Find(c.Request().Context(), sid)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, errorJSON("store error"))
			}
			if s.LoggedIn {
				return c.JSON(http.StatusConflict, errorResponse{Error: "already logged in", Redirect: HomePage})
			}

			return next(c)
		}
	}
}
