package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"quickcart/internal/middleware"
	"quickcart/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const shutdownTimeout = 10 * time.Second

type Options struct {
	Session  middleware.SessionConfig
	Sessions repository.SessionRepository
	Handlers Handlers
	Log      *slog.Logger
}

// New はミドルウェアとルートを組み立てたechoを返す。
func New(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Session(opts.Session))
	e.Use(middleware.RequestLogger(opts.Log))

	RegisterRoutes(e, opts.Handlers, opts.Sessions)
	return e
}

// Start は ctx が終わるまで待ち、終わったらgracefulに止める。
func Start(ctx context.Context, e *echo.Echo, addr string, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
