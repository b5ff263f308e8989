package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"quickcart/internal/catalog"
	"quickcart/internal/config"
	"quickcart/internal/handler"
	"quickcart/internal/infra/db"
	infraRepo "quickcart/internal/infra/repository"
	"quickcart/internal/kvstore"
	"quickcart/internal/logger"
	"quickcart/internal/middleware"
	"quickcart/internal/notify"
	"quickcart/internal/pricing"
	"quickcart/internal/repository"
	"quickcart/internal/server"
	"quickcart/internal/usecase"
	auth "quickcart/internal/usecase/auth_usecase"
	"quickcart/internal/validator"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	//.envは任意
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Service: "quickcart-api",
		Env:     cfg.GoEnv,
		Level:   cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続（使う設定のときだけ）
	var gormDB *gorm.DB
	if cfg.NeedsPostgres() {
		gormDB, err = db.Connect(db.DSN(cfg.DatabaseURL))
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	store, closeStore, err := openStore(ctx, cfg, gormDB)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("kv store ready", "backend", cfg.KVBackend)

	//Repository生成
	carts := infraRepo.NewCartKVRepository(store, log)
	sessions := infraRepo.NewSessionKVRepository(store)
	orders := infraRepo.NewOrderKVRepository(store, log)
	users := newUserRepository(cfg, store, gormDB, log)

	//外部API
	catalogClient := catalog.NewClient(catalog.Options{
		BaseURL: cfg.CatalogBaseURL,
		Timeout: cfg.CatalogTimeout,
	}, log)

	hub := notify.NewHub(log, cfg.WSAllowedOrigins...)
	defer hub.Close()

	policy := pricing.Policy{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		ShippingFee:           cfg.ShippingFee,
		TaxRate:               cfg.TaxRate,
	}
	clock := usecase.SystemClock{}

	//Usecase生成
	cartUC := usecase.NewCartUsecase(carts, catalogClient, hub, policy, log)
	productUC := usecase.NewProductUsecase(catalogClient, log)
	checkoutUC := usecase.NewCheckoutUsecase(
		carts, orders, sessions,
		validator.NewCheckoutValidator(),
		usecase.NewRandomPayment(cfg.PaymentSuccessRate),
		clock, hub, policy, log,
	)
	orderUC := usecase.NewOrderUsecase(orders, sessions, log)
	contactUC := usecase.NewContactUsecase(validator.NewContactValidator(), log)

	//bcrypt（会員登録：Hash / ログイン：Verify）
	authValidator := validator.NewAuthValidator()
	registerUC := auth.NewRegisterUserUsecase(users, sessions, authValidator, auth.NewBcryptPasswordHasher(cfg.BcryptCost), clock, log)
	loginUC := auth.NewLoginUsecase(users, sessions, authValidator, auth.NewBcryptPasswordVerifier(), log)
	sessionUC := auth.NewSessionUsecase(sessions, carts, hub, log)

	//Handler生成
	e := server.New(server.Options{
		Session: middleware.SessionConfig{
			Tokens:       middleware.NewSessionTokens(cfg.JWTSecret, cfg.SessionTTL),
			CookieSecure: cfg.CookieSecure,
		},
		Sessions: sessions,
		Handlers: server.Handlers{
			Health:   handler.NewHealthHandler(catalogClient),
			Product:  handler.NewProductHandler(productUC),
			Contact:  handler.NewContactHandler(contactUC),
			Auth:     handler.NewAuthHandler(registerUC, loginUC, sessionUC),
			Cart:     handler.NewCartHandler(cartUC),
			Checkout: handler.NewCheckoutHandler(checkoutUC),
			Order:    handler.NewOrderHandler(orderUC),
			WS:       handler.NewWSHandler(hub, cartUC, log),
		},
		Log: log,
	})

	//Server起動
	addr := cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}
	return server.Start(ctx, e, addr, log)
}

// KV_BACKEND に応じたストア
func openStore(ctx context.Context, cfg config.Config, gormDB *gorm.DB) (kvstore.Store, func(), error) {
	switch cfg.KVBackend {
	case config.KVBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return kvstore.NewRedisStore(client, cfg.RedisTTL), func() { _ = client.Close() }, nil
	case config.KVBackendPostgres:
		return kvstore.NewGormStore(gormDB), func() {}, nil
	default:
		return kvstore.NewMemoryStore(), func() {}, nil
	}
}

func newUserRepository(cfg config.Config, store kvstore.Store, gormDB *gorm.DB, log *slog.Logger) repository.UserRepository {
	if cfg.UserStore == config.UserStorePostgres {
		return infraRepo.NewUserGormRepository(gormDB)
	}
	return infraRepo.NewUserKVRepository(store, log)
}
