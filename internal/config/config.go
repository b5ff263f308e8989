package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KVBackendMemory   = "memory"
	KVBackendRedis    = "redis"
	KVBackendPostgres = "postgres"

	UserStoreKV       = "kv"
	UserStorePostgres = "postgres"

	devJWTSecret = "dev-secret-change-me"
)

// Configはアプリ全体の設定
type Config struct {
	Port     string // サーバーポート（8080）
	GoEnv    string // dev/prod
	LogLevel string // debug/info/warn/error

	JWTSecret    string        // セッショントークン署名シークレット
	SessionTTL   time.Duration // セッショントークンの有効期限
	CookieSecure bool          // Secure属性を付けるか

	CatalogBaseURL string        // 商品APIのURL
	CatalogTimeout time.Duration // 商品APIのタイムアウト

	WSAllowedOrigins []string // 同一オリジン以外に許可する websocket の Origin

	KVBackend     string // memory/redis/postgres
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration // 0なら期限なし

	DatabaseURL string // 空なら POSTGRES_* から組み立てる
	UserStore   string // kv/postgres

	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	TaxRate               decimal.Decimal

	PaymentSuccessRate float64
	BcryptCost         int
}

func (c Config) IsProd() bool {
	return c.GoEnv == "prod"
}

// Loadは環境変数
func Load() (Config, error) {
	var err error
	cfg := Config{
		Port:     getenv("PORT", "8080"),
		GoEnv:    getenv("GO_ENV", "dev"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		CatalogBaseURL: getenv("CATALOG_BASE_URL", "https://fakestoreapi.com"),

		KVBackend:     strings.ToLower(getenv("KV_BACKEND", KVBackendMemory)),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		UserStore:   strings.ToLower(getenv("USER_STORE", UserStoreKV)),
	}

	cfg.WSAllowedOrigins = listEnv("WS_ALLOWED_ORIGINS")

	if cfg.SessionTTL, err = durationEnv("SESSION_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = boolEnv("COOKIE_SECURE", false); err != nil {
		return Config{}, err
	}
	if cfg.CatalogTimeout, err = durationEnv("CATALOG_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.RedisTTL, err = durationEnv("REDIS_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.FreeShippingThreshold, err = decimalEnv("FREE_SHIPPING_THRESHOLD", "50"); err != nil {
		return Config{}, err
	}
	if cfg.ShippingFee, err = decimalEnv("SHIPPING_FEE", "5.99"); err != nil {
		return Config{}, err
	}
	if cfg.TaxRate, err = decimalEnv("TAX_RATE", "0.08"); err != nil {
		return Config{}, err
	}
	if cfg.PaymentSuccessRate, err = floatEnv("PAYMENT_SUCCESS_RATE", 0.9); err != nil {
		return Config{}, err
	}
	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", 0); err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		if cfg.IsProd() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = devJWTSecret
	}
	switch cfg.KVBackend {
	case KVBackendMemory, KVBackendRedis, KVBackendPostgres:
	default:
		return Config{}, fmt.Errorf("KV_BACKEND must be one of memory, redis, postgres")
	}
	switch cfg.UserStore {
	case UserStoreKV, UserStorePostgres:
	default:
		return Config{}, fmt.Errorf("USER_STORE must be one of kv, postgres")
	}
	if cfg.PaymentSuccessRate < 0 || cfg.PaymentSuccessRate > 1 {
		return Config{}, fmt.Errorf("PAYMENT_SUCCESS_RATE must be between 0 and 1")
	}

	return cfg, nil
}

// postgres を使う設定か
func (c Config) NeedsPostgres() bool {
	return c.KVBackend == KVBackendPostgres || c.UserStore == UserStorePostgres
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

// カンマ区切り
func listEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return f, nil
}

func decimalEnv(key string, def string) (decimal.Decimal, error) {
	v := getenv(key, def)
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be number: %w", key, err)
	}
	return d, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be bool: %w", key, err)
	}
	return b, nil
}
