package db

import (
	"fmt"
	"os"

	"quickcart/internal/domain/model"
	"quickcart/internal/kvstore"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN は DATABASE_URL を最優先し、無ければ POSTGRES_* から組み立てる。
func DSN(databaseURL string) string {
	if databaseURL != "" {
		return databaseURL
	}

	host := getenv("POSTGRES_HOST", "localhost")
	port := getenv("POSTGRES_PORT", "5432")
	user := getenv("POSTGRES_USER", "postgres")
	pass := getenv("POSTGRES_PASSWORD", "postgres")
	name := getenv("POSTGRES_DB", "quickcart")
	ssl := getenv("POSTGRES_SSLMODE", "disable")

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pass, name, ssl,
	)
}

// Connect はDBに接続して *gorm.DB を返す。
// 一意制約違反を gorm.ErrDuplicatedKey で受け取れるようにする。
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
}

// Migrate は users と kv_entries を作る。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &kvstore.Entry{})
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
