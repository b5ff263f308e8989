package kvstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"quickcart/internal/kvstore"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// QC_INTEGRATION=1 のときだけDockerのpostgresで動かす
func setupGorm(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("QC_INTEGRATION") != "1" {
		t.Skip("set QC_INTEGRATION=1 to run postgres integration tests")
	}

	ctx := context.Background()
	pg, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestGormStore(t *testing.T) {
	db := setupGorm(t)

	s := kvstore.NewGormStore(db)
	require.NoError(t, s.Migrate())

	exerciseStore(t, s)
}
