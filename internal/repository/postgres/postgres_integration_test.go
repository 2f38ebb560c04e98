//go:build integration

package postgres_test

import (
	"VLINKS-Backend/internal/database"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/internal/repository/postgres"
	"VLINKS-Backend/internal/repository/storagetest"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := pgcontainer.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		pgcontainer.WithDatabase("vlinks"),
		pgcontainer.WithUsername("vlinks"),
		pgcontainer.WithPassword("vlinks"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := zap.NewNop()
	db, err := gorm.Open(pgdriver.Open(dsn), database.GormConfig(log, 0, logger.Silent))
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, log))

	t.Cleanup(func() { _ = database.Close(db, log) })
	return db
}

func TestPostgresStorage_Postgres(t *testing.T) {
	db := startPostgres(t)

	storagetest.Run(t, func(t *testing.T) repository.Storage {
		err := db.Exec(`TRUNCATE webhook_logs, bookings, clicks, links, link_templates, videos, domains, settings RESTART IDENTITY CASCADE`).Error
		require.NoError(t, err)
		return postgres.New(db, zap.NewNop())
	})
}
