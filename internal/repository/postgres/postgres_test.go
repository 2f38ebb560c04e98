package postgres_test

import (
	"VLINKS-Backend/internal/database/dbtest"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/internal/repository/postgres"
	"VLINKS-Backend/internal/repository/storagetest"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func openSQLite(t *testing.T) repository.Storage {
	return postgres.New(dbtest.NewSQLite(t), zap.NewNop())
}

func TestPostgresStorage_SQLite(t *testing.T) {
	storagetest.Run(t, openSQLite)
}

func TestPostgresStorage_Ping(t *testing.T) {
	assert.NoError(t, openSQLite(t).Ping(context.Background()))
}
