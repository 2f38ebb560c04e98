// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"VLINKS-Backend/internal/database"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLite opens a migrated in-memory SQLite database private to t.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, time.Now().UnixNano())

	log := zap.NewNop()
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(log, 0, logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// одно соединение: транзакции не конкурируют за блокировку
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db, log))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
