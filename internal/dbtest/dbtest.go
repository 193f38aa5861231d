// Package dbtest opens throwaway in-memory databases for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"matchday/internal/db"
	"matchday/internal/domain"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated SQLite database private to t.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // SQLite serializes writers anyway
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// SeedAccount inserts an account holding coins and returns it.
func SeedAccount(t *testing.T, gdb *gorm.DB, handle string, coins int64) *domain.Account {
	t.Helper()
	acc := domain.NewAccount(handle+"@example.com", handle, "x", coins)
	require.NoError(t, gdb.Create(&acc).Error)
	return &acc
}

// Balance reads the current coin balance of an account.
func Balance(t *testing.T, gdb *gorm.DB, accountID uint) int64 {
	t.Helper()
	var acc domain.Account
	require.NoError(t, gdb.First(&acc, accountID).Error)
	return acc.Coins
}
