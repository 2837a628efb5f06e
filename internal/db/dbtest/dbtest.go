// Package dbtest opens isolated in-memory stores for tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"modernnotes/internal/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var counter atomic.Int64

// Open returns a migrated in-memory sqlite database unique to this call.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:modernnotes-%d?mode=memory&cache=shared&_foreign_keys=1", counter.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), db.Config())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the shared in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}
