// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"testing"

	"recipebox/internal/db"
	"recipebox/internal/logger"

	"gorm.io/gorm"
)

// New returns a migrated in-memory sqlite database with the default
// categories seeded. The pool holds a single connection so every query sees
// the same memory database.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(db.Options{
		Driver:       "sqlite",
		DSN:          ":memory:?_pragma=foreign_keys(1)",
		MaxOpenConns: 1,
	}, logger.Discard())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	if err := db.SeedCategories(gdb, logger.Discard()); err != nil {
		t.Fatalf("seed test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}
