package testutil

import (
	"testing"

	"boxing-arena-api/internal/database"

	"gorm.io/gorm"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
func NewInMemoryDB() (*gorm.DB, error) {
	return database.Open(database.Options{Path: ":memory:", LogLevel: "silent"})
}

// MustInMemoryDB is NewInMemoryDB for tests; the connection is closed on cleanup.
func MustInMemoryDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := NewInMemoryDB()
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
