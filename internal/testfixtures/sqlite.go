// Package testfixtures builds throwaway stores for tests.
package testfixtures

import (
	"path/filepath"
	"testing"

	"repairtrack/internal/infra"
	"repairtrack/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// NewSQLiteDB opens a migrated SQLite database in a temporary directory and
// closes it when the test ends.
func NewSQLiteDB(tb testing.TB) *gorm.DB {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "repairtrack.db")
	db, err := infra.NewDatabase("sqlite", path, false)
	if err != nil {
		tb.Fatalf("failed to open sqlite store: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedUser inserts a user with a low-cost bcrypt hash of password.
func SeedUser(tb testing.TB, db *gorm.DB, username, password string) *model.User {
	tb.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		tb.Fatalf("hash password: %v", err)
	}
	u := &model.User{Username: username, PasswordHash: string(hash)}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user %q: %v", username, err)
	}
	return u
}
