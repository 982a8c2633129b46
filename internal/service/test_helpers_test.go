package service_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/saadjs/macrolog/internal/db"
	"github.com/saadjs/macrolog/internal/model"
	"github.com/saadjs/macrolog/internal/service"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "macrolog.db")
	sqldb, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return sqldb
}

func newTestUser(t *testing.T, sqldb *sql.DB, name string) model.User {
	t.Helper()
	u, err := service.CreateUser(sqldb, name)
	if err != nil {
		t.Fatalf("create user %q: %v", name, err)
	}
	return u
}
