package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/secureworks/taegis-magic/internal/bootstrap/config"
	"github.com/secureworks/taegis-magic/internal/domain/evidence"
)

func TestOpenCreatesParentDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), ".taegis_magic", "evidence.sqlite")

	db, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenRejectsEphemeralDSN(t *testing.T) {
	for _, dsn := range []string{
		":memory:",
		"file::memory:?cache=shared",
		"file:evidence.sqlite?mode=memory",
	} {
		_, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
		if !errors.Is(err, evidence.ErrEphemeralDatabase) {
			t.Fatalf("Open(%q) error = %v, want ErrEphemeralDatabase", dsn, err)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "postgres", DSN: "whatever"})
	if err == nil {
		t.Fatalf("Open() with unsupported driver should fail")
	}
}
