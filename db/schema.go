// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// goose keeps its FS and dialect in package state
var migrateMu sync.Mutex

// CreateSchema applies all pending migrations for the connection's dialect.
// Safe to call on every start; applied versions are tracked in goose_db_version.
func CreateSchema(d *DB) error {
	return Migrate(context.Background(), d)
}

// Migrate is CreateSchema with a caller supplied context
func Migrate(ctx context.Context, d *DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	dialect, dir := "sqlite3", "migrations/sqlite"
	if d.Dialect == Postgres {
		dialect, dir = "postgres", "migrations/postgres"
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if err := goose.UpContext(ctx, d.DB, dir); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SchemaVersion reports the latest applied migration
func SchemaVersion(ctx context.Context, d *DB) (int64, error) {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	dialect := "sqlite3"
	if d.Dialect == Postgres {
		dialect = "postgres"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, d.DB)
}

// gooseLogger routes migration output through slog
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	slog.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
}

func (gooseLogger) Fatalf(format string, v ...any) {
	slog.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "migrations")
	os.Exit(1)
}
