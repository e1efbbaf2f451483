// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the account store and creates its schema.

# Drivers

Two backends are supported, selected by DATABASE_TYPE:

  - sqlite (default): modernc.org/sqlite, DATABASE_URL is a file path
  - postgres: github.com/lib/pq, DATABASE_URL is a connection string

	dialect, err := db.ParseDialect(cfg.DatabaseType)
	conn, err := db.Open(dialect, cfg.DatabaseURL)

SQLite connections are capped at one so writers serialize; WAL and a busy
timeout are enabled.

# Placeholders

Queries are written with ? placeholders and passed through Rebind, which
rewrites them to $1, $2, ... for postgres:

	conn.QueryRowContext(ctx, conn.Rebind("SELECT id FROM app_user WHERE username = ?"), name)

# Migrations

The schema lives in embedded goose migrations, one directory per dialect
(migrations/sqlite, migrations/postgres). CreateSchema applies whatever is
pending:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call on every start. Applied versions are recorded in
goose_db_version; SchemaVersion reports the latest one.

# Tables

  - app_user: accounts (unique username, bcrypt hash, admin flag)
  - registration_token: invite tokens (unique token, is_used, uses_left)
*/
package db
