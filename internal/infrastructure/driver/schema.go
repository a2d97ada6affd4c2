package driver

import (
	"context"
	"fmt"
)

var schemas = map[string][]string{
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) NOT NULL PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			created_at DATETIME(3) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(64) NOT NULL PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			subject VARCHAR(255) NOT NULL,
			category VARCHAR(255) NULL,
			started_at DATETIME(3) NOT NULL,
			ended_at DATETIME(3) NOT NULL,
			duration_min INT NOT NULL,
			notes TEXT NULL,
			created_at DATETIME(3) NOT NULL,
			INDEX idx_sessions_user_started (user_id, started_at),
			CONSTRAINT fk_sessions_user FOREIGN KEY (user_id) REFERENCES users (id)
		)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL REFERENCES users (id),
			subject VARCHAR(255) NOT NULL,
			category VARCHAR(255),
			started_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ NOT NULL,
			duration_min INTEGER NOT NULL,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_started ON sessions (user_id, started_at)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users (id),
			subject TEXT NOT NULL,
			category TEXT,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL,
			duration_min INTEGER NOT NULL,
			notes TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_started ON sessions (user_id, started_at)`,
	},
}

// Migrate create the users and sessions tables if they are missing
func Migrate(ctx context.Context, conn ITransactionalDB) error {
	statements, ok := schemas[conn.Driver()]
	if !ok {
		return fmt.Errorf("no schema for driver: %s", conn.Driver())
	}
	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating %s schema: %w", conn.Driver(), err)
		}
	}
	return nil
}
