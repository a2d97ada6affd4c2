package driver

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	// sqlite driver
	_ "modernc.org/sqlite"
)

// MemoryDSN in-memory sqlite database, lives as long as its single connection
const MemoryDSN = ":memory:"

// NewSQLiteConn Returns a SQLite connection pool, path is a file path or MemoryDSN
func NewSQLiteConn(path string, cfg *DBConfig) (ITransactionalDB, error) {
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// every connection of an in-memory database is a distinct database
	if path == MemoryDSN || cfg == nil || cfg.MaxConn < 1 {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(int(cfg.MaxConn))
	}

	pragmas := []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"}
	if path != MemoryDSN {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return &SQLWrapper{
		db:      conn,
		dialect: DriverSQLite,
		adapt:   sqliteAdapter,
		txOpts:  sqliteTxOptionAdapter,
	}, nil
}

// sqlite only knows serializable transactions, isolation is left to the driver
func sqliteTxOptionAdapter(opts *TxOptions) *sql.TxOptions {
	return nil
}

func sqliteAdapter(query string) string {
	query = DollarPlaceholderPattern.ReplaceAllString(query, "?")
	query = SpacePattern.ReplaceAllString(query, " ")
	return strings.TrimSpace(query)
}
