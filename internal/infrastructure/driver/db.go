package driver

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgconn"
	"github.com/pot-code/study-tracker/internal/infrastructure/logging"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// supported drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type TxAccessMode int

// transaction access mode
const (
	AccessReadWrite TxAccessMode = iota
	AccessReadOnly
)

type TxDeferrableMode int

// transaction defer mode
const (
	NotDeferrable TxDeferrableMode = iota
	Deferrable
)

// TxOptions Provides a universal option struct across different SQL drivers
type TxOptions struct {
	Isolation      sql.IsolationLevel
	AccessMode     TxAccessMode
	DeferrableMode TxDeferrableMode
}

// ISQLRows Provides a universal query result struct across different SQL drivers
type ISQLRows interface {
	Next() bool
	Scan(dest ...interface{}) (err error)
	// Err the error that ended the iteration, if any
	Err() error
	Close() error
}

// ITransactionalDB Universal SQL operation interface, to eliminate the gap between different SQL drivers
type ITransactionalDB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (ISQLRows, error)
	BeginTx(ctx context.Context, opts *TxOptions) (ITransactionalDB, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Close(ctx context.Context) error
	Ping(ctx context.Context) error
	Driver() string
}

// DBConfig connection options
type DBConfig struct {
	Driver   string // driver name
	Host     string // server host
	MaxConn  int32  // maximum opening connections number
	Password string // db password
	Port     int    // server port
	Protocol string // connection protocol, eg.tcp
	Query    string // DSN query parameter
	Schema   string // use schema, or the database file for sqlite
	User     string // username
}

// SpacePattern check for space, tab or newline
var SpacePattern = regexp.MustCompile(`[\n\t\s]+`)

// DollarPlaceholderPattern check for postgresql style var placeholder
var DollarPlaceholderPattern = regexp.MustCompile(`\$[0-9]+`)

func getDSN(cfg *DBConfig) (DSN string) {
	if cfg.Protocol != "" {
		DSN = fmt.Sprintf("%s:%s@%s(%s:%d)/%s", cfg.User, cfg.Password, cfg.Protocol, cfg.Host, cfg.Port, cfg.Schema)
	} else {
		DSN = fmt.Sprintf("%s:%s@%s:%d/%s", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Schema)
	}
	if cfg.Query != "" {
		return DSN + "?" + cfg.Query
	}
	return
}

// GetDBConnection create a DB connection from given config
func GetDBConnection(cfg *DBConfig) (conn ITransactionalDB, err error) {
	switch cfg.Driver {
	case DriverMySQL:
		conn, err = NewMySQLConn(getDSN(cfg), cfg)
	case DriverPostgres:
		conn, err = NewPostgreSQLConn("postgres://"+getDSN(cfg), cfg)
	case DriverSQLite:
		conn, err = NewSQLiteConn(cfg.Schema, cfg)
	default:
		err = fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
	return
}

// WithTx run fn inside a transaction, fn's error rolls it back
func WithTx(ctx context.Context, conn ITransactionalDB, opts *TxOptions, fn func(tx ITransactionalDB) error) error {
	tx, err := conn.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("%w (rollback: %s)", err, rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}

// IsUniqueViolation reports whether err is a primary key or unique constraint violation
func IsUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		// plain SQLITE_CONSTRAINT only shows up when extended result codes are off
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT:
			return true
		}
	}
	return false
}

func shouldLogError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return false
	}
	return true
}

func logQueryArgs(args []interface{}) []interface{} {
	logArgs := make([]interface{}, 0, len(args))

	for _, a := range args {
		switch v := a.(type) {
		case []byte:
			if len(v) < 64 {
				a = hex.EncodeToString(v)
			} else {
				a = fmt.Sprintf("%x (truncated %d bytes)", v[:64], len(v)-64)
			}
		case string:
			if len(v) > 64 {
				a = fmt.Sprintf("%s (truncated %d bytes)", v[:64], len(v)-64)
			}
		}
		logArgs = append(logArgs, a)
	}

	return logArgs
}

// logStatement logs one driver round trip with the logger bound to ctx
func logStatement(ctx context.Context, method, query string, args []interface{}, startTime time.Time, err error) {
	logger := logging.ExtractLoggerFromContext(ctx)
	fields := []zap.Field{zap.String("db.method", method)}
	if query != "" {
		fields = append(fields, zap.String("db.sql", query))
	}
	if len(args) > 0 {
		fields = append(fields, zap.Any("db.args", logQueryArgs(args)))
	}
	if err != nil {
		if shouldLogError(err) {
			logger.Error(err.Error(), fields...)
		}
		return
	}
	fields = append(fields, zap.Duration("db.time", time.Since(startTime)))
	logger.Debug("", fields...)
}
