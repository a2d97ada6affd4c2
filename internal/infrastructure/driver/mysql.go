package driver

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// SQLWrapper Wraps a *sql.db object and provides the implementation of ITransactionalDB.
//
// statements are rewritten by adapt before they reach the driver, so repositories
// write a single postgres flavored dialect
type SQLWrapper struct {
	db      *sql.DB
	dialect string
	adapt   func(query string) string
	txOpts  func(opts *TxOptions) *sql.TxOptions
}

// SQLWrapperTx transaction wrapper
type SQLWrapperTx struct {
	tx     *sql.Tx
	parent *SQLWrapper
}

var (
	_ ITransactionalDB = &SQLWrapper{}
	_ ITransactionalDB = &SQLWrapperTx{}
)

// NewMySQLConn Returns a MySQL connection pool, DATETIME columns are read as UTC time.Time
func NewMySQLConn(dsn string, cfg *DBConfig) (ITransactionalDB, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	conn, err := sql.Open("mysql", mc.FormatDSN())
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(int(cfg.MaxConn))
	return &SQLWrapper{
		db:      conn,
		dialect: DriverMySQL,
		adapt:   mysqlAdapter,
		txOpts:  mysqlTxOptionAdapter,
	}, nil
}

// BeginTx start a new transaction context
func (mw *SQLWrapper) BeginTx(ctx context.Context, opts *TxOptions) (ITransactionalDB, error) {
	startTime := time.Now()
	tx, err := mw.db.BeginTx(ctx, mw.txOpts(opts))
	logStatement(ctx, "BeginTx", "", nil, startTime, err)
	if err != nil {
		return nil, err
	}
	return &SQLWrapperTx{tx: tx, parent: mw}, nil
}

func mysqlTxOptionAdapter(opts *TxOptions) *sql.TxOptions {
	if opts == nil {
		return nil
	}
	return &sql.TxOptions{
		Isolation: opts.Isolation,
		ReadOnly:  opts.AccessMode == AccessReadOnly,
	}
}

func (mw *SQLWrapper) Commit(ctx context.Context) error {
	return nil
}

func (mw *SQLWrapper) Rollback(ctx context.Context) error {
	return nil
}

// Close close the whole pool
func (mw *SQLWrapper) Close(ctx context.Context) error {
	return mw.db.Close()
}

func (mw *SQLWrapper) Ping(ctx context.Context) error {
	return mw.db.PingContext(ctx)
}

func (mw *SQLWrapper) Driver() string {
	return mw.dialect
}

func (mw *SQLWrapper) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	startTime := time.Now()
	query = mw.adapt(query)
	res, err := mw.db.ExecContext(ctx, query, args...)
	logStatement(ctx, "Exec", query, args, startTime, err)
	return res, err
}

func (mw *SQLWrapper) QueryContext(ctx context.Context, query string, args ...interface{}) (ISQLRows, error) {
	startTime := time.Now()
	query = mw.adapt(query)
	rows, err := mw.db.QueryContext(ctx, query, args...)
	logStatement(ctx, "Query", query, args, startTime, err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (mwt *SQLWrapperTx) BeginTx(ctx context.Context, opts *TxOptions) (ITransactionalDB, error) {
	panic("create transaction inside a transaction")
}

func (mwt *SQLWrapperTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	startTime := time.Now()
	query = mwt.parent.adapt(query)
	res, err := mwt.tx.ExecContext(ctx, query, args...)
	logStatement(ctx, "Exec", query, args, startTime, err)
	return res, err
}

func (mwt *SQLWrapperTx) QueryContext(ctx context.Context, query string, args ...interface{}) (ISQLRows, error) {
	startTime := time.Now()
	query = mwt.parent.adapt(query)
	rows, err := mwt.tx.QueryContext(ctx, query, args...)
	logStatement(ctx, "Query", query, args, startTime, err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (mwt *SQLWrapperTx) Commit(ctx context.Context) error {
	startTime := time.Now()
	err := mwt.tx.Commit()
	logStatement(ctx, "Commit", "", nil, startTime, err)
	return err
}

func (mwt *SQLWrapperTx) Rollback(ctx context.Context) error {
	startTime := time.Now()
	err := mwt.tx.Rollback()
	logStatement(ctx, "RollBack", "", nil, startTime, err)
	return err
}

func (mwt *SQLWrapperTx) Close(ctx context.Context) error {
	return nil
}

func (mwt *SQLWrapperTx) Ping(ctx context.Context) error {
	return mwt.parent.Ping(ctx)
}

func (mwt *SQLWrapperTx) Driver() string {
	return mwt.parent.dialect
}

func mysqlAdapter(query string) string {
	query = strings.Replace(query, "\"", "`", -1)
	query = DollarPlaceholderPattern.ReplaceAllString(query, "?")
	query = SpacePattern.ReplaceAllString(query, " ")
	return strings.TrimSpace(query)
}
