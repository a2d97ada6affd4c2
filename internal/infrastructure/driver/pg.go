package driver

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type PGWrapper struct {
	db *pgxpool.Pool
}

type PGWrapperTx struct {
	tx     pgx.Tx
	parent *PGWrapper
}

type PGExecResult struct {
	ct pgconn.CommandTag
}

type PGQueryResult struct {
	rows pgx.Rows
}

var (
	_ ITransactionalDB = &PGWrapper{}
	_ ITransactionalDB = &PGWrapperTx{}
)

// NewPostgreSQLConn Returns a postgreSQL connection pool
func NewPostgreSQLConn(dsn string, cfg *DBConfig) (ITransactionalDB, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = cfg.MaxConn
	conn, err := pgxpool.ConnectConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	return &PGWrapper{conn}, nil
}

func (pr PGExecResult) LastInsertId() (int64, error) {
	return 0, nil
}

func (pr PGExecResult) RowsAffected() (int64, error) {
	return pr.ct.RowsAffected(), nil
}

func (pr PGQueryResult) Next() bool {
	return pr.rows.Next()
}

func (pr PGQueryResult) Scan(dest ...interface{}) (err error) {
	return pr.rows.Scan(dest...)
}

func (pr PGQueryResult) Err() error {
	return pr.rows.Err()
}

func (pr PGQueryResult) Close() error {
	pr.rows.Close()
	return pr.rows.Err()
}

func (pw *PGWrapper) BeginTx(ctx context.Context, opts *TxOptions) (ITransactionalDB, error) {
	startTime := time.Now()
	tx, err := pw.db.BeginTx(ctx, pgTxOptionAdapter(opts))
	logStatement(ctx, "BeginTx", "", nil, startTime, err)
	if err != nil {
		return nil, err
	}
	return &PGWrapperTx{tx: tx, parent: pw}, nil
}

func pgTxOptionAdapter(opts *TxOptions) pgx.TxOptions {
	if opts == nil {
		return pgx.TxOptions{}
	}

	var iso pgx.TxIsoLevel
	if opts.Isolation != sql.LevelDefault {
		iso = pgx.TxIsoLevel(strings.ToLower(opts.Isolation.String()))
	}

	var access pgx.TxAccessMode
	if opts.AccessMode == AccessReadOnly {
		access = pgx.ReadOnly
	} else {
		access = pgx.ReadWrite
	}

	var deferrable pgx.TxDeferrableMode
	if opts.DeferrableMode == Deferrable {
		deferrable = pgx.Deferrable
	} else {
		deferrable = pgx.NotDeferrable
	}
	return pgx.TxOptions{
		IsoLevel:       iso,
		AccessMode:     access,
		DeferrableMode: deferrable,
	}
}

func (pw *PGWrapper) Commit(ctx context.Context) error {
	return nil
}

func (pw *PGWrapper) Rollback(ctx context.Context) error {
	return nil
}

// Close close the whole pool, you better know what you are doing
func (pw *PGWrapper) Close(ctx context.Context) error {
	pw.db.Close()
	return nil
}

func (pw *PGWrapper) Ping(ctx context.Context) error {
	conn, err := pw.db.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return conn.Conn().Ping(ctx)
}

func (pw *PGWrapper) Driver() string {
	return DriverPostgres
}

func (pw *PGWrapper) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	startTime := time.Now()
	query = pgsqlAdapter(query)
	res, err := pw.db.Exec(ctx, query, args...)
	logStatement(ctx, "Exec", query, args, startTime, err)
	return &PGExecResult{res}, err
}

func (pw *PGWrapper) QueryContext(ctx context.Context, query string, args ...interface{}) (ISQLRows, error) {
	startTime := time.Now()
	query = pgsqlAdapter(query)
	rows, err := pw.db.Query(ctx, query, args...)
	logStatement(ctx, "Query", query, args, startTime, err)
	if err != nil {
		return nil, err
	}
	return &PGQueryResult{rows}, nil
}

func (pwt *PGWrapperTx) BeginTx(ctx context.Context, opts *TxOptions) (ITransactionalDB, error) {
	panic("create transaction inside a transaction")
}

func (pwt *PGWrapperTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	startTime := time.Now()
	query = pgsqlAdapter(query)
	res, err := pwt.tx.Exec(ctx, query, args...)
	logStatement(ctx, "Exec", query, args, startTime, err)
	return &PGExecResult{res}, err
}

func (pwt *PGWrapperTx) QueryContext(ctx context.Context, query string, args ...interface{}) (ISQLRows, error) {
	startTime := time.Now()
	query = pgsqlAdapter(query)
	rows, err := pwt.tx.Query(ctx, query, args...)
	logStatement(ctx, "Query", query, args, startTime, err)
	if err != nil {
		return nil, err
	}
	return &PGQueryResult{rows}, nil
}

func (pwt *PGWrapperTx) Commit(ctx context.Context) error {
	startTime := time.Now()
	err := pwt.tx.Commit(ctx)
	logStatement(ctx, "Commit", "", nil, startTime, err)
	return err
}

func (pwt *PGWrapperTx) Rollback(ctx context.Context) error {
	startTime := time.Now()
	err := pwt.tx.Rollback(ctx)
	logStatement(ctx, "RollBack", "", nil, startTime, err)
	return err
}

func (pwt *PGWrapperTx) Close(ctx context.Context) error {
	return nil
}

func (pwt *PGWrapperTx) Ping(ctx context.Context) error {
	return pwt.parent.Ping(ctx)
}

func (pwt *PGWrapperTx) Driver() string {
	return DriverPostgres
}

func pgsqlAdapter(query string) string {
	return strings.TrimSpace(SpacePattern.ReplaceAllString(query, " "))
}
