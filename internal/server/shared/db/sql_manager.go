package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/avelichko/formdesk/internal/dbx"
	"github.com/avelichko/formdesk/internal/server/accounts"
	"github.com/avelichko/formdesk/internal/server/migrations"
	"github.com/avelichko/formdesk/internal/server/submissions"
	"github.com/pressly/goose/v3"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// driverInfo maps a database/sql driver name to its dialect and the matching
// goose dialect / migration directory.
type driverInfo struct {
	dialect      dbx.Dialect
	gooseDialect string
	migrationDir string
}

var drivers = map[string]driverInfo{
	"sqlite3": {dbx.DialectSQLite, "sqlite3", "sqlite"},
	"mysql":   {dbx.DialectMySQL, "mysql", "mysql"},
	"pgx":     {dbx.DialectPostgres, "postgres", "postgres"},
}

type SQLRepositoryManager struct {
	db          *sql.DB
	info        driverInfo
	accounts    accounts.Repository
	submissions submissions.Repository
}

// normalizeDSN applies driver-specific DSN requirements. The MySQL driver
// returns DATETIME columns as []byte unless parseTime is enabled, which
// would break every created_at scan, so it is forced on here.
func normalizeDSN(driver, dsn string) (string, error) {
	if driver != "mysql" {
		return dsn, nil
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn error: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// NewSQLRepositoryManager opens the configured driver ("sqlite3", "mysql",
// or "pgx"), verifies connectivity, and constructs the repositories. The
// connection is acquired once at startup and shared, not owned, by the
// repositories; Close releases it at shutdown.
func NewSQLRepositoryManager(driver, dsn string) (*SQLRepositoryManager, error) {
	info, ok := drivers[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	dsn, err := normalizeDSN(driver, dsn)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return &SQLRepositoryManager{
		db:          conn,
		info:        info,
		accounts:    accounts.NewSQLRepository(conn, info.dialect),
		submissions: submissions.NewSQLRepository(conn, info.dialect),
	}, nil
}

func (m *SQLRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect(m.info.gooseDialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, m.db, m.info.migrationDir)
}

func (m *SQLRepositoryManager) Conn() *sql.DB { return m.db }

func (m *SQLRepositoryManager) Close() error { return m.db.Close() }

func (m *SQLRepositoryManager) Accounts() accounts.Repository { return m.accounts }

func (m *SQLRepositoryManager) Submissions() submissions.Repository { return m.submissions }
