package sqlstore

import (
	"database/sql"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPGX      = "pgx"
)

// OpenSQLite opens a bun DB over mattn/go-sqlite3. SQLite allows a single
// writer so the pool is capped at one connection.
func OpenSQLite(dsn string) (*bun.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, storeError("sqlstore: sqlite dsn is required")
	}
	sqlDB, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, storeWrapError(err, "sqlstore: open sqlite")
	}
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

func OpenPostgres(dsn string) (*bun.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, storeError("sqlstore: postgres dsn is required")
	}
	sqlDB, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, storeWrapError(err, "sqlstore: open postgres")
	}
	return bun.NewDB(sqlDB, pgdialect.New()), nil
}

// OpenPostgresPGX opens postgres through the pgx stdlib driver instead of
// lib/pq.
func OpenPostgresPGX(dsn string) (*bun.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, storeError("sqlstore: postgres dsn is required")
	}
	sqlDB, err := sql.Open(DriverPGX, dsn)
	if err != nil {
		return nil, storeWrapError(err, "sqlstore: open postgres (pgx)")
	}
	return bun.NewDB(sqlDB, pgdialect.New()), nil
}
