// Package database centralises sqlx connection helpers and the tiny
// migration runner used by components.
//
// Public entry points:
//
//	Open(driver, dsn)                               – conservative pool sizes.
//	OpenWithOptions(driver, dsn, maxOpen, maxIdle)  – fine-grained control.
//	Migrate(ctx, db, owner, stmts)                  – apply component schema once.
//
// driver is "mysql" (go-sql-driver/mysql, also MariaDB) or "sqlite".  The
// SQLite implementation is pure Go by default; build with -tags cgo_sqlite
// for mattn/go-sqlite3.
//
// Both Open helpers Ping before returning so bootstrap fails fast.
package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Driver names accepted by Open.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Open returns a *sqlx.DB with sane defaults: 15 max open, 5 idle, and a
// 30-minute connection lifetime.
func Open(driver, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(driver, dsn, 15, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle.
func OpenWithOptions(driver, dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	name, err := driverName(driver)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// One writer; SQLite serialises anyway and this avoids SQLITE_BUSY.
		maxOpen, maxIdle = 1, 1
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func driverName(driver string) (string, error) {
	switch driver {
	case DriverMySQL:
		return "mysql", nil
	case DriverSQLite:
		return sqliteDriver, nil
	default:
		return "", fmt.Errorf("database: unsupported driver %q", driver)
	}
}
