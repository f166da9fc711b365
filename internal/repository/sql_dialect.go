package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/locvowork/convexhub/apigateway/internal/domain"
)

// dialect holds what differs between the SQL backends: the schema and how
// driver errors map onto failure kinds. button_presses.created_at is filled
// by the database clock at insert.
type dialect struct {
	driverName string
	schema     []string
	classify   classifier
	// singleConn is set for SQLite, which serializes writers anyway and keeps
	// one database per connection for :memory:.
	singleConn bool
}

var dialects = map[string]dialect{
	"postgres": {
		driverName: "postgres",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS tasks (
    id BIGSERIAL PRIMARY KEY,
    text TEXT NOT NULL DEFAULT '',
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at BIGINT NULL
)`,
			`CREATE TABLE IF NOT EXISTS button_presses (
    id BIGSERIAL PRIMARY KEY,
    pressed_at TEXT NULL,
    created_at BIGINT NULL DEFAULT (floor(extract(epoch FROM clock_timestamp()) * 1000))::BIGINT
)`,
		},
		classify: classifyPostgres,
	},
	"mysql": {
		driverName: "mysql",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    text TEXT NOT NULL,
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    created_at BIGINT NULL
)`,
			`CREATE TABLE IF NOT EXISTS button_presses (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    pressed_at VARCHAR(32) NULL,
    created_at BIGINT NULL DEFAULT (CAST(UNIX_TIMESTAMP(NOW(3)) * 1000 AS SIGNED))
)`,
		},
		classify: classifyMySQL,
	},
	"sqlite": {
		driverName: "sqlite",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    text TEXT NOT NULL DEFAULT '',
    is_completed BOOLEAN NOT NULL DEFAULT 0,
    created_at INTEGER NULL
)`,
			`CREATE TABLE IF NOT EXISTS button_presses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    pressed_at TEXT NULL,
    created_at INTEGER NULL DEFAULT (CAST((julianday('now') - 2440587.5) * 86400000 AS INTEGER))
)`,
		},
		classify:   classifySQLite,
		singleConn: true,
	},
}

// classifyPostgres treats any other server-reported error on a write as a
// refusal.
func classifyPostgres(err error, write bool) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code.Class() {
	// connection exception, insufficient resources, operator intervention
	case "08", "53", "57":
		return domain.ErrStoreUnavailable
	}
	if write {
		return domain.ErrWriteRejected
	}
	return nil
}

func classifyMySQL(err error, write bool) error {
	if errors.Is(err, mysql.ErrInvalidConn) {
		return domain.ErrStoreUnavailable
	}
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return nil
	}
	switch myErr.Number {
	case 1040, 1053, 1205, 2002, 2003, 2006, 2013:
		return domain.ErrStoreUnavailable
	}
	if write {
		return domain.ErrWriteRejected
	}
	return nil
}

func classifySQLite(err error, write bool) error {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return nil
	}
	switch liteErr.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR:
		return domain.ErrStoreUnavailable
	case sqlite3.SQLITE_CONSTRAINT, sqlite3.SQLITE_READONLY, sqlite3.SQLITE_FULL,
		sqlite3.SQLITE_TOOBIG, sqlite3.SQLITE_MISMATCH, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
		if write {
			return domain.ErrWriteRejected
		}
	}
	return nil
}
