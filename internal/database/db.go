// Package database provides SQLite connection management.
package database

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/at-ishikawa/subdeck/internal/config"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const pingAttempts = 3

func init() {
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

// Open opens the card store described by cfg, creating its directory if needed.
func Open(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("os.MkdirAll() > %w", err)
		}
	}

	db, err := OpenPath(cfg.Path, cfg.BusyTimeoutMs)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	return db, nil
}

// OpenPath opens the SQLite file at path and verifies the connection.
func OpenPath(path string, busyTimeoutMs int) (*sqlx.DB, error) {
	db, err := sqlx.Open(DriverName, DSN(path, busyTimeoutMs))
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}

	if err := retry.Do(
		db.Ping,
		retry.Attempts(pingAttempts),
		retry.Delay(50*time.Millisecond),
		retry.RetryIf(IsBusy),
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping() > %w", err)
	}
	return db, nil
}

// DSN builds a modernc.org/sqlite data source name with pragmas applied on every connection.
func DSN(path string, busyTimeoutMs int) string {
	params := url.Values{}
	params.Add("_pragma", "foreign_keys(1)")
	if busyTimeoutMs > 0 {
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMs))
	}
	return "file:" + escapePath(path) + "?" + params.Encode()
}

// escapePath percent-encodes each path segment so that '?', '#' and '%' in
// file names survive URI parsing.
func escapePath(path string) string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// IsBusy reports whether err indicates an SQLite BUSY condition.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
