package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/subdeck/internal/config"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
	}{
		{
			name: "creates file database",
			cfg: config.DatabaseConfig{
				Path: filepath.Join(t.TempDir(), "cards.db"),
			},
		},
		{
			name: "creates missing parent directories",
			cfg: config.DatabaseConfig{
				Path:          filepath.Join(t.TempDir(), "nested", "dir", "cards.db"),
				MaxOpenConns:  1,
				BusyTimeoutMs: 1000,
			},
		},
		{
			name: "in-memory database",
			cfg: config.DatabaseConfig{
				Path:         ":memory:",
				MaxOpenConns: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(tt.cfg)
			require.NoError(t, err)
			require.NotNil(t, got)
			defer got.Close()

			assert.Equal(t, DriverName, got.DriverName())

			var one int
			require.NoError(t, got.Get(&one, "SELECT 1"))
			assert.Equal(t, 1, one)
		})
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		busyTimeoutMs int
		want          string
	}{
		{
			name: "relative path",
			path: "cards.db",
			want: "file:cards.db?_pragma=foreign_keys%281%29",
		},
		{
			name:          "busy timeout",
			path:          "/tmp/a.db",
			busyTimeoutMs: 500,
			want:          "file:/tmp/a.db?_pragma=foreign_keys%281%29&_pragma=busy_timeout%28500%29",
		},
		{
			name: "reserved characters are escaped",
			path: "/tmp/what?#100%/a b.db",
			want: "file:/tmp/what%3F%23100%25/a%20b.db?_pragma=foreign_keys%281%29",
		},
		{
			name: "in-memory database",
			path: ":memory:",
			want: "file::memory:?_pragma=foreign_keys%281%29",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DSN(tt.path, tt.busyTimeoutMs))
		})
	}
}

func TestOpenPath_ReservedCharacters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "what?#100%")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "cards.db")

	db, err := OpenPath(path, 100)
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	assert.FileExists(t, path)
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "busy", err: errors.New("SQLITE_BUSY: database is locked"), want: true},
		{name: "table locked", err: errors.New("database table is locked"), want: true},
		{name: "other", err: errors.New("no such table"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBusy(tt.err))
		})
	}
}
