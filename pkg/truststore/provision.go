package truststore

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"mercator-hq/saturn/pkg/truststore/backend"
)

// Provision prepares the database file at path and returns an open handle
// bound to the resolved backend. The file and any missing parent
// directories are created on first use; an existing file is never
// truncated. Filesystem errors (permission denied, I/O) propagate verbatim.
//
// The connection is configured deterministically regardless of backend:
// single writer, WAL journaling, and the integral tick format for every
// time column (enforced by the store's codec, not the driver).
func Provision(path string, provider *backend.Provider) (*sql.DB, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if provider == nil {
		return nil, ErrNoProvider
	}

	if err := ensureFile(path); err != nil {
		return nil, err
	}

	db, err := sql.Open(provider.DriverName(), provider.DataSource(path))
	if err != nil {
		return nil, newStorageError(provider.Name(), "open", err)
	}

	// SQLite supports a single writer; a larger pool just trades lock
	// contention for busy-timeout churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, newStorageError(provider.Name(), "enable_wal", err)
	}

	return db, nil
}

// ensureFile creates an empty database file (and missing parent
// directories) if none exists. An existing file is left untouched.
func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil
		}
		return fmt.Errorf("creating database file: %w", err)
	}
	return f.Close()
}
