package truststore

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"mercator-hq/saturn/pkg/telemetry/metrics"
	"mercator-hq/saturn/pkg/truststore/backend"
)

// Store is a persistent trust store for X.509 certificates, CRLs, and their
// sealed private keys, backed by whichever SQLite binding the backend
// resolver selected. A Store is not safe for concurrent writers; each
// logical unit of work should hold its own Store for its lifetime and
// Close it on every exit path.
type Store struct {
	db          *sql.DB
	password    string
	backendName string
	logger      *slog.Logger
	metrics     *metrics.StoreMetrics
}

// Open resolves a backend, provisions the database file at path (creating
// it and any missing parent directories on first use), ensures the
// CERTIFICATES and CRLS tables exist, and returns the ready store.
//
// The password seals private keys at rest and is never persisted. Open
// fails with ErrEmptyPath or ErrNoPassword on missing arguments, with
// backend.ErrNoBackend when no SQLite binding is usable, and propagates
// filesystem errors verbatim.
func Open(path, password string) (*Store, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if password == "" {
		return nil, ErrNoPassword
	}

	provider, err := backend.Resolve()
	if err != nil {
		return nil, err
	}

	db, err := Provision(path, provider)
	if err != nil {
		return nil, err
	}

	s, err := openDB(db, password, provider.Name())
	if err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("trust store opened", "path", path, "backend", provider.Name())
	return s, nil
}

// OpenDB builds a store over a caller-supplied connection, bypassing
// backend resolution and file provisioning. The schema is still ensured.
func OpenDB(db *sql.DB, password string) (*Store, error) {
	if db == nil {
		return nil, ErrNilConnection
	}
	if password == "" {
		return nil, ErrNoPassword
	}
	return openDB(db, password, "external")
}

func openDB(db *sql.DB, password, backendName string) (*Store, error) {
	if err := EnsureSchema(context.Background(), db); err != nil {
		return nil, err
	}
	return &Store{
		db:          db,
		password:    password,
		backendName: backendName,
		logger:      slog.Default().With("component", "truststore"),
	}, nil
}

// SetMetrics attaches operation metrics to the store. Call before issuing
// operations; a nil value disables instrumentation.
func (s *Store) SetMetrics(m *metrics.StoreMetrics) {
	if s.metrics == nil && m != nil {
		m.StoreOpened()
	}
	s.metrics = m
}

// Backend returns the name of the SQLite binding this store runs on.
func (s *Store) Backend() string {
	return s.backendName
}

// Checkpoint flushes the write-ahead log into the main database file.
// The janitor runs this on its maintenance schedule.
func (s *Store) Checkpoint(ctx context.Context) error {
	start := time.Now()
	_, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(PASSIVE)")
	s.observe("checkpoint", start, err)
	if err != nil {
		return newStorageError(s.backendName, "checkpoint", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return newStorageError(s.backendName, "close", err)
	}
	if s.metrics != nil {
		s.metrics.StoreClosed()
		s.metrics = nil
	}
	s.logger.Debug("trust store closed")
	return nil
}

// observe records one operation's duration and status, when metrics are
// attached.
func (s *Store) observe(op string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveOperation(op, time.Since(start), err)
}

// requireRow converts a zero-row update or delete into ErrNotFound.
func (s *Store) requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return newStorageError(s.backendName, "rows_affected", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
