package truststore

import (
	"errors"
	"fmt"
)

// Sentinel errors for argument and configuration failures. Filesystem
// errors (permission, I/O) are never wrapped in these; they propagate
// verbatim from the standard library.
var (
	// ErrEmptyPath indicates a database path that was supplied but is
	// zero-length.
	ErrEmptyPath = errors.New("truststore: database path is empty")

	// ErrNoPassword indicates a missing store password. The password is
	// required to seal private keys and is never persisted.
	ErrNoPassword = errors.New("truststore: password is required")

	// ErrNilConnection indicates a nil *sql.DB passed to OpenDB.
	ErrNilConnection = errors.New("truststore: connection is nil")

	// ErrNoProvider indicates that a connection was requested before a
	// backend provider was resolved, or after resolution failed.
	ErrNoProvider = errors.New("truststore: no backend provider configured")

	// ErrNotFound indicates a lookup that matched no record.
	ErrNotFound = errors.New("truststore: record not found")

	// ErrNoPrivateKey indicates a certificate record with no sealed
	// private key attached.
	ErrNoPrivateKey = errors.New("truststore: record has no private key")
)

// StorageError wraps a failure from the underlying SQLite backend with the
// backend name and the operation that failed.
type StorageError struct {
	Backend   string // resolved backend name ("go-sqlite3", "modernc-sqlite")
	Operation string // operation that failed ("insert", "find", "schema", ...)
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("truststore: %s failed [backend=%s]: %v", e.Operation, e.Backend, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// newStorageError creates a StorageError for the given operation.
func newStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}
