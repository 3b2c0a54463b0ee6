// Package backend resolves a usable SQLite binding at runtime.
//
// # Overview
//
// Saturn must run on heterogeneous targets (desktop, mobile, server) where
// the availability of the cgo SQLite binding varies: a binary built with
// CGO_ENABLED=0 still links github.com/mattn/go-sqlite3, but every
// connection attempt fails at runtime. The backend package therefore keeps
// a fixed, ordered registry of candidate bindings and probes each one at
// process start, selecting the first that actually works:
//
//  1. "sqlite3": github.com/mattn/go-sqlite3 (native cgo binding)
//  2. "sqlite": modernc.org/sqlite (pure Go, universal fallback)
//
// # Usage
//
//	provider, err := backend.Resolve()
//	if err != nil {
//	    // no usable binding on this platform
//	}
//	db, err := sql.Open(provider.DriverName(), provider.DataSource(path))
//
// # Resolution Semantics
//
// Resolve runs the probe at most once per process and memoizes the result;
// concurrent first callers are serialized and all observe the same value.
// A probe failure is never an error: a candidate that is present but cannot
// initialize its native library is simply skipped. Resolution only fails
// (with ErrNoBackend) when every candidate is unusable, and even then the
// error is reported lazily, when a caller first asks for a provider.
package backend
