package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrNoBackend indicates that no SQLite binding passed its probe.
// Callers see it when they first ask for a provider, never at load time.
var ErrNoBackend = errors.New("no usable sqlite backend available")

// probeTimeout bounds the smoke test. A binding whose native load hangs
// beyond this is treated as unavailable.
const probeTimeout = 5 * time.Second

var (
	resolveOnce sync.Once
	resolved    *Provider
	resolveErr  error
)

// Resolve picks the first usable SQLite binding, in registry priority
// order. The probe runs at most once per process; concurrent first callers
// are serialized by sync.Once and every caller observes the memoized
// result. Resolve returns ErrNoBackend when every candidate fails.
func Resolve() (*Provider, error) {
	resolveOnce.Do(func() {
		resolved, resolveErr = resolve(candidates(), slog.Default().With("component", "truststore.backend"))
	})
	return resolved, resolveErr
}

// resolve probes candidates in order and returns a Provider for the first
// that passes. Every probe failure is absorbed: a binding that is present
// but cannot load (missing cgo, broken native library, permission denied
// on a shared object) must degrade to "try the next candidate", never
// crash resolution.
func resolve(cands []Candidate, logger *slog.Logger) (*Provider, error) {
	for _, c := range cands {
		if !c.Applicable() {
			logger.Debug("backend candidate not applicable on this platform",
				"candidate", c.Name())
			continue
		}
		if err := probe(c); err != nil {
			logger.Debug("backend candidate failed probe",
				"candidate", c.Name(), "error", err)
			continue
		}
		logger.Info("sqlite backend resolved",
			"candidate", c.Name(), "driver", c.DriverName())
		return &Provider{candidate: c}, nil
	}
	logger.Warn("no sqlite backend available on this platform")
	return nil, ErrNoBackend
}

// probe smoke-tests a candidate by opening an in-memory database and
// executing a trivial statement. sql.Open alone is not enough: it validates
// nothing, so a binding compiled without cgo still "opens" and only fails
// on first use. Panics raised by a broken binding are converted to probe
// failures.
func probe(c Candidate) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe panic: %v", r)
		}
	}()

	db, err := sql.Open(c.DriverName(), c.DataSource(":memory:"))
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, "SELECT 1"); err != nil {
		return err
	}
	return nil
}
