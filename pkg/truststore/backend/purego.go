package backend

import (
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// pureGoCandidate is the modernc.org/sqlite binding, a cgo-free transpile
// of the SQLite C sources. It works on every platform the Go toolchain
// targets, which makes it the registry's fallback of last resort.
type pureGoCandidate struct{}

func (pureGoCandidate) Name() string { return "modernc-sqlite" }

func (pureGoCandidate) DriverName() string { return "sqlite" }

func (pureGoCandidate) Applicable() bool { return true }

func (pureGoCandidate) DataSource(path string) string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", path, busyTimeoutMS)
}
