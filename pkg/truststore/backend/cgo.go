package backend

import (
	"fmt"
	"runtime"
	"strconv"

	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
)

// cgoCandidate is the github.com/mattn/go-sqlite3 binding. The driver is
// always linked, but it only works when the binary was built with cgo and
// the bundled native library initializes. Both conditions are verified by
// the resolver's probe, not here.
type cgoCandidate struct{}

func (cgoCandidate) Name() string { return "go-sqlite3" }

func (cgoCandidate) DriverName() string { return "sqlite3" }

// Applicable restricts the cgo binding to the OS families the upstream
// amalgamation supports. 32-bit Windows builds are excluded; the binding
// has a history of loader faults there.
func (cgoCandidate) Applicable() bool {
	switch runtime.GOOS {
	case "linux", "darwin", "freebsd", "android", "ios":
		return true
	case "windows":
		return strconv.IntSize == 64
	default:
		return false
	}
}

func (cgoCandidate) DataSource(path string) string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=1", path, busyTimeoutMS)
}
