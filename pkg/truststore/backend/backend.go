package backend

// Candidate describes one SQLite binding the store could use.
// Candidates are immutable, defined at compile time, and enumerated
// in fixed priority order by candidates().
type Candidate interface {
	// Name is the human-readable binding name used in logs.
	Name() string

	// DriverName is the name the binding registers with database/sql.
	DriverName() string

	// Applicable reports whether the binding can work on the running
	// platform at all. A true result is not a guarantee; the probe in
	// Resolve still has to pass.
	Applicable() bool

	// DataSource builds the binding-specific DSN for a database path.
	// Every candidate applies the same deterministic settings (busy
	// timeout, foreign keys) in its own dialect.
	DataSource(path string) string
}

// busyTimeoutMS is the lock wait applied to every connection, matching the
// single-writer usage pattern of the store.
const busyTimeoutMS = 10000

// candidates returns the registry in priority order: the native cgo binding
// first (fastest when it loads), the pure Go binding as universal fallback.
func candidates() []Candidate {
	return []Candidate{
		cgoCandidate{},
		pureGoCandidate{},
	}
}

// Provider is the resolved, usable binding. At most one Provider exists per
// process; it is created by Resolve and never mutated afterwards.
type Provider struct {
	candidate Candidate
}

// Name returns the resolved binding's human-readable name.
func (p *Provider) Name() string { return p.candidate.Name() }

// DriverName returns the database/sql driver name to open connections with.
func (p *Provider) DriverName() string { return p.candidate.DriverName() }

// DataSource builds the DSN for the given database path using the resolved
// binding's dialect.
func (p *Provider) DataSource(path string) string { return p.candidate.DataSource(path) }
