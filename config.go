package dbsession

import "github.com/honeynil/dbsession/dialect"

// LockMode selects how the handler serializes concurrent access to one
// session id. It is chosen once at construction, never per-call.
type LockMode int

const (
	// LockNone is last-writer-wins: the write path is the UPSERT fast path
	// (or UPDATE-then-INSERT fallback) with no explicit locking.
	LockNone LockMode = iota
	// LockAdvisory acquires an engine-level advisory lock keyed on the
	// session id during read, released at Close. Not available on sqlite.
	LockAdvisory
	// LockTransactional is the default: read begins a transaction and
	// issues a locking SELECT, materializing a placeholder row when the
	// key doesn't exist yet. The row lock is held until Close.
	LockTransactional
)

func (m LockMode) String() string {
	switch m {
	case LockNone:
		return "none"
	case LockAdvisory:
		return "advisory"
	case LockTransactional:
		return "transactional"
	default:
		return "unknown"
	}
}

// Columns names the four session-row columns, with the spec's defaults.
// This is an alias for dialect.Columns rather than a parallel type: the
// dialect package's SQL generators take exactly this shape, and Config
// passes it straight through without translation.
type Columns = dialect.Columns

func defaultColumns() Columns {
	return Columns{
		Table:  "sessions",
		ID:     "sess_id",
		Data:   "sess_data",
		Expiry: "sess_expiry",
		Time:   "sess_time",
	}
}

// Config is the construction-time bundle the handler is built from. It is
// immutable once New returns; every field is set either from defaults or
// from the Option values passed to New.
type Config struct {
	Columns Columns

	// DSN is used for lazy connection; ignored when an existing *sql.DB is
	// injected into New.
	DSN string

	// ConnectionOptions carries opaque key/value connection tuning that
	// some driver DSNs accept (pool size, TLS mode, etc.). It is stored on
	// the Config only: this package never parses it, never passes it to the
	// driver, and Status() does not report it.
	ConnectionOptions map[string]string

	LockMode LockMode

	// ServerVersion is consulted by dialect.Dialect.UpsertSQL to decide
	// whether a single-statement atomic upsert is available (PostgreSQL
	// needs >= 9.5, SQL Server >= 2008). Empty means "assume modern" —
	// every dialect in this package treats an empty version as supporting
	// its upsert form, since querying it would require a driver-specific
	// round trip this package does not make on the caller's behalf.
	ServerVersion string

	// MaxLifetime returns session_max_lifetime in seconds. It is invoked
	// fresh at Write and again at the GC pass in Close — never cached on
	// the handler, so an operator can change it at runtime without
	// restarting request handlers.
	MaxLifetime func() int64

	IDPolicy IDPolicy

	Logger Logger
}

func defaultConfig() Config {
	return Config{
		Columns:           defaultColumns(),
		ConnectionOptions: map[string]string{},
		LockMode:          LockTransactional,
		MaxLifetime:       func() int64 { return 1440 },
		IDPolicy:          defaultIDPolicy(),
		Logger:            defaultLogger(),
	}
}

// Option configures a Handler at construction time.
type Option func(*Config)

// WithTable overrides the session table name (default "sessions").
func WithTable(name string) Option {
	return func(c *Config) { c.Columns.Table = name }
}

// WithColumns overrides all four column names at once.
func WithColumns(cols Columns) Option {
	return func(c *Config) { c.Columns = cols }
}

// WithLockMode selects the locking strategy (default LockTransactional).
func WithLockMode(mode LockMode) Option {
	return func(c *Config) { c.LockMode = mode }
}

// WithServerVersion records the target server version string so the
// dialect can pick the right upsert form (e.g. "9.4", "140002", "2008").
func WithServerVersion(v string) Option {
	return func(c *Config) { c.ServerVersion = v }
}

// WithMaxLifetime installs the ambient session_max_lifetime hook.
func WithMaxLifetime(f func() int64) Option {
	return func(c *Config) { c.MaxLifetime = f }
}

// WithConnectionOptions attaches opaque connection tuning to the Config.
// It is never interpreted by this package and is not part of Status().
func WithConnectionOptions(opts map[string]string) Option {
	return func(c *Config) { c.ConnectionOptions = opts }
}

// WithIDPolicy tightens session id validation beyond the default length
// check (e.g. reject non-hex ids from a known generator).
func WithIDPolicy(p IDPolicy) Option {
	return func(c *Config) { c.IDPolicy = p }
}

// WithLogger installs a structured logger. See Logger for the interface
// and usage examples.
func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}
