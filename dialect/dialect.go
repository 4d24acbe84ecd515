// Package dialect is the Dialect Registry: it maps a driver tag to the SQL
// fragments and capability generators the session state machine needs to
// stay portable across MySQL, PostgreSQL, SQLite, SQL Server, and Oracle.
//
// Each driver registers a Dialect value in its own file's init(). The
// registry replaces a source-level switch chain with a tagged-variant
// lookup: the state machine never branches on driver name itself, only on
// which Dialect fields are non-nil/non-empty.
package dialect

import (
	"context"
	"database/sql"
	"fmt"
)

// DBHandle is the subset of *sql.DB / *sql.Tx / *sql.Conn that dialect code
// needs. It lets the same SQL-generation code run against either a bare
// connection or an open transaction, without the dialect package knowing
// which one it got.
type DBHandle interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Columns names the four session-row columns. Table/column names are
// identifiers, not values, so they are quoted with Dialect.QuoteIdentifier
// and interpolated directly into SQL text rather than bound as parameters.
type Columns struct {
	Table  string
	ID     string
	Data   string
	Expiry string
	Time   string
}

// PendingRelease is a plain value describing how to release a held
// advisory lock: which handle to run the release statement against (MySQL
// GET_LOCK and PostgreSQL pg_advisory_lock are both session-scoped, so the
// release must run on the exact connection that acquired it), the release
// SQL and args, and an optional Cleanup to return a dedicated connection
// to the pool. This replaces the source's closures-over-prepared-statements
// with an ordered sequence of small value objects (see Design Notes).
type PendingRelease struct {
	Handle  DBHandle
	SQL     string
	Args    []any
	Cleanup func() error
}

// AdvisoryCapability bundles engine-level advisory locking. Acquire takes
// the pool's *sql.DB (not just a DBHandle) because acquiring a session-
// scoped advisory lock requires pinning a dedicated *sql.Conn for the
// lifetime of the lock.
type AdvisoryCapability struct {
	Acquire func(ctx context.Context, db *sql.DB, id string) (PendingRelease, error)
}

// Dialect is a value, not an interface: every driver is a plain struct of
// SQL generators and small behavioral hooks. Fields that don't apply to a
// given driver are left nil/empty and checked by the caller (e.g.
// Advisory is nil for SQLite, UpsertSQL.ok is false pre-9.5
// PostgreSQL) rather than raising driver-specific panics.
type Dialect struct {
	// Name is the driver tag: mysql, postgres, sqlite, mssql, oracle.
	Name string

	// SQLDriverName is the name this dialect's driver package registers
	// with database/sql (via sql.Register, usually in its own init()).
	// It is not always Name: pgx registers as "pgx", go-sqlite3 as
	// "sqlite3", go-mssqldb as "sqlserver". sql.Open needs this value,
	// not the dialect tag.
	SQLDriverName string

	Placeholder     func(n int) string
	QuoteIdentifier func(name string) string

	// CreateTableSQL returns the one-shot DDL for the session table.
	CreateTableSQL func(cols Columns) string

	// SelectLockingSQL is the SELECT used inside a transactional lock read.
	// Every dialect sets it; SQLite's is the plain SELECT with no hint (the
	// surrounding BEGIN IMMEDIATE already provides the lock).
	SelectLockingSQL func(cols Columns) string

	// SelectPlainSQL is the SELECT used for LOCK_NONE and LOCK_ADVISORY reads.
	SelectPlainSQL func(cols Columns) string

	// InsertPlaceholderSQL inserts an empty, expiry=0 placeholder row to
	// materialize a lock target for an absent key.
	InsertPlaceholderSQL func(cols Columns) string

	// NeedsPlaceholderRow reports whether a miss on the transactional
	// locking SELECT should materialize a placeholder row to give
	// concurrent readers something to block on. SQLite's BEGIN IMMEDIATE
	// already reserves the whole database for writing before the first
	// SELECT runs, so it has nothing to gain from a placeholder row and
	// leaves this false; every other dialect, which locks at row
	// granularity, sets it true.
	NeedsPlaceholderRow bool

	// UpsertSQL returns a single-statement atomic upsert when one is
	// available for the given server version, or ok=false to signal the
	// caller should fall back to UPDATE-then-INSERT.
	UpsertSQL func(cols Columns, serverVersion string) (query string, ok bool)

	UpdateSQL func(cols Columns) string
	InsertSQL func(cols Columns) string
	DeleteSQL func(cols Columns) string
	GCSQL     func(cols Columns) string

	// PurgeSQL deletes every row in the session table unconditionally,
	// expired or not. Used by operator tooling, never by the state machine.
	PurgeSQL func(cols Columns) string

	// BeginTxQuirk runs driver-specific statements before/around the native
	// sql.Tx begin: SQLite issues a raw BEGIN IMMEDIATE, MySQL sets the
	// isolation level on the connection that is about to start the tx.
	// nil means "no quirk": the transaction is started with BeginTx and
	// default options on the pinned connection.
	BeginTxQuirk func(ctx context.Context, h DBHandle) error

	// ManualTx is true for drivers where Begin/Commit/Rollback are plain
	// SQL statements executed through BeginTxQuirk/CommitSQL/RollbackSQL
	// on the pinned connection, with no database/sql transaction object
	// at all (SQLite, so that BEGIN IMMEDIATE is what opens the transaction).
	ManualTx    bool
	CommitSQL   string
	RollbackSQL string

	// Advisory is nil when the driver does not support advisory locking.
	Advisory *AdvisoryCapability

	// IsDuplicateKey classifies an error as a unique/primary-key violation
	// (SQLSTATE class "23"), grounded in the driver's concrete error type.
	IsDuplicateKey func(err error) bool
}

var registry = map[string]Dialect{}

// register is called from each driver file's init().
func register(d Dialect) {
	if _, exists := registry[d.Name]; exists {
		panic(fmt.Sprintf("dialect: duplicate registration for %q", d.Name))
	}
	registry[d.Name] = d
}

// Get returns the Dialect for tag, or an error if tag is outside the
// closed set {mysql, postgres, sqlite, mssql, oracle}.
func Get(tag string) (Dialect, error) {
	d, ok := registry[tag]
	if !ok {
		return Dialect{}, fmt.Errorf("%w: %q (supported: mysql, postgres, sqlite, mssql, oracle)", ErrUnsupportedDriver, tag)
	}
	return d, nil
}

// Supported returns the sorted set of registered driver tags, for error
// messages and CLI help text.
func Supported() []string {
	return []string{"mssql", "mysql", "oracle", "postgres", "sqlite"}
}
