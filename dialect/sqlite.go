package dialect

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

func init() {
	register(Dialect{
		Name:            "sqlite",
		SQLDriverName:   "sqlite3",
		Placeholder:     PlaceholderQuestion,
		QuoteIdentifier: QuoteDoubleQuotes,

		CreateTableSQL: func(c Columns) string {
			return fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					%s BLOB NOT NULL PRIMARY KEY,
					%s BLOB NOT NULL,
					%s INTEGER NOT NULL DEFAULT 0,
					%s INTEGER NOT NULL DEFAULT 0
				)`,
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data),
				QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time))
		},

		// SQLite has no row-level FOR UPDATE hint; the surrounding BEGIN
		// IMMEDIATE (BeginTxQuirk below) already takes the database-wide
		// write lock before this runs, so the plain SELECT is sufficient.
		SelectLockingSQL: func(c Columns) string {
			return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ?",
				QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID))
		},
		SelectPlainSQL: func(c Columns) string {
			return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ?",
				QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID))
		},
		InsertPlaceholderSQL: func(c Columns) string {
			return fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (?, x'', 0, 0)",
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time))
		},
		UpsertSQL: func(c Columns, _ string) (string, bool) {
			return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s, %s, %s, %s) VALUES (?, ?, ?, ?)",
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time)), true
		},
		UpdateSQL: func(c Columns) string {
			return fmt.Sprintf("UPDATE %s SET %s = ?, %s = ?, %s = ? WHERE %s = ?",
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time), QuoteDoubleQuotes(c.ID))
		},
		InsertSQL: func(c Columns) string {
			return fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (?, ?, ?, ?)",
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time))
		},
		DeleteSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s WHERE %s = ?", QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID))
		},
		GCSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s WHERE %s < ?", QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.Expiry))
		},
		PurgeSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s", QuoteDoubleQuotes(c.Table))
		},

		// SQLite's database/sql driver starts transactions with a plain
		// BEGIN, which takes only a deferred (read) lock until the first
		// write statement runs. For the transactional lock strategy we need
		// the write lock held from the first SELECT, so the transaction
		// manager issues a raw BEGIN IMMEDIATE itself and manages
		// COMMIT/ROLLBACK as statements rather than through sql.Tx.
		BeginTxQuirk: func(ctx context.Context, h DBHandle) error {
			_, err := h.ExecContext(ctx, "BEGIN IMMEDIATE")
			return err
		},
		ManualTx:    true,
		CommitSQL:   "COMMIT",
		RollbackSQL: "ROLLBACK",

		// No session- or database-scoped advisory locking primitive exists
		// in SQLite; LOCK_ADVISORY is rejected for this driver rather than
		// approximated with file locks or a sidecar table.
		Advisory: nil,

		IsDuplicateKey: func(err error) bool {
			var sqliteErr sqlite3.Error
			if errors.As(err, &sqliteErr) {
				return sqliteErr.Code == sqlite3.ErrConstraint
			}
			return false
		},
	})
}
