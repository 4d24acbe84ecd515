package dialect

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

func init() {
	register(Dialect{
		Name:            "mysql",
		SQLDriverName:   "mysql",
		Placeholder:     PlaceholderQuestion,
		QuoteIdentifier: QuoteBackticks,

		CreateTableSQL: func(c Columns) string {
			return fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					%s VARBINARY(128) NOT NULL PRIMARY KEY,
					%s BLOB NOT NULL,
					%s INT UNSIGNED NOT NULL DEFAULT 0,
					%s INT UNSIGNED NOT NULL DEFAULT 0
				) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
				QuoteBackticks(c.Table), QuoteBackticks(c.ID), QuoteBackticks(c.Data),
				QuoteBackticks(c.Expiry), QuoteBackticks(c.Time))
		},

		SelectLockingSQL: func(c Columns) string {
			return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ? FOR UPDATE",
				QuoteBackticks(c.Data), QuoteBackticks(c.Expiry), QuoteBackticks(c.Table), QuoteBackticks(c.ID))
		},
		SelectPlainSQL: func(c Columns) string {
			return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ?",
				QuoteBackticks(c.Data), QuoteBackticks(c.Expiry), QuoteBackticks(c.Table), QuoteBackticks(c.ID))
		},
		InsertPlaceholderSQL: func(c Columns) string {
			return fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (?, '', 0, 0)",
				QuoteBackticks(c.Table), QuoteBackticks(c.ID), QuoteBackticks(c.Data), QuoteBackticks(c.Expiry), QuoteBackticks(c.Time))
		},
		NeedsPlaceholderRow: true,
		UpsertSQL: func(c Columns, _ string) (string, bool) {
			return fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s, %s) VALUES (?, ?, ?, ?)
				ON DUPLICATE KEY UPDATE %s = VALUES(%s), %s = VALUES(%s), %s = VALUES(%s)`,
				QuoteBackticks(c.Table), QuoteBackticks(c.ID), QuoteBackticks(c.Data), QuoteBackticks(c.Expiry), QuoteBackticks(c.Time),
				QuoteBackticks(c.Data), QuoteBackticks(c.Data),
				QuoteBackticks(c.Expiry), QuoteBackticks(c.Expiry),
				QuoteBackticks(c.Time), QuoteBackticks(c.Time)), true
		},
		UpdateSQL: func(c Columns) string {
			return fmt.Sprintf("UPDATE %s SET %s = ?, %s = ?, %s = ? WHERE %s = ?",
				QuoteBackticks(c.Table), QuoteBackticks(c.Data), QuoteBackticks(c.Expiry), QuoteBackticks(c.Time), QuoteBackticks(c.ID))
		},
		InsertSQL: func(c Columns) string {
			return fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (?, ?, ?, ?)",
				QuoteBackticks(c.Table), QuoteBackticks(c.ID), QuoteBackticks(c.Data), QuoteBackticks(c.Expiry), QuoteBackticks(c.Time))
		},
		DeleteSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s WHERE %s = ?", QuoteBackticks(c.Table), QuoteBackticks(c.ID))
		},
		GCSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s WHERE %s < ?", QuoteBackticks(c.Table), QuoteBackticks(c.Expiry))
		},
		PurgeSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s", QuoteBackticks(c.Table))
		},

		// MySQL's default REPEATABLE READ triggers gap-lock deadlocks between
		// two sessions racing the same placeholder row, so every transaction
		// opened for session locking runs at READ COMMITTED instead.
		BeginTxQuirk: func(ctx context.Context, h DBHandle) error {
			_, err := h.ExecContext(ctx, "SET TRANSACTION ISOLATION LEVEL READ COMMITTED")
			return err
		},

		Advisory: &AdvisoryCapability{
			Acquire: func(ctx context.Context, db *sql.DB, id string) (PendingRelease, error) {
				conn, err := db.Conn(ctx)
				if err != nil {
					return PendingRelease{}, err
				}

				var result sql.NullInt64
				// 50s timeout matches the default innodb_lock_wait_timeout.
				row := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 50)", lockName(id))
				if err := row.Scan(&result); err != nil {
					_ = conn.Close()
					return PendingRelease{}, err
				}
				if !result.Valid || result.Int64 != 1 {
					_ = conn.Close()
					return PendingRelease{}, ErrLockTimeout
				}

				return PendingRelease{
					Handle:  conn,
					SQL:     "SELECT RELEASE_LOCK(?)",
					Args:    []any{lockName(id)},
					Cleanup: conn.Close,
				}, nil
			},
		},

		IsDuplicateKey: func(err error) bool {
			var merr *mysql.MySQLError
			if errors.As(err, &merr) {
				return merr.Number == 1062
			}
			return false
		},
	})
}

func lockName(id string) string {
	return "dbsession_" + id
}
