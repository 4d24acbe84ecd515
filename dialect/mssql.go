package dialect

import (
	"errors"
	"fmt"

	"github.com/microsoft/go-mssqldb"
)

func init() {
	register(Dialect{
		Name:            "mssql",
		SQLDriverName:   "sqlserver",
		Placeholder:     PlaceholderQuestion,
		QuoteIdentifier: QuoteBrackets,

		// SQL Server has no CREATE TABLE IF NOT EXISTS, so existence is
		// checked through OBJECT_ID as the teacher's migrations table did.
		CreateTableSQL: func(c Columns) string {
			return fmt.Sprintf(`
				IF OBJECT_ID(N'%s', N'U') IS NULL
				BEGIN
					CREATE TABLE %s (
						%s VARBINARY(128) NOT NULL PRIMARY KEY,
						%s VARBINARY(MAX) NOT NULL,
						%s BIGINT NOT NULL DEFAULT 0,
						%s BIGINT NOT NULL DEFAULT 0
					)
				END`,
				c.Table, QuoteBrackets(c.Table), QuoteBrackets(c.ID), QuoteBrackets(c.Data),
				QuoteBrackets(c.Expiry), QuoteBrackets(c.Time))
		},

		SelectLockingSQL: func(c Columns) string {
			return fmt.Sprintf("SELECT %s, %s FROM %s WITH (UPDLOCK, ROWLOCK) WHERE %s = ?",
				QuoteBrackets(c.Data), QuoteBrackets(c.Expiry), QuoteBrackets(c.Table), QuoteBrackets(c.ID))
		},
		SelectPlainSQL: func(c Columns) string {
			return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ?",
				QuoteBrackets(c.Data), QuoteBrackets(c.Expiry), QuoteBrackets(c.Table), QuoteBrackets(c.ID))
		},
		InsertPlaceholderSQL: func(c Columns) string {
			return fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (?, 0x, 0, 0)",
				QuoteBrackets(c.Table), QuoteBrackets(c.ID), QuoteBrackets(c.Data), QuoteBrackets(c.Expiry), QuoteBrackets(c.Time))
		},
		NeedsPlaceholderRow: true,
		// Single-statement upserts were only reliable from SQL Server 2008
		// onward (MERGE was introduced there); serverVersion is expected as
		// the @@VERSION-derived major release year string, e.g. "2008".
		UpsertSQL: func(c Columns, serverVersion string) (string, bool) {
			if !supportsMerge(serverVersion) {
				return "", false
			}
			return fmt.Sprintf(`
				MERGE INTO %s WITH (HOLDLOCK) AS target
				USING (SELECT ? AS %s, ? AS %s, ? AS %s, ? AS %s) AS source
				ON target.%s = source.%s
				WHEN MATCHED THEN
					UPDATE SET %s = source.%s, %s = source.%s, %s = source.%s
				WHEN NOT MATCHED THEN
					INSERT (%s, %s, %s, %s) VALUES (source.%s, source.%s, source.%s, source.%s);`,
				QuoteBrackets(c.Table),
				QuoteBrackets(c.ID), QuoteBrackets(c.Data), QuoteBrackets(c.Expiry), QuoteBrackets(c.Time),
				QuoteBrackets(c.ID), QuoteBrackets(c.ID),
				QuoteBrackets(c.Data), QuoteBrackets(c.Data),
				QuoteBrackets(c.Expiry), QuoteBrackets(c.Expiry),
				QuoteBrackets(c.Time), QuoteBrackets(c.Time),
				QuoteBrackets(c.ID), QuoteBrackets(c.Data), QuoteBrackets(c.Expiry), QuoteBrackets(c.Time),
				QuoteBrackets(c.ID), QuoteBrackets(c.Data), QuoteBrackets(c.Expiry), QuoteBrackets(c.Time)), true
		},
		UpdateSQL: func(c Columns) string {
			return fmt.Sprintf("UPDATE %s SET %s = ?, %s = ?, %s = ? WHERE %s = ?",
				QuoteBrackets(c.Table), QuoteBrackets(c.Data), QuoteBrackets(c.Expiry), QuoteBrackets(c.Time), QuoteBrackets(c.ID))
		},
		InsertSQL: func(c Columns) string {
			return fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (?, ?, ?, ?)",
				QuoteBrackets(c.Table), QuoteBrackets(c.ID), QuoteBrackets(c.Data), QuoteBrackets(c.Expiry), QuoteBrackets(c.Time))
		},
		DeleteSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s WHERE %s = ?", QuoteBrackets(c.Table), QuoteBrackets(c.ID))
		},
		GCSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s WHERE %s < ?", QuoteBrackets(c.Table), QuoteBrackets(c.Expiry))
		},
		PurgeSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s", QuoteBrackets(c.Table))
		},

		// sp_getapplock/sp_releaseapplock exist, but the resolution for this
		// driver (see Design Notes) is to leave LOCK_ADVISORY unsupported
		// here rather than translate it — SQL Server's session-scoped
		// app lock ties lock ownership to the exact connection in a way
		// that doesn't compose cleanly with the pool-borrowing
		// LOCK_TRANSACTIONAL path already in place for this driver, and
		// UPDLOCK/ROWLOCK already covers the transactional case.
		Advisory: nil,

		IsDuplicateKey: func(err error) bool {
			var merr mssql.Error
			if errors.As(err, &merr) {
				return merr.Number == 2627 || merr.Number == 2601
			}
			return false
		},
	})
}

func supportsMerge(serverVersion string) bool {
	if serverVersion == "" {
		return true
	}
	major, _, ok := parseMajorMinor(serverVersion)
	if !ok {
		return true
	}
	return major >= 2008
}
