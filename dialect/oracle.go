package dialect

import (
	"errors"
	"fmt"
	"strings"

	go_ora "github.com/sijms/go-ora/v2"
)

func init() {
	register(Dialect{
		Name:            "oracle",
		SQLDriverName:   "oracle",
		Placeholder:     PlaceholderColon,
		QuoteIdentifier: QuoteDoubleQuotes,

		CreateTableSQL: func(c Columns) string {
			// Oracle has no CREATE TABLE IF NOT EXISTS; guard with a
			// PL/SQL block that swallows ORA-00955 (name already used).
			return fmt.Sprintf(`
				BEGIN
					EXECUTE IMMEDIATE 'CREATE TABLE %s (
						%s RAW(128) NOT NULL PRIMARY KEY,
						%s BLOB NOT NULL,
						%s NUMBER(20) DEFAULT 0 NOT NULL,
						%s NUMBER(20) DEFAULT 0 NOT NULL
					)';
				EXCEPTION
					WHEN OTHERS THEN
						IF SQLCODE != -955 THEN
							RAISE;
						END IF;
				END;`,
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data),
				QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time))
		},

		SelectLockingSQL: func(c Columns) string {
			return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = :1 FOR UPDATE",
				QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID))
		},
		SelectPlainSQL: func(c Columns) string {
			return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = :1",
				QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID))
		},
		InsertPlaceholderSQL: func(c Columns) string {
			return fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (:1, EMPTY_BLOB(), 0, 0)",
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time))
		},
		NeedsPlaceholderRow: true,
		UpsertSQL: func(c Columns, _ string) (string, bool) {
			return fmt.Sprintf(`
				MERGE INTO %s target
				USING (SELECT :1 AS %s, :2 AS %s, :3 AS %s, :4 AS %s FROM DUAL) source
				ON (target.%s = source.%s)
				WHEN MATCHED THEN
					UPDATE SET target.%s = source.%s, target.%s = source.%s, target.%s = source.%s
				WHEN NOT MATCHED THEN
					INSERT (%s, %s, %s, %s) VALUES (source.%s, source.%s, source.%s, source.%s)`,
				QuoteDoubleQuotes(c.Table),
				QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time),
				QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.ID),
				QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Data),
				QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Expiry),
				QuoteDoubleQuotes(c.Time), QuoteDoubleQuotes(c.Time),
				QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time),
				QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time)), true
		},
		UpdateSQL: func(c Columns) string {
			return fmt.Sprintf("UPDATE %s SET %s = :1, %s = :2, %s = :3 WHERE %s = :4",
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time), QuoteDoubleQuotes(c.ID))
		},
		InsertSQL: func(c Columns) string {
			return fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES (:1, :2, :3, :4)",
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time))
		},
		DeleteSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s WHERE %s = :1", QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID))
		},
		GCSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s WHERE %s < :1", QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.Expiry))
		},
		PurgeSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s", QuoteDoubleQuotes(c.Table))
		},

		// DBMS_LOCK gives Oracle an advisory locking primitive, but per the
		// same Open Question resolution as SQL Server, this driver leaves
		// LOCK_ADVISORY unsupported rather than wrap a user-defined lock
		// handle allocated through DBMS_LOCK.ALLOCATE_UNIQUE.
		Advisory: nil,

		IsDuplicateKey: func(err error) bool {
			if err == nil {
				return false
			}
			var oraErr *go_ora.OracleError
			if errors.As(err, &oraErr) {
				return oraErr.ErrCode == 1 || oraErr.ErrCode == 2292
			}
			return strings.Contains(err.Error(), "ORA-00001")
		},
	})
}
