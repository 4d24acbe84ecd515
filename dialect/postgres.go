package dialect

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
)

func init() {
	register(Dialect{
		Name:            "postgres",
		SQLDriverName:   "pgx",
		Placeholder:     PlaceholderDollar,
		QuoteIdentifier: QuoteDoubleQuotes,

		CreateTableSQL: func(c Columns) string {
			return fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					%s BYTEA NOT NULL PRIMARY KEY,
					%s BYTEA NOT NULL,
					%s BIGINT NOT NULL DEFAULT 0,
					%s BIGINT NOT NULL DEFAULT 0
				)`,
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data),
				QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time))
		},

		SelectLockingSQL: func(c Columns) string {
			return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = $1 FOR UPDATE",
				QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID))
		},
		SelectPlainSQL: func(c Columns) string {
			return fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = $1",
				QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID))
		},
		InsertPlaceholderSQL: func(c Columns) string {
			return fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, ''::bytea, 0, 0)",
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time))
		},
		NeedsPlaceholderRow: true,
		// ON CONFLICT is available since PostgreSQL 9.5; serverVersion is a
		// numeric string like "9.4.0" or "140002" (SHOW server_version /
		// server_version_num). Treat anything we can't parse as modern.
		UpsertSQL: func(c Columns, serverVersion string) (string, bool) {
			if !supportsOnConflict(serverVersion) {
				return "", false
			}
			return fmt.Sprintf(`
				INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)
				ON CONFLICT (%s) DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time),
				QuoteDoubleQuotes(c.ID),
				QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Data),
				QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Expiry),
				QuoteDoubleQuotes(c.Time), QuoteDoubleQuotes(c.Time)), true
		},
		UpdateSQL: func(c Columns) string {
			return fmt.Sprintf("UPDATE %s SET %s = $1, %s = $2, %s = $3 WHERE %s = $4",
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time), QuoteDoubleQuotes(c.ID))
		},
		InsertSQL: func(c Columns) string {
			return fmt.Sprintf("INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)",
				QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID), QuoteDoubleQuotes(c.Data), QuoteDoubleQuotes(c.Expiry), QuoteDoubleQuotes(c.Time))
		},
		DeleteSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s WHERE %s = $1", QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.ID))
		},
		GCSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s WHERE %s < $1", QuoteDoubleQuotes(c.Table), QuoteDoubleQuotes(c.Expiry))
		},
		PurgeSQL: func(c Columns) string {
			return fmt.Sprintf("DELETE FROM %s", QuoteDoubleQuotes(c.Table))
		},

		Advisory: &AdvisoryCapability{
			Acquire: func(ctx context.Context, db *sql.DB, id string) (PendingRelease, error) {
				conn, err := db.Conn(ctx)
				if err != nil {
					return PendingRelease{}, err
				}

				keys := advisoryKeys(id)
				var acquireSQL, releaseSQL string
				var args []any
				if len(keys) == 1 {
					acquireSQL, releaseSQL = "SELECT pg_advisory_lock($1)", "SELECT pg_advisory_unlock($1)"
					args = []any{keys[0]}
				} else {
					acquireSQL, releaseSQL = "SELECT pg_advisory_lock($1, $2)", "SELECT pg_advisory_unlock($1, $2)"
					args = []any{keys[0], keys[1]}
				}

				// pg_advisory_lock returns void; it blocks until granted
				// rather than timing out like MySQL's GET_LOCK.
				if _, err := conn.ExecContext(ctx, acquireSQL, args...); err != nil {
					_ = conn.Close()
					return PendingRelease{}, err
				}

				return PendingRelease{Handle: conn, SQL: releaseSQL, Args: args, Cleanup: conn.Close}, nil
			},
		},

		IsDuplicateKey: func(err error) bool {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23"
			}
			return false
		},
	})
}

// supportsOnConflict reports whether serverVersion (as returned by SHOW
// server_version or SERVER_VERSION_NUM) is PostgreSQL 9.5 or newer.
func supportsOnConflict(serverVersion string) bool {
	if serverVersion == "" {
		return true
	}
	major, minor, ok := parseMajorMinor(serverVersion)
	if !ok {
		return true
	}
	if major >= 10000 {
		// server_version_num form, e.g. "90400" (9.4) or "140002" (14).
		major, minor = major/10000, (major/100)%100
	}
	return major > 9 || (major == 9 && minor >= 5)
}

func parseMajorMinor(v string) (major, minor int, ok bool) {
	var i int
	for i < len(v) && v[i] >= '0' && v[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(v[:i])
	if err != nil {
		return 0, 0, false
	}
	if i >= len(v) || v[i] != '.' {
		return major, 0, true
	}
	j := i + 1
	for j < len(v) && v[j] >= '0' && v[j] <= '9' {
		j++
	}
	minor, err = strconv.Atoi(v[i+1 : j])
	if err != nil {
		return major, 0, true
	}
	return major, minor, true
}

// advisoryKeys derives pg_advisory_lock key(s) from the session id's hex
// digest. On 64-bit hosts a single 60-bit signed integer is taken from the
// first 15 hex characters (one fewer than the 16 that would fill a 64-bit
// word, to keep the value representable as a signed int64 without the
// driver rejecting it). On 32-bit hosts two 28-bit integers are taken from
// 7 hex characters each and passed as the two-argument form.
func advisoryKeys(id string) []int64 {
	sum := sha256.Sum256([]byte(id))
	hexDigest := hex.EncodeToString(sum[:])

	if strconv.IntSize >= 64 {
		v, _ := strconv.ParseInt(hexDigest[:15], 16, 64)
		return []int64{v}
	}

	a, _ := strconv.ParseInt(hexDigest[:7], 16, 64)
	b, _ := strconv.ParseInt(hexDigest[7:14], 16, 64)
	return []int64{a, b}
}
