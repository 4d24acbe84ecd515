package dbsession

import (
	"context"
	"database/sql"
	"fmt"
)

// connectionGateway owns the *sql.DB the handler talks to. It either wraps
// a connection the caller already opened (and leaves it running after
// Close) or holds a DSN and opens the connection lazily on first use (and
// closes it again on Close).
type connectionGateway struct {
	driver        string // dialect tag, used only for error messages
	sqlDriverName string // name registered with database/sql; what sql.Open needs
	dsn           string

	db            *sql.DB
	owned         bool // true if this gateway opened db itself and must close it
	serverVersion string
}

func newInjectedGateway(driver string, db *sql.DB) *connectionGateway {
	return &connectionGateway{driver: driver, db: db, owned: false}
}

func newLazyGateway(driver, dsn string) *connectionGateway {
	return &connectionGateway{driver: driver, dsn: dsn, owned: true}
}

// ensure opens the lazy connection on first use. Calling it again once the
// connection is live is a no-op, matching the spec's "open lazily
// materializes the connection" data-flow description.
func (g *connectionGateway) ensure(ctx context.Context) error {
	if g.db != nil {
		return nil
	}
	if g.dsn == "" {
		return fmt.Errorf("%w: no connection injected and no DSN configured", ErrConfigurationError)
	}

	db, err := sql.Open(g.sqlDriverName, g.dsn)
	if err != nil {
		return fmt.Errorf("%w: opening %s connection: %v", ErrConfigurationError, g.driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("%w: pinging %s connection: %v", ErrConfigurationError, g.driver, err)
	}

	g.db = db
	return nil
}

// useSavePath lets Open's savePath argument double as a DSN when the
// handler was constructed without one, matching the save-handler contract
// where the host's save_path is the only DSN source available at open time.
func (g *connectionGateway) useSavePath(savePath string) {
	if g.db == nil && g.dsn == "" && savePath != "" {
		g.dsn = savePath
	}
}

func (g *connectionGateway) close() error {
	if g.db == nil {
		return nil
	}
	if !g.owned {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	return err
}
