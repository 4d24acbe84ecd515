package dbsession

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/honeynil/dbsession/dialect"
)

// maxPlaceholderRetries bounds the duplicate-key retry loop in Read under
// LockTransactional. The spec's scenario 4 expects the loser of a
// first-touch race to retry once and see the winner's row; this headroom
// only matters if more than two processes race the same new id at once.
const maxPlaceholderRetries = 10

// Handler implements the open/read/write/destroy/gc/close save-handler
// contract against a SQL database, with pluggable locking strategy and a
// dialect-driven SQL layer portable across mysql, postgres, sqlite, mssql,
// and oracle.
type Handler struct {
	config  Config
	dialect dialect.Dialect
	gateway *connectionGateway
	tx      *txManager
	lock    lockStrategy

	pendingReleases []dialect.PendingRelease

	state          HandlerState
	gcCalled       bool
	sessionExpired bool
}

// New builds a Handler around an already-open *sql.DB. driver is the
// dialect tag (mysql, postgres, sqlite, mssql, oracle); db outlives the
// handler and is never closed by it.
func New(driver string, db *sql.DB, opts ...Option) (*Handler, error) {
	return newHandler(driver, newInjectedGateway(driver, db), opts)
}

// NewWithDSN builds a Handler that lazily opens its own connection from
// dsn on first use, and closes it again on Close.
func NewWithDSN(driver, dsn string, opts ...Option) (*Handler, error) {
	return newHandler(driver, newLazyGateway(driver, dsn), opts)
}

func newHandler(driver string, gateway *connectionGateway, opts []Option) (*Handler, error) {
	d, err := dialect.Get(driver)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedDriver, err)
	}
	gateway.sqlDriverName = d.SQLDriverName

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Handler{
		config:  cfg,
		dialect: d,
		gateway: gateway,
		tx:      &txManager{dialect: d},
		lock:    newLockStrategy(cfg.LockMode),
		state:   StateClosed,
	}, nil
}

// Open ensures the connection exists, using savePath as the DSN when the
// handler was constructed with NewWithDSN("", ...) and no DSN yet. It
// never fails soft: connection errors propagate to the caller.
func (h *Handler) Open(ctx context.Context, savePath, name string) error {
	h.gateway.useSavePath(savePath)
	if err := h.gateway.ensure(ctx); err != nil {
		return newHandlerError("open", h.dialect.Name, "", err)
	}
	h.state = StateOpen
	return nil
}

// Read fetches the session payload for id, applying the handler's lock
// strategy. A genuinely new session (nothing found, or this call just
// planted the first placeholder for an id nobody else had touched) yields
// empty data and IsSessionExpired()=false. An existing row found by the
// SELECT with expiry=0 (someone else's placeholder) or expiry in the past
// yields empty data and IsSessionExpired()=true (I4) — the two cases are
// indistinguishable to the caller by design, but distinct from a new
// session.
func (h *Handler) Read(ctx context.Context, id string) ([]byte, error) {
	if err := h.config.IDPolicy.check(id); err != nil {
		return nil, err
	}

	h.state = StateReading
	if err := h.lock.acquire(ctx, h, id); err != nil {
		return nil, err
	}

	data, expiry, found, err := h.selectRow(ctx, id)
	if err != nil {
		return nil, err
	}

	h.state = StateActive
	if !found {
		h.sessionExpired = false
		return []byte{}, nil
	}
	if expiry == 0 || expiry < time.Now().Unix() {
		h.sessionExpired = true
		return []byte{}, nil
	}
	h.sessionExpired = false
	return data, nil
}

// selectRow runs the locking or plain SELECT per the active lock strategy,
// materializing a placeholder row and retrying on a duplicate-key race
// when the strategy requires it. found reports whether the SELECT located
// a row that already existed before this call: false covers both "no
// locking needed, nothing there" and "nothing there yet, so this call
// planted the very first placeholder" — both are a genuinely new session.
// true means the SELECT found an existing row (another process's
// placeholder or a real, possibly expired, session), which Read then
// checks for expiry.
func (h *Handler) selectRow(ctx context.Context, id string) (data []byte, expiry int64, found bool, err error) {
	selectSQL := h.dialect.SelectPlainSQL(h.config.Columns)
	if h.lock.usesLockingSelect() {
		selectSQL = h.dialect.SelectLockingSQL(h.config.Columns)
	}

	for attempt := 0; ; attempt++ {
		handle := h.activeHandle()
		var rowData []byte
		var rowExpiry int64
		row := handle.QueryRowContext(ctx, selectSQL, id)
		scanErr := row.Scan(&rowData, &rowExpiry)
		switch {
		case scanErr == nil:
			return rowData, rowExpiry, true, nil
		case errors.Is(scanErr, sql.ErrNoRows):
			if !h.lock.placeholderRetry(h.dialect) {
				return []byte{}, 0, false, nil
			}
		default:
			_ = h.tx.rollback(ctx)
			return nil, 0, false, newHandlerError("read", h.dialect.Name, id, scanErr)
		}

		// Miss under a strategy that needs a row to lock: materialize the
		// placeholder. A duplicate-key error here means a concurrent
		// process won the race; roll back (mandatory on postgres, where a
		// failed statement poisons the rest of the transaction), begin a
		// fresh transaction, and loop to re-select the winner's row.
		if attempt >= maxPlaceholderRetries {
			_ = h.tx.rollback(ctx)
			return nil, 0, false, newHandlerError("read", h.dialect.Name, id,
				fmt.Errorf("placeholder insert did not converge after %d attempts", maxPlaceholderRetries))
		}

		handle = h.activeHandle()
		_, insertErr := handle.ExecContext(ctx, h.dialect.InsertPlaceholderSQL(h.config.Columns), id)
		if insertErr == nil {
			// We planted the first placeholder for this id: a genuinely
			// new session, not a found row.
			return []byte{}, 0, false, nil
		}
		if !h.dialect.IsDuplicateKey(insertErr) {
			_ = h.tx.rollback(ctx)
			return nil, 0, false, newHandlerError("read", h.dialect.Name, id, insertErr)
		}

		h.config.Logger.WarnContext(ctx, "dbsession: placeholder insert lost duplicate-key race, retrying",
			"session_id", id, "driver", h.dialect.Name, "attempt", attempt)

		if err := h.tx.rollback(ctx); err != nil {
			return nil, 0, false, newHandlerError("read", h.dialect.Name, id, err)
		}
		if err := h.tx.begin(ctx, h.gateway.db); err != nil {
			return nil, 0, false, newHandlerError("read", h.dialect.Name, id, err)
		}
	}
}

// Write stores data under id with expiry = now + session_max_lifetime,
// preferring the dialect's atomic upsert and falling back to
// UPDATE-then-INSERT-with-retry where no single-statement form exists.
func (h *Handler) Write(ctx context.Context, id string, data []byte) error {
	if err := h.config.IDPolicy.check(id); err != nil {
		return err
	}

	now := time.Now().Unix()
	expiry := now + h.config.MaxLifetime()
	handle := h.activeHandle()
	cols := h.config.Columns

	if upsertSQL, ok := h.dialect.UpsertSQL(cols, h.config.ServerVersion); ok {
		if _, err := handle.ExecContext(ctx, upsertSQL, id, data, expiry, now); err != nil {
			_ = h.tx.rollback(ctx)
			return newHandlerError("write", h.dialect.Name, id, err)
		}
		return nil
	}

	res, err := handle.ExecContext(ctx, h.dialect.UpdateSQL(cols), data, expiry, now, id)
	if err != nil {
		_ = h.tx.rollback(ctx)
		return newHandlerError("write", h.dialect.Name, id, err)
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		return nil
	}

	_, err = handle.ExecContext(ctx, h.dialect.InsertSQL(cols), id, data, expiry, now)
	if err == nil {
		return nil
	}
	if !h.dialect.IsDuplicateKey(err) {
		_ = h.tx.rollback(ctx)
		return newHandlerError("write", h.dialect.Name, id, err)
	}

	h.config.Logger.WarnContext(ctx, "dbsession: insert-after-miss lost duplicate-key race, falling back to update",
		"session_id", id, "driver", h.dialect.Name)

	if _, err := handle.ExecContext(ctx, h.dialect.UpdateSQL(cols), data, expiry, now, id); err != nil {
		_ = h.tx.rollback(ctx)
		return newHandlerError("write", h.dialect.Name, id, err)
	}
	return nil
}

// Destroy deletes the row for id. Calling it twice is equivalent to
// calling it once (P5): a DELETE matching zero rows is not an error.
func (h *Handler) Destroy(ctx context.Context, id string) error {
	if err := h.config.IDPolicy.check(id); err != nil {
		return err
	}

	handle := h.activeHandle()
	if _, err := handle.ExecContext(ctx, h.dialect.DeleteSQL(h.config.Columns), id); err != nil {
		_ = h.tx.rollback(ctx)
		return newHandlerError("destroy", h.dialect.Name, id, err)
	}
	return nil
}

// GC marks the handler for a deferred expiry sweep at Close and returns
// immediately; it never deletes rows itself (P6). The return value exists
// for interface compatibility with hosts expecting a row count — the
// actual count is only available once the sweep runs at Close, so this
// returns the conservative constant 1 rather than guess.
func (h *Handler) GC(ctx context.Context, maxlifetime int) (int, error) {
	h.gcCalled = true
	return 1, nil
}

// Close commits any open transaction or drains pending advisory releases,
// runs the deferred GC sweep if GC was called, and drops the connection if
// it was opened lazily.
func (h *Handler) Close(ctx context.Context) error {
	h.state = StateClosing

	var firstErr error
	if err := h.lock.release(ctx, h); err != nil {
		firstErr = newHandlerError("close", h.dialect.Name, "", err)
	}

	if h.gcCalled {
		if err := h.sweepExpired(ctx); err != nil && firstErr == nil {
			firstErr = newHandlerError("close", h.dialect.Name, "", err)
		}
	}
	h.gcCalled = false

	if err := h.gateway.close(); err != nil && firstErr == nil {
		firstErr = newHandlerError("close", h.dialect.Name, "", err)
	}

	h.state = StateClosed
	return firstErr
}

// Purge deletes every row in the session table, expired or not. It is
// operator tooling, never called from the Read/Write/Destroy/GC path.
func (h *Handler) Purge(ctx context.Context) error {
	if err := h.gateway.ensure(ctx); err != nil {
		return newHandlerError("purge", h.dialect.Name, "", err)
	}
	if _, err := h.gateway.db.ExecContext(ctx, h.dialect.PurgeSQL(h.config.Columns)); err != nil {
		return newHandlerError("purge", h.dialect.Name, "", err)
	}
	return nil
}

func (h *Handler) sweepExpired(ctx context.Context) error {
	if h.gateway.db == nil {
		return nil
	}
	_, err := h.gateway.db.ExecContext(ctx, h.dialect.GCSQL(h.config.Columns), time.Now().Unix())
	return err
}

// drainPendingReleases runs every queued advisory release statement FIFO,
// each against the dedicated connection that acquired it, and returns that
// connection to the pool via its Cleanup. Draining continues past the
// first error so a failed release never strands the rest of the queue.
func (h *Handler) drainPendingReleases(ctx context.Context) error {
	var firstErr error
	for _, pr := range h.pendingReleases {
		if _, err := pr.Handle.ExecContext(ctx, pr.SQL, pr.Args...); err != nil && firstErr == nil {
			firstErr = err
		}
		if pr.Cleanup != nil {
			if err := pr.Cleanup(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	h.pendingReleases = nil
	return firstErr
}

// IsSessionExpired reports whether the most recent Read observed an
// expired (or placeholder) row rather than a genuinely new session.
func (h *Handler) IsSessionExpired() bool {
	return h.sessionExpired
}

// CreateTable is a one-shot bootstrap helper: it rolls back any ambient
// transaction, then executes the dialect's DDL and propagates the driver's
// error verbatim — including "table already exists" on drivers where the
// dialect doesn't guard for it.
func (h *Handler) CreateTable(ctx context.Context) error {
	if err := h.gateway.ensure(ctx); err != nil {
		return newHandlerError("createTable", h.dialect.Name, "", err)
	}
	if err := h.tx.rollback(ctx); err != nil {
		return newHandlerError("createTable", h.dialect.Name, "", err)
	}

	if _, err := h.gateway.db.ExecContext(ctx, h.dialect.CreateTableSQL(h.config.Columns)); err != nil {
		return newHandlerError("createTable", h.dialect.Name, "", err)
	}
	return nil
}

// activeHandle returns the handle statements should run against: the
// pinned transaction handle when one is open, otherwise the shared pool.
func (h *Handler) activeHandle() dialect.DBHandle {
	if h.tx.isOpen() {
		return h.tx.handle()
	}
	return h.gateway.db
}
