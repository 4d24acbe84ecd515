package dbsession

import (
	"context"
	"errors"
	"fmt"

	"github.com/honeynil/dbsession/dialect"
)

// lockStrategy is the tagged-variant counterpart of dialect.Dialect one
// level up: three small value types selected once at construction rather
// than a switch on LockMode at every call site.
type lockStrategy interface {
	// acquire runs at the top of Read, before any SELECT: transactionalLock
	// begins a transaction, advisoryLock takes the engine-level lock and
	// enqueues its release, noneLock does nothing.
	acquire(ctx context.Context, h *Handler, id string) error

	// release runs at Close: transactionalLock commits, advisoryLock drains
	// the pending-release queue FIFO, noneLock does nothing.
	release(ctx context.Context, h *Handler) error

	// usesLockingSelect reports whether Read should use the dialect's
	// locking SELECT variant instead of the plain one.
	usesLockingSelect() bool

	// placeholderRetry reports whether a miss on the locking SELECT should
	// materialize a placeholder row and retry on duplicate-key collision.
	// Only transactional locking touches row contents to establish a lock,
	// and even then only on dialects where d.NeedsPlaceholderRow is true —
	// SQLite's BEGIN IMMEDIATE already holds the database-wide write lock,
	// so it has nothing to gain from planting a placeholder row.
	placeholderRetry(d dialect.Dialect) bool
}

func newLockStrategy(mode LockMode) lockStrategy {
	switch mode {
	case LockAdvisory:
		return advisoryLock{}
	case LockTransactional:
		return transactionalLock{}
	default:
		return noneLock{}
	}
}

type noneLock struct{}

func (noneLock) acquire(context.Context, *Handler, string) error { return nil }
func (noneLock) release(context.Context, *Handler) error         { return nil }
func (noneLock) usesLockingSelect() bool                         { return false }
func (noneLock) placeholderRetry(dialect.Dialect) bool           { return false }

type advisoryLock struct{}

func (advisoryLock) acquire(ctx context.Context, h *Handler, id string) error {
	if h.dialect.Advisory == nil {
		return newHandlerError("read", h.dialect.Name, id, ErrUnsupportedOperation)
	}
	if err := h.gateway.ensure(ctx); err != nil {
		return err
	}

	pr, err := h.dialect.Advisory.Acquire(ctx, h.gateway.db, id)
	if err != nil {
		if errors.Is(err, dialect.ErrLockTimeout) {
			err = fmt.Errorf("%w: %w", ErrLockTimeout, err)
		}
		return newHandlerError("read", h.dialect.Name, id, err)
	}
	h.pendingReleases = append(h.pendingReleases, pr)
	return nil
}

func (advisoryLock) release(ctx context.Context, h *Handler) error {
	return h.drainPendingReleases(ctx)
}

func (advisoryLock) usesLockingSelect() bool               { return false }
func (advisoryLock) placeholderRetry(dialect.Dialect) bool { return false }

type transactionalLock struct{}

func (transactionalLock) acquire(ctx context.Context, h *Handler, id string) error {
	if err := h.gateway.ensure(ctx); err != nil {
		return err
	}
	return h.tx.begin(ctx, h.gateway.db)
}

func (transactionalLock) release(ctx context.Context, h *Handler) error {
	return h.tx.commit(ctx)
}

func (transactionalLock) usesLockingSelect() bool { return true }

// placeholderRetry is false for dialects that already hold an exclusive
// lock before the first SELECT runs (SQLite's BEGIN IMMEDIATE); planting a
// placeholder row there would just be an extra write with no locking
// benefit, so the miss is reported as a genuinely new session instead.
func (transactionalLock) placeholderRetry(d dialect.Dialect) bool { return d.NeedsPlaceholderRow }
