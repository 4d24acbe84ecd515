package dbsession

import (
	"context"
	"database/sql"

	"github.com/honeynil/dbsession/dialect"
)

// txManager wraps begin/commit/rollback with the inTransaction flag and the
// per-dialect quirks: sqlite issues a raw BEGIN IMMEDIATE/COMMIT/ROLLBACK
// instead of using database/sql's native transaction object, and mysql
// needs its isolation level set on the exact connection that is about to
// start the transaction. Both cases require a dedicated *sql.Conn pinned
// for the transaction's lifetime, so txManager always acquires one rather
// than calling db.BeginTx directly.
type txManager struct {
	dialect dialect.Dialect

	conn          *sql.Conn
	tx            *sql.Tx
	inTransaction bool
}

// handle returns the dbHandle statements should run against: the pinned
// *sql.Tx when one exists, or the raw *sql.Conn under a manual (sqlite)
// transaction, or nil when nothing is open.
func (m *txManager) handle() dialect.DBHandle {
	if m.tx != nil {
		return m.tx
	}
	return m.conn
}

func (m *txManager) isOpen() bool {
	return m.inTransaction
}

// begin is a no-op if a transaction is already open, matching §4.3.
func (m *txManager) begin(ctx context.Context, db *sql.DB) error {
	if m.inTransaction {
		return nil
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return err
	}

	if m.dialect.BeginTxQuirk != nil {
		if err := m.dialect.BeginTxQuirk(ctx, conn); err != nil {
			_ = conn.Close()
			return err
		}
	}

	if m.dialect.ManualTx {
		m.conn = conn
		m.tx = nil
	} else {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			_ = conn.Close()
			return err
		}
		m.conn = conn
		m.tx = tx
	}

	m.inTransaction = true
	return nil
}

// commit commits the open transaction and releases the pinned connection.
// On failure it rolls back and returns the original commit error, per §4.3.
func (m *txManager) commit(ctx context.Context) error {
	if !m.inTransaction {
		return nil
	}

	var commitErr error
	if m.dialect.ManualTx {
		_, commitErr = m.conn.ExecContext(ctx, m.dialect.CommitSQL)
	} else {
		commitErr = m.tx.Commit()
	}

	conn, tx := m.conn, m.tx
	m.conn, m.tx, m.inTransaction = nil, nil, false

	if commitErr != nil {
		if m.dialect.ManualTx {
			_, _ = conn.ExecContext(ctx, m.dialect.RollbackSQL)
		} else {
			_ = tx.Rollback()
		}
		_ = conn.Close()
		return commitErr
	}
	return conn.Close()
}

// rollback only runs if inTransaction, so a redundant rollback after an
// already-cleared transaction never masks an earlier error (P7).
func (m *txManager) rollback(ctx context.Context) error {
	if !m.inTransaction {
		return nil
	}

	var rollbackErr error
	if m.dialect.ManualTx {
		_, rollbackErr = m.conn.ExecContext(ctx, m.dialect.RollbackSQL)
	} else {
		rollbackErr = m.tx.Rollback()
	}

	conn := m.conn
	m.conn, m.tx, m.inTransaction = nil, nil, false
	_ = conn.Close()
	return rollbackErr
}
