package dbsession

import (
	"errors"
	"fmt"
)

// Common errors returned by Handler operations.
var (
	// ErrConfigurationError is returned when the handler cannot run as
	// configured: a session id rejected by the IDPolicy, or no usable
	// connection (none injected and no DSN, or the DSN fails to open/ping).
	// Advisory locking on a driver without it yields ErrUnsupportedOperation.
	ErrConfigurationError = errors.New("dbsession: configuration error")

	// ErrUnsupportedDriver is returned when a driver tag outside the closed
	// set {mysql, postgres, sqlite, mssql, oracle} is requested.
	ErrUnsupportedDriver = errors.New("dbsession: unsupported driver")

	// ErrUnsupportedOperation is returned when a capability (e.g. advisory
	// locking on mssql/oracle) is not implemented for the selected driver.
	ErrUnsupportedOperation = errors.New("dbsession: unsupported operation")

	// ErrNotOpen is returned when Read/Write/Destroy/Close is called before Open.
	ErrNotOpen = errors.New("dbsession: handler not open")

	// ErrLockTimeout is returned when an advisory lock could not be acquired.
	ErrLockTimeout = errors.New("dbsession: lock timeout")
)

// HandlerError wraps a database error with the session/operation context
// that produced it, so callers and logs see which id, op, and driver were
// involved without needing to thread that through every error string.
type HandlerError struct {
	SessionID string // the session id involved, if any
	Op        string // "open", "read", "write", "destroy", "close", "purge", "createTable"
	Driver    string // driver tag: mysql, postgres, sqlite, mssql, oracle
	Cause     error
}

func (e *HandlerError) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("dbsession: %s failed for session %q on %s: %v", e.Op, e.SessionID, e.Driver, e.Cause)
	}
	return fmt.Sprintf("dbsession: %s failed on %s: %v", e.Op, e.Driver, e.Cause)
}

func (e *HandlerError) Unwrap() error {
	return e.Cause
}

// newHandlerError wraps cause with operation context. Returns nil if cause is nil,
// so callers can write `return newHandlerError(...)` straight from an `if err != nil`.
func newHandlerError(op, driver, sessionID string, cause error) error {
	if cause == nil {
		return nil
	}
	return &HandlerError{SessionID: sessionID, Op: op, Driver: driver, Cause: cause}
}
