package dialect

import "errors"

// ErrUnsupportedDriver is wrapped by Get when asked for a tag outside the
// closed driver set.
var ErrUnsupportedDriver = errors.New("dialect: unsupported driver")

// ErrUnsupportedOperation is returned by capability accessors (e.g.
// advisory lock acquisition) for drivers that do not implement them.
var ErrUnsupportedOperation = errors.New("dialect: unsupported operation")

// ErrLockTimeout is returned by AdvisoryCapability.Acquire implementations
// when the engine's own lock wait expires before the lock was granted.
var ErrLockTimeout = errors.New("dialect: lock timeout")
