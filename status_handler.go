package dbsession

// HandlerState names the position in the open/read/write/destroy/gc/close
// state machine described in the data model. Transitions are driven only
// by the documented Handler methods.
type HandlerState int

const (
	StateClosed HandlerState = iota
	StateOpen
	StateReading
	StateActive
	StateClosing
)

func (s HandlerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateReading:
		return "reading"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// HandlerStatus is a cheap introspection snapshot for operators and tests —
// sessionctl status surfaces this instead of exposing Handler internals
// directly.
type HandlerStatus struct {
	State          HandlerState
	LockMode       LockMode
	InTransaction  bool
	GCCalled       bool
	SessionExpired bool
	Driver         string
	Table          string
}

// Status returns a snapshot of the handler's current state.
func (h *Handler) Status() HandlerStatus {
	return HandlerStatus{
		State:          h.state,
		LockMode:       h.config.LockMode,
		InTransaction:  h.tx.isOpen(),
		GCCalled:       h.gcCalled,
		SessionExpired: h.sessionExpired,
		Driver:         h.dialect.Name,
		Table:          h.config.Columns.Table,
	}
}
