package dbsession

import (
	"errors"
	"testing"
)

func TestNewHandlerErrorNilCause(t *testing.T) {
	t.Parallel()
	if err := newHandlerError("read", "sqlite", "abc", nil); err != nil {
		t.Errorf("newHandlerError with a nil cause = %v; want nil", err)
	}
}

func TestHandlerErrorUnwrap(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")
	err := newHandlerError("write", "mysql", "sess-1", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through HandlerError to the cause")
	}

	var he *HandlerError
	if !errors.As(err, &he) {
		t.Fatal("errors.As should recover the *HandlerError")
	}
	if he.Op != "write" || he.Driver != "mysql" || he.SessionID != "sess-1" {
		t.Errorf("HandlerError fields = %+v; want op=write driver=mysql session=sess-1", he)
	}
}

func TestHandlerErrorMessageOmitsEmptySessionID(t *testing.T) {
	t.Parallel()
	err := newHandlerError("createTable", "postgres", "", errors.New("boom"))
	msg := err.Error()
	if msg == "" {
		t.Fatal("Error() returned an empty string")
	}
}
