package dbsession

import (
	"context"
	"database/sql"
	"testing"
)

// TestHandler wraps a Handler with test-specific helpers that fail the
// test instead of returning an error, reducing boilerplate in session
// store tests.
//
// TestHandler automatically creates the session table and closes the
// handler when the test ends, via t.Cleanup().
//
// Usage:
//
//	func TestSessionRoundTrip(t *testing.T) {
//	    db := openTestDB(t)
//	    h := dbsession.NewTest(t, "sqlite", db)
//
//	    h.MustOpen("", "s")
//	    h.MustWrite("abc", []byte("payload"))
//	    h.MustClose()
//	}
type TestHandler struct {
	*Handler
	t   *testing.T
	ctx context.Context
}

// NewTest creates a Handler around db with automatic table bootstrap and
// cleanup. opts are applied the same way as New.
func NewTest(t *testing.T, driver string, db *sql.DB, opts ...Option) *TestHandler {
	t.Helper()

	h, err := New(driver, db, opts...)
	if err != nil {
		t.Fatalf("dbsession: failed to construct handler: %v", err)
	}

	ctx := context.Background()
	if err := h.Open(ctx, "", "test"); err != nil {
		t.Fatalf("dbsession: failed to open handler: %v", err)
	}
	if err := h.CreateTable(ctx); err != nil {
		t.Fatalf("dbsession: failed to create session table: %v", err)
	}

	t.Cleanup(func() {
		_ = h.Close(ctx) // explicitly ignored in cleanup
	})

	return &TestHandler{Handler: h, t: t, ctx: ctx}
}

// MustOpen is like Open but fails the test on error.
func (th *TestHandler) MustOpen(savePath, name string) {
	th.t.Helper()
	if err := th.Open(th.ctx, savePath, name); err != nil {
		th.t.Fatalf("dbsession: Open failed: %v", err)
	}
}

// MustRead is like Read but fails the test on error.
func (th *TestHandler) MustRead(id string) []byte {
	th.t.Helper()
	data, err := th.Read(th.ctx, id)
	if err != nil {
		th.t.Fatalf("dbsession: Read(%q) failed: %v", id, err)
	}
	return data
}

// MustWrite is like Write but fails the test on error.
func (th *TestHandler) MustWrite(id string, data []byte) {
	th.t.Helper()
	if err := th.Write(th.ctx, id, data); err != nil {
		th.t.Fatalf("dbsession: Write(%q) failed: %v", id, err)
	}
}

// MustDestroy is like Destroy but fails the test on error.
func (th *TestHandler) MustDestroy(id string) {
	th.t.Helper()
	if err := th.Destroy(th.ctx, id); err != nil {
		th.t.Fatalf("dbsession: Destroy(%q) failed: %v", id, err)
	}
}

// MustGC is like GC but fails the test on error.
func (th *TestHandler) MustGC(maxlifetime int) int {
	th.t.Helper()
	n, err := th.GC(th.ctx, maxlifetime)
	if err != nil {
		th.t.Fatalf("dbsession: GC failed: %v", err)
	}
	return n
}

// MustClose is like Close but fails the test on error.
func (th *TestHandler) MustClose() {
	th.t.Helper()
	if err := th.Close(th.ctx); err != nil {
		th.t.Fatalf("dbsession: Close failed: %v", err)
	}
}
