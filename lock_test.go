package dbsession

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TestAdvisoryUnsupportedOnSQLite covers scenario 5: constructing a
// handler with LockAdvisory against sqlite fails the first Read with
// ErrUnsupportedOperation rather than at construction time.
func TestAdvisoryUnsupportedOnSQLite(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	h, err := New("sqlite", db, WithLockMode(LockAdvisory))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := h.Open(ctx, "", "s"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := h.CreateTable(ctx); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	_, err = h.Read(ctx, "any-id")
	if !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("Read() error = %v; want wrapping ErrUnsupportedOperation", err)
	}
}

// TestLastWriterWinsUnderLockNone covers P4: under LOCK_NONE, two
// interleaved writes to the same id leave one of the two payloads — never
// a partial or empty value.
func TestLastWriterWinsUnderLockNone(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	bootstrap, err := New("sqlite", db, WithLockMode(LockNone))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := bootstrap.Open(ctx, "", "s"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := bootstrap.CreateTable(ctx); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if err := bootstrap.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	payloads := [][]byte{[]byte("writer-one"), []byte("writer-two")}
	var wg sync.WaitGroup
	for _, p := range payloads {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := New("sqlite", db, WithLockMode(LockNone))
			if err != nil {
				t.Errorf("New: %v", err)
				return
			}
			if err := h.Open(ctx, "", "s"); err != nil {
				t.Errorf("Open: %v", err)
				return
			}
			if err := h.Write(ctx, "shared-key", p); err != nil {
				t.Errorf("Write: %v", err)
			}
			_ = h.Close(ctx)
		}()
	}
	wg.Wait()

	reader, err := New("sqlite", db, WithLockMode(LockNone))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := reader.Open(ctx, "", "s"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := reader.Read(ctx, "shared-key")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(payloads[0]) && string(got) != string(payloads[1]) {
		t.Fatalf("Read returned %q; want one of %q or %q", got, payloads[0], payloads[1])
	}
	_ = reader.Close(ctx)
}

// TestMutualExclusionUnderLockTransactional covers P3: while one process
// holds the read-to-close window for an id, a concurrent process blocks
// until the first closes, and the second writer's payload is the value
// left stored at the end.
func TestMutualExclusionUnderLockTransactional(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	bootstrap, err := New("sqlite", db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := bootstrap.Open(ctx, "", "s"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := bootstrap.CreateTable(ctx); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if err := bootstrap.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	first, err := New("sqlite", db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Open(ctx, "", "s"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := first.Read(ctx, "k"); err != nil {
		t.Fatalf("first Read: %v", err)
	}

	secondDone := make(chan struct{})
	go func() {
		defer close(secondDone)
		second, err := New("sqlite", db)
		if err != nil {
			t.Errorf("New: %v", err)
			return
		}
		if err := second.Open(ctx, "", "s"); err != nil {
			t.Errorf("Open: %v", err)
			return
		}
		// Blocks on sqlite's reserved write lock until first.Close() runs.
		if _, err := second.Read(ctx, "k"); err != nil {
			t.Errorf("second Read: %v", err)
			return
		}
		if err := second.Write(ctx, "k", []byte("second-writer")); err != nil {
			t.Errorf("second Write: %v", err)
		}
		if err := second.Close(ctx); err != nil {
			t.Errorf("second Close: %v", err)
		}
	}()

	select {
	case <-secondDone:
		t.Fatal("second Read returned before first.Close() released the row lock")
	case <-time.After(200 * time.Millisecond):
	}

	if err := first.Write(ctx, "k", []byte("first-writer")); err != nil {
		t.Fatalf("first Write: %v", err)
	}
	if err := first.Close(ctx); err != nil {
		t.Fatalf("first Close: %v", err)
	}

	<-secondDone

	reader, err := New("sqlite", db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := reader.Open(ctx, "", "s"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := reader.Read(ctx, "k")
	if err != nil {
		t.Fatalf("reader Read: %v", err)
	}
	if string(got) != "second-writer" {
		t.Errorf("final value = %q; want %q (the second writer's payload)", got, "second-writer")
	}
	_ = reader.Close(ctx)
}
