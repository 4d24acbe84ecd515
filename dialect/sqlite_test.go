package dialect

import (
	"errors"
	"testing"

	"github.com/mattn/go-sqlite3"
)

func TestSQLiteIsDuplicateKey(t *testing.T) {
	t.Parallel()

	d, err := Get("sqlite")
	if err != nil {
		t.Fatal(err)
	}

	constraintErr := sqlite3.Error{Code: sqlite3.ErrConstraint}
	if !d.IsDuplicateKey(constraintErr) {
		t.Error("expected sqlite3.ErrConstraint to be classified as a duplicate key")
	}

	busyErr := sqlite3.Error{Code: sqlite3.ErrBusy}
	if d.IsDuplicateKey(busyErr) {
		t.Error("expected sqlite3.ErrBusy to not be classified as a duplicate key")
	}

	if d.IsDuplicateKey(errors.New("unrelated")) {
		t.Error("expected a non-sqlite3 error to not be classified as a duplicate key")
	}
}

func TestSQLiteBeginTxQuirkIssuesBeginImmediate(t *testing.T) {
	t.Parallel()

	d, err := Get("sqlite")
	if err != nil {
		t.Fatal(err)
	}
	if d.BeginTxQuirk == nil {
		t.Fatal("sqlite dialect must set BeginTxQuirk to issue BEGIN IMMEDIATE")
	}
	if d.CommitSQL != "COMMIT" || d.RollbackSQL != "ROLLBACK" {
		t.Errorf("sqlite CommitSQL/RollbackSQL = %q/%q; want COMMIT/ROLLBACK", d.CommitSQL, d.RollbackSQL)
	}
}
