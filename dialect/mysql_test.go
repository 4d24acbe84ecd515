package dialect

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

func TestMySQLIsDuplicateKey(t *testing.T) {
	t.Parallel()

	d, err := Get("mysql")
	if err != nil {
		t.Fatal(err)
	}

	if !d.IsDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}) {
		t.Error("expected error 1062 to be classified as a duplicate key")
	}
	if d.IsDuplicateKey(&mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}) {
		t.Error("expected error 1146 to not be classified as a duplicate key")
	}
	if d.IsDuplicateKey(nil) {
		t.Error("expected nil error to not be classified as a duplicate key")
	}
}

func TestMySQLAdvisoryAcquireGrantedImmediately(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT GET_LOCK\(\?, 50\)`).
		WithArgs(lockName("abc")).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK(?, 50)"}).AddRow(1))

	d, err := Get("mysql")
	if err != nil {
		t.Fatal(err)
	}

	pr, err := d.Advisory.Acquire(context.Background(), db, "abc")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if pr.SQL != "SELECT RELEASE_LOCK(?)" {
		t.Errorf("PendingRelease.SQL = %q; want RELEASE_LOCK statement", pr.SQL)
	}
	if len(pr.Args) != 1 || pr.Args[0] != lockName("abc") {
		t.Errorf("PendingRelease.Args = %v; want [%q]", pr.Args, lockName("abc"))
	}
	if pr.Cleanup == nil {
		t.Error("PendingRelease.Cleanup should not be nil (dedicated connection must be returned to the pool)")
	}
	_ = pr.Cleanup()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestMySQLAdvisoryAcquireTimeout(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT GET_LOCK\(\?, 50\)`).
		WithArgs(lockName("abc")).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK(?, 50)"}).AddRow(0))

	d, err := Get("mysql")
	if err != nil {
		t.Fatal(err)
	}

	_, err = d.Advisory.Acquire(context.Background(), db, "abc")
	if err != ErrLockTimeout {
		t.Fatalf("Acquire() error = %v; want ErrLockTimeout", err)
	}
}
