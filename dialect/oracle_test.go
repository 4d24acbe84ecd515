package dialect

import (
	"errors"
	"testing"
)

func TestOracleIsDuplicateKey(t *testing.T) {
	t.Parallel()

	d, err := Get("oracle")
	if err != nil {
		t.Fatal(err)
	}

	if !d.IsDuplicateKey(errors.New("ORA-00001: unique constraint violated")) {
		t.Error("expected an ORA-00001 message to be classified as a duplicate key")
	}
	if d.IsDuplicateKey(errors.New("ORA-00942: table or view does not exist")) {
		t.Error("expected an ORA-00942 message to not be classified as a duplicate key")
	}
}

func TestOracleUsesColonPlaceholders(t *testing.T) {
	t.Parallel()

	d, err := Get("oracle")
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Placeholder(1); got != ":1" {
		t.Errorf("oracle Placeholder(1) = %q; want \":1\"", got)
	}
}
