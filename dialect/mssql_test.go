package dialect

import (
	"testing"

	"github.com/microsoft/go-mssqldb"
)

func TestMSSQLIsDuplicateKey(t *testing.T) {
	t.Parallel()

	d, err := Get("mssql")
	if err != nil {
		t.Fatal(err)
	}

	if !d.IsDuplicateKey(mssql.Error{Number: 2627}) {
		t.Error("expected error 2627 to be classified as a duplicate key")
	}
	if !d.IsDuplicateKey(mssql.Error{Number: 2601}) {
		t.Error("expected error 2601 to be classified as a duplicate key")
	}
	if d.IsDuplicateKey(mssql.Error{Number: 208}) {
		t.Error("expected error 208 (invalid object name) to not be classified as a duplicate key")
	}
}

func TestSupportsMerge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    bool
	}{
		{"", true},
		{"2005", false},
		{"2008", true},
		{"2019", true},
		{"garbage", true},
	}

	for _, tt := range tests {
		if got := supportsMerge(tt.version); got != tt.want {
			t.Errorf("supportsMerge(%q) = %v; want %v", tt.version, got, tt.want)
		}
	}
}
