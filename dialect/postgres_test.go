package dialect

import (
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgresIsDuplicateKey(t *testing.T) {
	t.Parallel()

	d, err := Get("postgres")
	if err != nil {
		t.Fatal(err)
	}

	if !d.IsDuplicateKey(&pgconn.PgError{Code: "23505"}) {
		t.Error("expected SQLSTATE 23505 to be classified as a duplicate key")
	}
	if d.IsDuplicateKey(&pgconn.PgError{Code: "42P01"}) {
		t.Error("expected SQLSTATE 42P01 (undefined table) to not be classified as a duplicate key")
	}
}

func TestSupportsOnConflict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		version string
		want    bool
	}{
		{"", true},
		{"9.4", false},
		{"9.4.10", false},
		{"9.5", true},
		{"9.6", true},
		{"10", true},
		{"14.2", true},
		{"garbage", true},
	}

	for _, tt := range tests {
		if got := supportsOnConflict(tt.version); got != tt.want {
			t.Errorf("supportsOnConflict(%q) = %v; want %v", tt.version, got, tt.want)
		}
	}
}

func TestAdvisoryKeysWidth(t *testing.T) {
	t.Parallel()

	keys := advisoryKeys("some-session-id")
	if strconvIntSize64() {
		if len(keys) != 1 {
			t.Fatalf("advisoryKeys on a 64-bit host returned %d keys; want 1", len(keys))
		}
		if keys[0] < 0 {
			t.Errorf("advisoryKeys()[0] = %d; want a non-negative 60-bit value", keys[0])
		}
	} else {
		if len(keys) != 2 {
			t.Fatalf("advisoryKeys on a 32-bit host returned %d keys; want 2", len(keys))
		}
	}
}

func strconvIntSize64() bool {
	return ^uint(0)>>63 != 0
}
