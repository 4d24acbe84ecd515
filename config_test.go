package dbsession

import "testing"

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	c := defaultConfig()

	if c.Columns.Table != "sessions" {
		t.Errorf("default table = %q; want %q", c.Columns.Table, "sessions")
	}
	if c.Columns.ID != "sess_id" || c.Columns.Data != "sess_data" ||
		c.Columns.Expiry != "sess_expiry" || c.Columns.Time != "sess_time" {
		t.Errorf("default columns = %+v; want the sess_* defaults", c.Columns)
	}
	if c.LockMode != LockTransactional {
		t.Errorf("default lock mode = %v; want LockTransactional", c.LockMode)
	}
	if c.MaxLifetime() != 1440 {
		t.Errorf("default MaxLifetime() = %d; want 1440", c.MaxLifetime())
	}
}

func TestOptionsApply(t *testing.T) {
	t.Parallel()
	c := defaultConfig()
	opts := []Option{
		WithTable("custom_sessions"),
		WithLockMode(LockAdvisory),
		WithMaxLifetime(func() int64 { return 60 }),
		WithServerVersion("9.6"),
	}
	for _, opt := range opts {
		opt(&c)
	}

	if c.Columns.Table != "custom_sessions" {
		t.Errorf("table = %q; want %q", c.Columns.Table, "custom_sessions")
	}
	if c.LockMode != LockAdvisory {
		t.Errorf("lock mode = %v; want LockAdvisory", c.LockMode)
	}
	if c.MaxLifetime() != 60 {
		t.Errorf("MaxLifetime() = %d; want 60", c.MaxLifetime())
	}
	if c.ServerVersion != "9.6" {
		t.Errorf("ServerVersion = %q; want %q", c.ServerVersion, "9.6")
	}
}

func TestLockModeString(t *testing.T) {
	t.Parallel()
	tests := map[LockMode]string{
		LockNone:          "none",
		LockAdvisory:      "advisory",
		LockTransactional: "transactional",
		LockMode(99):      "unknown",
	}
	for mode, want := range tests {
		if got := mode.String(); got != want {
			t.Errorf("LockMode(%d).String() = %q; want %q", mode, got, want)
		}
	}
}
