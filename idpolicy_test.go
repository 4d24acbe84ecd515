package dbsession

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaultIDPolicy(t *testing.T) {
	t.Parallel()
	p := defaultIDPolicy()

	if err := p.check("a-reasonable-id"); err != nil {
		t.Errorf("check() on a short id returned %v; want nil", err)
	}
	if err := p.check(""); !errors.Is(err, ErrConfigurationError) {
		t.Errorf("check(\"\") error = %v; want wrapping ErrConfigurationError", err)
	}
	if err := p.check(strings.Repeat("x", maxSessionIDBytes+1)); !errors.Is(err, ErrConfigurationError) {
		t.Errorf("check() on an oversized id error = %v; want wrapping ErrConfigurationError", err)
	}
	if err := p.check(strings.Repeat("x", maxSessionIDBytes)); err != nil {
		t.Errorf("check() on an id at exactly the limit returned %v; want nil", err)
	}
}

func TestValidateSessionID(t *testing.T) {
	t.Parallel()
	if err := ValidateSessionID("a-reasonable-id"); err != nil {
		t.Errorf("ValidateSessionID on a short id returned %v; want nil", err)
	}
	if err := ValidateSessionID(strings.Repeat("x", maxSessionIDBytes+1)); !errors.Is(err, ErrConfigurationError) {
		t.Errorf("ValidateSessionID on an oversized id error = %v; want wrapping ErrConfigurationError", err)
	}
}

func TestCustomIDPolicy(t *testing.T) {
	t.Parallel()
	p := IDPolicy{
		MaxBytes: 32,
		Validate: func(id string) error {
			for _, r := range id {
				if !strings.ContainsRune("0123456789abcdef", r) {
					return errors.New("id must be lowercase hex")
				}
			}
			return nil
		},
	}

	if err := p.check("deadbeef"); err != nil {
		t.Errorf("check() on a valid hex id returned %v; want nil", err)
	}
	if err := p.check("not-hex!"); !errors.Is(err, ErrConfigurationError) {
		t.Errorf("check() on a non-hex id error = %v; want wrapping ErrConfigurationError", err)
	}
	if err := p.check(strings.Repeat("a", 33)); !errors.Is(err, ErrConfigurationError) {
		t.Errorf("check() should enforce the tightened MaxBytes")
	}
}
