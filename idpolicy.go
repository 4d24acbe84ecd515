package dbsession

import "fmt"

// maxSessionIDBytes bounds the session id column (VARBINARY(128)/BYTEA/RAW(128))
// across every registered dialect; see dialect.CreateTableSQL.
const maxSessionIDBytes = 128

// IDPolicy validates a session id before it reaches any dialect SQL. Every
// policy rejects an empty id; the default policy otherwise only enforces
// the binary-safe length bound from the data model; a caller with a known id generator (hex, base62, uuid) can install
// a tighter one with WithIDPolicy to reject malformed ids before they ever
// reach a query.
type IDPolicy struct {
	// MaxBytes overrides maxSessionIDBytes. Zero means "use the default".
	MaxBytes int

	// Validate, when non-nil, runs after the length check. Returning a
	// non-nil error rejects the id.
	Validate func(id string) error
}

func (p IDPolicy) check(id string) error {
	limit := p.MaxBytes
	if limit == 0 {
		limit = maxSessionIDBytes
	}
	if id == "" {
		return fmt.Errorf("%w: session id is empty", ErrConfigurationError)
	}
	if len(id) > limit {
		return fmt.Errorf("%w: session id exceeds %d bytes (got %d)", ErrConfigurationError, limit, len(id))
	}
	if p.Validate != nil {
		if err := p.Validate(id); err != nil {
			return fmt.Errorf("%w: %s", ErrConfigurationError, err)
		}
	}
	return nil
}

func defaultIDPolicy() IDPolicy {
	return IDPolicy{MaxBytes: maxSessionIDBytes}
}

// ValidateSessionID enforces the default ≤128-byte, binary-safe session id
// constraint outside of a Handler — e.g. in a host's own request validation
// before it ever reaches Read/Write. It applies the same check a Handler
// runs internally with the default IDPolicy; a Handler constructed with
// WithIDPolicy enforces its own tightened policy instead.
func ValidateSessionID(id string) error {
	return defaultIDPolicy().check(id)
}
