package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned when an encrypted value is read by an
// adapter constructed without SIGNUP_SECRET_KEY.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set SIGNUP_SECRET_KEY")

// CredentialStore defines the driven port for durable credential persistence.
// Values are scoped by origin (service base URL) and key. The adapter owns any
// at-rest encryption; this interface operates on plaintext values.
type CredentialStore interface {
	// Set stores or replaces the value for origin/key.
	Set(ctx context.Context, origin, key, plaintext string) error

	// Get returns the value for origin/key, or ("", nil) if none is stored.
	Get(ctx context.Context, origin, key string) (string, error)

	// Delete removes the value for origin/key. Deleting a missing value is not an error.
	Delete(ctx context.Context, origin, key string) error
}
