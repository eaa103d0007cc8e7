// Package credentials hashes and verifies user secrets.
//
// Secrets are only ever stored in their one-way encoded form. The Manager is
// built explicitly from a Hasher so callers never depend on process-wide state.
package credentials

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCredentialMismatch is returned when a secret and its confirmation differ.
	ErrCredentialMismatch = errors.New("credential and confirmation do not match")
	// ErrAlreadyHashed is returned when asked to hash a value that is already an encoded hash.
	ErrAlreadyHashed = errors.New("value is already a hashed credential")
	// ErrEmptySecret is returned when asked to hash an empty secret.
	ErrEmptySecret = errors.New("secret must not be empty")
	// ErrInvalidHash is returned by hashers for malformed or unsupported encodings.
	ErrInvalidHash = errors.New("invalid hashed credential")
)

// Scheme names accepted by New.
const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"
)

// Hasher is a one-way, salted password hashing scheme.
type Hasher interface {
	// Hash returns the encoded hash of secret.
	Hash(secret string) (string, error)
	// Verify reports whether secret matches encoded under the scheme's own comparison.
	Verify(secret, encoded string) (bool, error)
	// IsHash reports whether encoded looks like a hash produced by this scheme.
	IsHash(encoded string) bool
}

// Manager is the single entry point for credential hashing, verification and change.
type Manager struct {
	hasher Hasher
}

// NewManager creates a Manager backed by hasher.
func NewManager(hasher Hasher) *Manager {
	return &Manager{hasher: hasher}
}

// New builds a Manager for the named scheme. bcryptCost is ignored for argon2id;
// zero selects the bcrypt default cost.
func New(scheme string, bcryptCost int) (*Manager, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeBcrypt:
		return NewManager(NewBcryptHasher(bcryptCost)), nil
	case SchemeArgon2id:
		return NewManager(NewArgon2idHasher(DefaultArgon2idParams())), nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// Hash returns the encoded form of secret. It never re-hashes an encoded value.
func (m *Manager) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	if m.hasher.IsHash(secret) {
		return "", ErrAlreadyHashed
	}
	encoded, err := m.hasher.Hash(secret)
	if err != nil {
		return "", fmt.Errorf("failed to hash credential: %w", err)
	}
	return encoded, nil
}

// Verify reports whether candidate matches the stored hash.
// A malformed stored hash never verifies.
func (m *Manager) Verify(candidate, stored string) bool {
	if stored == "" {
		return false
	}
	ok, err := m.hasher.Verify(candidate, stored)
	if err != nil {
		return false
	}
	return ok
}

// IsHashed reports whether value is an encoded hash of the configured scheme.
func (m *Manager) IsHashed(value string) bool {
	return m.hasher.IsHash(value)
}

// ChangeCredential hashes newSecret once current and confirmation agree.
// The comparison guards against typos; it does not check any stored credential.
func (m *Manager) ChangeCredential(current, confirmation, newSecret string) (string, error) {
	if current != confirmation {
		return "", ErrCredentialMismatch
	}
	return m.Hash(newSecret)
}
