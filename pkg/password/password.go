// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyPassword = errors.New("password: empty password")
	ErrTooLong       = errors.New("password: exceeds 72 bytes")
	ErrMismatch      = errors.New("password: hash does not match")
)

// DefaultCost balances verification latency against brute-force cost.
const DefaultCost = 12

// Hash derives a bcrypt hash at DefaultCost.
func Hash(plain string) (string, error) {
	return HashWithCost(plain, DefaultCost)
}

// HashWithCost derives a bcrypt hash at the given cost. Costs outside the
// bcrypt range fall back to DefaultCost.
func HashWithCost(plain string, cost int) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	// bcrypt silently truncates beyond 72 bytes; reject instead.
	if len(plain) > 72 {
		return "", ErrTooLong
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

// Verify compares a plaintext password against a stored hash. Returns
// ErrMismatch when they differ.
func Verify(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrMismatch
	}
	return fmt.Errorf("password: verify: %w", err)
}

// NeedsRehash reports whether the hash was created at a lower cost than
// want, signalling it should be regenerated on next successful login.
func NeedsRehash(hash string, want int) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < want
}
