package auth

import (
	"crypto/subtle"
	"fmt"
)

// Credentials holds the single admin credential pair. The plaintext
// password from configuration is hashed once at construction and dropped;
// only the hash is kept in memory.
type Credentials struct {
	username     string
	passwordHash string
}

// NewCredentials builds the admin credentials, hashing the configured
// password with Argon2id.
func NewCredentials(username, password string) (*Credentials, error) {
	if username == "" {
		return nil, fmt.Errorf("admin username cannot be empty")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	return &Credentials{
		username:     username,
		passwordHash: hash,
	}, nil
}

// Verify checks a submitted username/password pair. The username is
// compared in constant time alongside the password verification so a
// username mismatch costs the same as a password mismatch.
func (c *Credentials) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(c.username), []byte(username)) == 1

	passOK, err := VerifyPassword(c.passwordHash, password)
	if err != nil {
		return false
	}

	return userOK && passOK
}
