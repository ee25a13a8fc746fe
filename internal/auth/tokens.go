package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const tokenBytes = 32

// ErrInvalidToken is returned for cookies that fail structural or
// signature checks.
var ErrInvalidToken = errors.New("invalid session token")

// GenerateToken creates a cryptographically random opaque session token.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the hex-encoded SHA-256 of a token. Only the hash is
// persisted; a leaked sessions table cannot be replayed.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Signer HMAC-signs session tokens for transport in cookies. Tampered
// cookies are rejected before any store lookup happens.
type Signer struct {
	secret []byte
}

// NewSigner creates a cookie signer from the configured secret key.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the cookie value for a token: "token.signature".
func (s *Signer) Sign(token string) string {
	return token + "." + s.signature(token)
}

// Verify checks a cookie value and returns the embedded token.
func (s *Signer) Verify(cookieValue string) (string, error) {
	token, sig, ok := strings.Cut(cookieValue, ".")
	if !ok || token == "" {
		return "", ErrInvalidToken
	}

	if !hmac.Equal([]byte(sig), []byte(s.signature(token))) {
		return "", ErrInvalidToken
	}
	return token, nil
}

func (s *Signer) signature(token string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
