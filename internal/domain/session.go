package domain

import "time"

// Session is a server-side admin session. The browser holds only an opaque
// signed token; the store keeps a SHA-256 hash of it.
type Session struct {
	ID         string
	TokenHash  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	LastSeenAt time.Time
	IPAddress  string
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
