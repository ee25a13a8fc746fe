package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mansionapp/mansion-server/internal/auth"
	"github.com/mansionapp/mansion-server/internal/domain"
	"github.com/mansionapp/mansion-server/internal/id"
	"github.com/mansionapp/mansion-server/internal/store"
	"github.com/mansionapp/mansion-server/internal/store/sqlite"
)

// ErrInvalidCredentials is returned by Login for a bad username or password.
var ErrInvalidCredentials = store.ErrUnauthorized.WithMessage("Invalid username or password")

// SessionService manages the admin login session lifecycle. Sessions are
// opaque server-side records; the browser holds an HMAC-signed random token
// whose SHA-256 hash is what the store keeps.
type SessionService struct {
	store       *sqlite.Store
	credentials *auth.Credentials
	signer      *auth.Signer
	duration    time.Duration
	logger      *slog.Logger
}

// NewSessionService creates a session service.
func NewSessionService(store *sqlite.Store, credentials *auth.Credentials, signer *auth.Signer, duration time.Duration, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:       store,
		credentials: credentials,
		signer:      signer,
		duration:    duration,
		logger:      logger,
	}
}

// Login verifies the admin credentials and, on success, creates a session
// and returns the signed cookie value to hand to the browser.
func (s *SessionService) Login(ctx context.Context, username, password, ipAddress string) (string, error) {
	if !s.credentials.Verify(username, password) {
		return "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return "", err
	}

	sessionID, err := id.Generate("sess")
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	session := &domain.Session{
		ID:         sessionID,
		TokenHash:  auth.HashToken(token),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.duration),
		LastSeenAt: now,
		IPAddress:  ipAddress,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return "", err
	}

	s.logger.InfoContext(ctx, "admin logged in", "session_id", session.ID, "ip", ipAddress)

	// Best effort cleanup of stale rows; failure does not affect login.
	if _, err := s.store.DeleteExpiredSessions(ctx, now); err != nil {
		s.logger.WarnContext(ctx, "expired session cleanup failed", "error", err)
	}

	return s.signer.Sign(token), nil
}

// Authenticate validates a session cookie value. It checks the HMAC
// signature, looks up the session by token hash, and rejects expired
// sessions (deleting them as it goes). A valid session gets its last seen
// time refreshed.
func (s *SessionService) Authenticate(ctx context.Context, cookieValue string) (*domain.Session, error) {
	token, err := s.signer.Verify(cookieValue)
	if err != nil {
		return nil, store.ErrUnauthorized.WithCause(err)
	}

	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrUnauthorized
		}
		return nil, err
	}

	now := time.Now().UTC()
	if session.IsExpired(now) {
		if err := s.store.DeleteSession(ctx, session.ID); err != nil {
			s.logger.WarnContext(ctx, "expired session delete failed", "session_id", session.ID, "error", err)
		}
		return nil, store.ErrUnauthorized
	}

	if err := s.store.TouchSession(ctx, session.ID, now); err != nil {
		s.logger.WarnContext(ctx, "session touch failed", "session_id", session.ID, "error", err)
	}

	return session, nil
}

// Logout deletes the session behind a cookie value. Invalid or unknown
// cookies are a no-op.
func (s *SessionService) Logout(ctx context.Context, cookieValue string) error {
	token, err := s.signer.Verify(cookieValue)
	if err != nil {
		return nil
	}

	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}

	return s.store.DeleteSession(ctx, session.ID)
}
