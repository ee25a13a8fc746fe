package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansionapp/mansion-server/internal/store"
)

func TestLoginAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cookieValue, err := f.sessions.Login(ctx, "admin", "test-password", "10.0.0.1")
	require.NoError(t, err)
	require.NotEmpty(t, cookieValue)

	session, err := f.sessions.Authenticate(ctx, cookieValue)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", session.IPAddress)
	assert.Contains(t, session.ID, "sess-")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "admin", "wrong"},
		{"wrong username", "root", "test-password"},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sessions.Login(ctx, tt.username, tt.password, "10.0.0.1")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAuthenticateRejectsTamperedCookie(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cookieValue, err := f.sessions.Login(ctx, "admin", "test-password", "")
	require.NoError(t, err)

	_, err = f.sessions.Authenticate(ctx, cookieValue+"x")
	assert.ErrorIs(t, err, store.ErrUnauthorized)

	_, err = f.sessions.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, store.ErrUnauthorized)
}

func TestAuthenticateRejectsUnknownToken(t *testing.T) {
	f := newFixture(t)

	// Correctly signed but never stored: signed with the same key, token
	// that has no session row.
	other := newFixture(t)
	cookieValue, err := other.sessions.Login(context.Background(), "admin", "test-password", "")
	require.NoError(t, err)

	_, err = f.sessions.Authenticate(context.Background(), cookieValue)
	assert.ErrorIs(t, err, store.ErrUnauthorized)
}

func TestAuthenticateExpiredSessionIsDeleted(t *testing.T) {
	// Sessions expire immediately.
	f := newFixtureWithDuration(t, -time.Minute)
	ctx := context.Background()

	cookieValue, err := f.sessions.Login(ctx, "admin", "test-password", "")
	require.NoError(t, err)

	_, err = f.sessions.Authenticate(ctx, cookieValue)
	assert.ErrorIs(t, err, store.ErrUnauthorized)

	// The expired row is gone, a second attempt still fails cleanly.
	_, err = f.sessions.Authenticate(ctx, cookieValue)
	assert.ErrorIs(t, err, store.ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cookieValue, err := f.sessions.Login(ctx, "admin", "test-password", "")
	require.NoError(t, err)

	require.NoError(t, f.sessions.Logout(ctx, cookieValue))

	_, err = f.sessions.Authenticate(ctx, cookieValue)
	assert.ErrorIs(t, err, store.ErrUnauthorized)
}

func TestLogoutInvalidCookieIsNoop(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.sessions.Logout(context.Background(), "nonsense"))
	assert.NoError(t, f.sessions.Logout(context.Background(), ""))
}
