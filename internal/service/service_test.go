package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mansionapp/mansion-server/internal/auth"
	"github.com/mansionapp/mansion-server/internal/media/uploads"
	"github.com/mansionapp/mansion-server/internal/store/sqlite"
	"github.com/mansionapp/mansion-server/internal/validation"
)

// fixture wires real components against a throwaway database.
type fixture struct {
	store    *sqlite.Store
	gallery  *GalleryService
	profiles *ProfileService
	sessions *SessionService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithDuration(t, time.Hour)
}

func newFixtureWithDuration(t *testing.T, sessionDuration time.Duration) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	store, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	storage, err := uploads.NewStorage(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	pipeline := uploads.NewPipeline(store, storage, logger)

	credentials, err := auth.NewCredentials("admin", "test-password")
	require.NoError(t, err)
	signer := auth.NewSigner("test-secret-key")

	return &fixture{
		store:    store,
		gallery:  NewGalleryService(store, logger),
		profiles: NewProfileService(store, pipeline, validation.New(), logger),
		sessions: NewSessionService(store, credentials, signer, sessionDuration, logger),
	}
}

func (f *fixture) categoryID(t *testing.T, slug string) int64 {
	t.Helper()
	c, err := f.store.GetCategoryBySlug(context.Background(), slug)
	require.NoError(t, err)
	return c.ID
}
