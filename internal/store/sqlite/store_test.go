package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore creates a store backed by a throwaway database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestOpenSeedsDefaultCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	categories, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, len(defaultCategories))

	bySlug := make(map[string]string)
	for _, c := range categories {
		bySlug[c.Slug] = c.Name
	}
	assert.Equal(t, "All", bySlug["all"])
	assert.Equal(t, "Latina", bySlug["latina"])
	assert.Equal(t, "Lingerie", bySlug["lingerie"])
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s1, err := Open(path, logger)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Reopening must not duplicate seed rows or fail on existing tables.
	s2, err := Open(path, logger)
	require.NoError(t, err)
	defer s2.Close()

	categories, err := s2.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, categories, len(defaultCategories))
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
