// Package service implements the application's business operations on top
// of the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mansionapp/mansion-server/internal/domain"
	"github.com/mansionapp/mansion-server/internal/store"
	"github.com/mansionapp/mansion-server/internal/store/sqlite"
)

// GalleryService serves the public read paths: the gallery listing, the
// profile detail page, and the JSON API.
type GalleryService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewGalleryService creates a gallery read service.
func NewGalleryService(store *sqlite.Store, logger *slog.Logger) *GalleryService {
	return &GalleryService{store: store, logger: logger}
}

// GalleryView is the data behind the gallery listing page.
type GalleryView struct {
	Profiles        []*domain.ProfileSummary
	Categories      []*domain.Category
	CurrentCategory string
}

// Gallery returns profiles optionally filtered by category slug, plus the
// category list for navigation. An empty slug or "all" means unfiltered;
// an unknown slug yields an empty profile list, not an error.
func (s *GalleryService) Gallery(ctx context.Context, categorySlug string) (*GalleryView, error) {
	if categorySlug == "" {
		categorySlug = domain.SlugAll
	}

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	profiles, err := s.store.ListProfileSummaries(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	return &GalleryView{
		Profiles:        profiles,
		Categories:      categories,
		CurrentCategory: categorySlug,
	}, nil
}

// ListProfiles returns the flattened profile rows for the JSON API,
// optionally filtered by category slug.
func (s *GalleryService) ListProfiles(ctx context.Context, categorySlug string) ([]*domain.ProfileSummary, error) {
	return s.store.ListProfileSummaries(ctx, categorySlug)
}

// ProfileDetail returns a profile with its aggregated category names, its
// media oldest-first, and the circular "next profile" id.
// Returns store.ErrNotFound for unknown ids.
func (s *GalleryService) ProfileDetail(ctx context.Context, id int64) (*domain.ProfileDetail, error) {
	profile, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	categoryNames, err := s.store.GetProfileCategoryNames(ctx, id)
	if err != nil {
		return nil, err
	}

	media, err := s.store.ListProfileMedia(ctx, id)
	if err != nil {
		return nil, err
	}

	nextID, err := s.store.NextProfileID(ctx, id)
	if err != nil {
		// The current profile exists, so at worst "next" wraps to itself.
		if errors.Is(err, store.ErrNotFound) {
			nextID = id
		} else {
			return nil, err
		}
	}

	return &domain.ProfileDetail{
		Profile:       *profile,
		CategoryNames: categoryNames,
		Media:         media,
		NextProfileID: nextID,
	}, nil
}
