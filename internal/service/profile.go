package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mansionapp/mansion-server/internal/domain"
	"github.com/mansionapp/mansion-server/internal/media/uploads"
	"github.com/mansionapp/mansion-server/internal/store/sqlite"
	"github.com/mansionapp/mansion-server/internal/validation"
)

// ProfileService handles admin-side profile creation and editing, including
// category assignment and running uploaded files through the media pipeline.
type ProfileService struct {
	store     *sqlite.Store
	pipeline  *uploads.Pipeline
	validator *validation.Validator
	logger    *slog.Logger
}

// NewProfileService creates a profile admin service.
func NewProfileService(store *sqlite.Store, pipeline *uploads.Pipeline, validator *validation.Validator, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:     store,
		pipeline:  pipeline,
		validator: validator,
		logger:    logger,
	}
}

// SaveProfileInput carries a profile create or update submission.
// ID zero means create.
type SaveProfileInput struct {
	ID          int64
	Name        string `form:"name" validate:"required,min=1,max=200"`
	Description string `form:"description" validate:"max=5000"`
	Featured    bool
	CategoryIDs []int64
	Files       []uploads.File
}

// Save creates or updates a profile, replaces its category assignments,
// and processes any uploaded files. Profile and category changes are
// committed even when some or all uploads are rejected; per-file failures
// surface only in the returned upload result.
func (s *ProfileService) Save(ctx context.Context, input SaveProfileInput) (*domain.Profile, *uploads.Result, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, nil, err
	}

	profile := &domain.Profile{
		ID:          input.ID,
		Name:        input.Name,
		Description: input.Description,
		Featured:    input.Featured,
	}
	var err error
	if input.ID == 0 {
		err = s.store.CreateProfile(ctx, profile)
	} else {
		err = s.store.UpdateProfile(ctx, profile)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.SetProfileCategories(ctx, profile.ID, input.CategoryIDs); err != nil {
		return nil, nil, fmt.Errorf("set profile categories: %w", err)
	}

	result, err := s.pipeline.Process(ctx, profile.ID, input.Files)
	if err != nil {
		// The profile itself is saved at this point. Report the upload
		// trouble but do not fail the whole submission.
		s.logger.ErrorContext(ctx, "upload processing failed",
			"profile_id", profile.ID,
			"error", err)
	}

	return profile, result, nil
}

// DashboardView is the data behind the admin dashboard.
type DashboardView struct {
	Profiles   []*domain.ProfileSummary
	Categories []*domain.Category
}

// Dashboard returns all profiles newest-first with the selectable
// categories for the admin landing page.
func (s *ProfileService) Dashboard(ctx context.Context) (*DashboardView, error) {
	profiles, err := s.store.ListProfileSummaries(ctx, domain.SlugAll)
	if err != nil {
		return nil, err
	}

	categories, err := s.store.ListSelectableCategories(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardView{Profiles: profiles, Categories: categories}, nil
}

// EditView is the data behind the admin profile form.
type EditView struct {
	Profile             *domain.Profile
	Categories          []*domain.Category
	SelectedCategoryIDs map[int64]bool
	Media               []*domain.Media
}

// NewProfileView returns the form data for creating a profile.
func (s *ProfileService) NewProfileView(ctx context.Context) (*EditView, error) {
	categories, err := s.store.ListSelectableCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &EditView{
		Categories:          categories,
		SelectedCategoryIDs: map[int64]bool{},
	}, nil
}

// EditProfileView returns the form data for editing an existing profile.
// Returns store.ErrNotFound for unknown ids.
func (s *ProfileService) EditProfileView(ctx context.Context, id int64) (*EditView, error) {
	profile, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}

	categories, err := s.store.ListSelectableCategories(ctx)
	if err != nil {
		return nil, err
	}

	categoryIDs, err := s.store.GetProfileCategoryIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	selected := make(map[int64]bool, len(categoryIDs))
	for _, cid := range categoryIDs {
		selected[cid] = true
	}

	media, err := s.store.ListProfileMedia(ctx, id)
	if err != nil {
		return nil, err
	}

	return &EditView{
		Profile:             profile,
		Categories:          categories,
		SelectedCategoryIDs: selected,
		Media:               media,
	}, nil
}
