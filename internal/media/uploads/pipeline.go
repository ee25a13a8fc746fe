package uploads

import (
	"context"
	"io"
	"log/slog"

	"github.com/mansionapp/mansion-server/internal/domain"
)

// MediaStore is the slice of the persistence layer the pipeline needs.
type MediaStore interface {
	CreateMedia(ctx context.Context, m *domain.Media) error
	SetProfileCoverIfEmpty(ctx context.Context, profileID int64, coverPath string) (bool, error)
}

// File is one uploaded file: the client-claimed filename and a seekable
// byte stream. Seekability lets the pipeline validate content and then
// rewind for the disk write.
type File struct {
	Name    string
	Content io.ReadSeeker
}

// Result summarizes one processed batch.
type Result struct {
	Accepted      []*domain.Media
	Skipped       int
	CoverAssigned bool
}

// Pipeline validates and stores uploaded media for a profile.
type Pipeline struct {
	store   MediaStore
	storage *Storage
	logger  *slog.Logger
}

// NewPipeline creates an upload pipeline.
func NewPipeline(store MediaStore, storage *Storage, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		store:   store,
		storage: storage,
		logger:  logger,
	}
}

// Process runs the upload pipeline for a batch of files belonging to one
// profile. Rejections are per-file silent skips: one invalid file never
// aborts the rest of the batch. After the batch, if the profile had no
// cover image and at least one image was accepted, the first accepted
// image becomes the cover.
func (p *Pipeline) Process(ctx context.Context, profileID int64, files []File) (*Result, error) {
	result := &Result{}
	firstImagePath := ""

	for _, f := range files {
		media, ok := p.processOne(ctx, profileID, f)
		if !ok {
			result.Skipped++
			continue
		}
		result.Accepted = append(result.Accepted, media)

		if media.IsImage() && firstImagePath == "" {
			firstImagePath = media.FilePath
		}
	}

	if firstImagePath != "" {
		assigned, err := p.store.SetProfileCoverIfEmpty(ctx, profileID, firstImagePath)
		if err != nil {
			return result, err
		}
		result.CoverAssigned = assigned
		if assigned {
			p.logger.Info("assigned cover image",
				"profile_id", profileID,
				"path", firstImagePath,
			)
		}
	}

	return result, nil
}

// processOne validates, stores, and records a single file. Returns false
// when the file was rejected or storing it failed; failures are logged,
// never surfaced.
func (p *Pipeline) processOne(ctx context.Context, profileID int64, f File) (*domain.Media, bool) {
	ext := Ext(f.Name)
	mediaType, allowed := Classify(ext)
	if !allowed {
		p.logger.Warn("skipping upload: disallowed extension",
			"filename", f.Name,
			"profile_id", profileID,
		)
		return nil, false
	}

	if err := p.validateContent(f, mediaType); err != nil {
		p.logger.Warn("skipping upload: content validation failed",
			"filename", f.Name,
			"media_type", mediaType,
			"error", err,
		)
		return nil, false
	}

	if _, err := f.Content.Seek(0, io.SeekStart); err != nil {
		p.logger.Error("skipping upload: rewind failed", "filename", f.Name, "error", err)
		return nil, false
	}

	saved, err := p.storage.Save(mediaType, f.Name, f.Content)
	if err != nil {
		p.logger.Error("skipping upload: write failed", "filename", f.Name, "error", err)
		return nil, false
	}

	media := &domain.Media{
		ProfileID: profileID,
		Filename:  saved.Filename,
		MediaType: mediaType,
		FilePath:  saved.RelPath,
	}

	// Thumbnail and BlurHash are best-effort: their failure never rolls
	// back an accepted upload.
	if mediaType == domain.MediaImage {
		if err := GenerateThumbnail(saved.AbsPath); err != nil {
			p.logger.Warn("thumbnail generation failed",
				"filename", saved.Filename,
				"error", err,
			)
		}
		if hash, err := ComputeBlurHash(saved.AbsPath); err != nil {
			p.logger.Warn("blurhash computation failed",
				"filename", saved.Filename,
				"error", err,
			)
		} else {
			media.BlurHash = hash
		}
	}

	if err := p.store.CreateMedia(ctx, media); err != nil {
		p.logger.Error("skipping upload: media insert failed",
			"filename", saved.Filename,
			"error", err,
		)
		return nil, false
	}

	return media, true
}

// validateContent rewinds the stream and runs the type-specific check.
func (p *Pipeline) validateContent(f File, mediaType domain.MediaType) error {
	if _, err := f.Content.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if mediaType == domain.MediaImage {
		return ValidateImage(f.Content)
	}
	return ValidateVideo(f.Content)
}
