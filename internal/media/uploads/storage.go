package uploads

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/mansionapp/mansion-server/internal/domain"
)

// Subdirectory names under the uploads root, partitioned by media type.
const (
	ImagesSubdir = "images"
	VideosSubdir = "videos"
)

// unsafeFilenameRe matches everything that is stripped from client
// filenames before they reach the filesystem.
var unsafeFilenameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Storage writes accepted uploads into a type-partitioned directory tree:
// {basePath}/images and {basePath}/videos.
type Storage struct {
	basePath string
}

// NewStorage creates a Storage rooted at basePath, creating both media
// subdirectories if absent.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	for _, subdir := range []string{ImagesSubdir, VideosSubdir} {
		if err := os.MkdirAll(filepath.Join(basePath, subdir), 0o755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", subdir, err)
		}
	}

	return &Storage{basePath: basePath}, nil
}

// BasePath returns the uploads root.
func (s *Storage) BasePath() string {
	return s.basePath
}

// SavedFile describes where an accepted upload landed.
type SavedFile struct {
	Filename string // randomized unique filename
	AbsPath  string // absolute filesystem path
	RelPath  string // slash-separated path under the data dir, e.g. "uploads/images/x.jpg"
}

// Save writes the stream unmodified into the subdirectory for its media
// type, under a randomized unique name derived from the original
// filename. Collisions are negligible: names are prefixed with a v4 UUID.
func (s *Storage) Save(mediaType domain.MediaType, originalName string, r io.Reader) (*SavedFile, error) {
	subdir := SubdirFor(mediaType)
	filename := uuid.New().String() + "_" + SanitizeFilename(originalName)
	absPath := filepath.Join(s.basePath, subdir, filename)

	dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(absPath)
		return nil, fmt.Errorf("write upload file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(absPath)
		return nil, fmt.Errorf("close upload file: %w", err)
	}

	return &SavedFile{
		Filename: filename,
		AbsPath:  absPath,
		RelPath:  path.Join("uploads", subdir, filename),
	}, nil
}

// SubdirFor returns the storage subdirectory for a media type.
func SubdirFor(mediaType domain.MediaType) string {
	if mediaType == domain.MediaVideo {
		return VideosSubdir
	}
	return ImagesSubdir
}

// SanitizeFilename strips directory components and anything outside
// [A-Za-z0-9._-] from a client-supplied filename.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeFilenameRe.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "file"
	}
	return base
}
