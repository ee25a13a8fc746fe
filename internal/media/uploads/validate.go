// Package uploads implements the media upload validation and storage
// pipeline: extension filtering, content validation, type-partitioned
// storage, thumbnailing, and cover assignment.
package uploads

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"path/filepath"
	"strings"

	"github.com/mansionapp/mansion-server/internal/domain"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Extension allow-lists. Anything else is silently skipped.
var (
	imageExtensions = map[string]bool{
		"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true,
	}
	videoExtensions = map[string]bool{
		"mp4": true, "webm": true, "mov": true,
	}
)

// videoSignatures are the known container signatures matched against the
// first bytes of a video upload: two MP4 ftyp variants and the
// Matroska/WebM EBML header.
var videoSignatures = [][]byte{
	{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4'},
	{0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p', 'm', 'p', '4'},
	{0x1A, 0x45, 0xDF, 0xA3},
}

// signatureLength is how many leading bytes are read for signature
// matching.
const signatureLength = 12

// Ext returns the lowercased extension of a filename without the dot, or
// "" when the filename has none.
func Ext(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if ext == "" {
		return ""
	}
	return strings.ToLower(ext[1:])
}

// Classify maps an extension to a media type. The second return is false
// for extensions outside the allow-list.
func Classify(ext string) (domain.MediaType, bool) {
	switch {
	case imageExtensions[ext]:
		return domain.MediaImage, true
	case videoExtensions[ext]:
		return domain.MediaVideo, true
	default:
		return "", false
	}
}

// ValidateImage fully decodes the stream as an image. A complete decode is
// the structural integrity check; truncated or mislabeled files fail it.
func ValidateImage(r io.Reader) error {
	if _, _, err := image.Decode(r); err != nil {
		return fmt.Errorf("decode image: %w", err)
	}
	return nil
}

// ValidateVideo reads the leading bytes of the stream and matches them
// against the known container signatures.
func ValidateVideo(r io.Reader) error {
	header := make([]byte, signatureLength)
	n, err := io.ReadFull(r, header)
	if err != nil && n == 0 {
		return fmt.Errorf("read video header: %w", err)
	}
	header = header[:n]

	for _, sig := range videoSignatures {
		if bytes.HasPrefix(header, sig) {
			return nil
		}
	}
	return fmt.Errorf("unrecognized video signature")
}
