package domain

import "time"

// MediaType classifies an uploaded file.
type MediaType string

// Media type values stored in the media_type column.
const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Media is one stored image or video belonging to a profile. Rows are
// created per accepted upload and never updated or deleted.
type Media struct {
	ID        int64     `json:"id"`
	ProfileID int64     `json:"profile_id"`
	Filename  string    `json:"filename"` // randomized unique name on disk
	MediaType MediaType `json:"media_type"`
	FilePath  string    `json:"file_path"`
	BlurHash  string    `json:"blur_hash,omitempty"` // best-effort, images only
	CreatedAt time.Time `json:"created_at"`
}

// IsImage reports whether the media is an image.
func (m *Media) IsImage() bool {
	return m.MediaType == MediaImage
}
