package api

import (
	"net/http"

	"github.com/mansionapp/mansion-server/internal/domain"
	"github.com/mansionapp/mansion-server/internal/http/response"
)

// profileRow is the flattened profile shape returned by the JSON API.
type profileRow struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverImage  string `json:"cover_image"`
	Categories  string `json:"categories"`
	MediaCount  int    `json:"media_count"`
	Featured    bool   `json:"featured"`
	CreatedAt   string `json:"created_at"`
}

func toProfileRow(p *domain.ProfileSummary) profileRow {
	return profileRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CoverImage:  p.CoverImage,
		Categories:  p.CategoryNames,
		MediaCount:  p.MediaCount,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt.Format(createdAtLayout),
	}
}

const createdAtLayout = "2006-01-02 15:04:05"

// handleAPIListProfiles returns all profiles as a JSON array, optionally
// filtered by the category query parameter.
func (s *Server) handleAPIListProfiles(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("category")
	if slug == "" {
		slug = domain.SlugAll
	}

	summaries, err := s.galleryService.ListProfiles(r.Context(), slug)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "api profile list failed", "error", err)
		response.InternalError(w, "Failed to list profiles", s.logger)
		return
	}

	rows := make([]profileRow, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, toProfileRow(summary))
	}

	response.Success(w, rows, s.logger)
}
