package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mansionapp/mansion-server/internal/media/uploads"
)

// Route-level names for the two servable upload subdirectories.
const (
	ImagesSubdirRoute = uploads.ImagesSubdir
	VideosSubdirRoute = uploads.VideosSubdir
)

// handleServeUpload serves a single file out of one upload subdirectory.
// The filename is taken as a bare name only; anything containing a path
// separator or dot-dot segment is a 404.
func (s *Server) handleServeUpload(subdir string) http.HandlerFunc {
	dir := filepath.Join(s.uploadsPath, subdir)
	return func(w http.ResponseWriter, r *http.Request) {
		filename := chi.URLParam(r, "filename")
		if filename == "" || filename != filepath.Base(filename) ||
			strings.Contains(filename, "..") || strings.HasPrefix(filename, ".") {
			s.handleNotFound(w, r)
			return
		}

		path := filepath.Join(dir, filename)
		http.ServeFile(w, r, path)
	}
}
