package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/mansionapp/mansion-server/internal/media/uploads"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames lists the renderable pages; each is parsed together with the
// shared layout.
var pageNames = []string{
	"index",
	"profile",
	"admin_login",
	"admin_dashboard",
	"admin_profile_form",
	"error404",
	"error500",
}

var templateFuncs = template.FuncMap{
	// mediaURL turns a stored relative path into a servable URL.
	"mediaURL": func(relPath string) string {
		return "/" + relPath
	},
	// thumbURL returns the URL of the thumbnail derived from an image path.
	"thumbURL": func(relPath string) string {
		return "/" + uploads.ThumbnailPath(relPath)
	},
}

// Templates holds the parsed page templates.
type Templates struct {
	pages map[string]*template.Template
}

// NewTemplates parses the embedded templates.
func NewTemplates() (*Templates, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Templates{pages: pages}, nil
}

// Render executes a page template into the response. The page is rendered
// to a buffer first so a template failure never produces a half-written
// response body.
func (t *Templates) Render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("unknown template %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("render template %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// render is the handler-side wrapper around Templates.Render. Render
// failures fall back to a plain 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := s.templates.Render(w, status, page, data); err != nil {
		s.logger.ErrorContext(r.Context(), "template render failed",
			"page", page,
			"path", r.URL.Path,
			"error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
