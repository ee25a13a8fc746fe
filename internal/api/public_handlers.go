package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mansionapp/mansion-server/internal/domain"
	"github.com/mansionapp/mansion-server/internal/http/response"
	"github.com/mansionapp/mansion-server/internal/service"
	"github.com/mansionapp/mansion-server/internal/store"
)

// page carries the fields every rendered page shares.
type page struct {
	Flash    *Flash
	LoggedIn bool
}

func (s *Server) basePage(r *http.Request) page {
	return page{LoggedIn: sessionFromContext(r.Context()) != nil}
}

type galleryPage struct {
	page
	Gallery *service.GalleryView
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderGallery(w, r, domain.SlugAll)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	s.renderGallery(w, r, chi.URLParam(r, "slug"))
}

func (s *Server) renderGallery(w http.ResponseWriter, r *http.Request, slug string) {
	view, err := s.galleryService.Gallery(r.Context(), slug)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "gallery load failed", "slug", slug, "error", err)
		s.render(w, r, http.StatusInternalServerError, "error500", s.basePage(r))
		return
	}

	data := galleryPage{page: s.basePage(r), Gallery: view}
	data.Flash = s.popFlash(w, r)
	s.render(w, r, http.StatusOK, "index", data)
}

type profilePage struct {
	page
	Detail *domain.ProfileDetail
}

// Unknown or malformed profile ids send the visitor back to the gallery
// instead of a dead-end error page.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	detail, err := s.galleryService.ProfileDetail(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		s.handleStoreError(w, r, err)
		return
	}

	data := profilePage{page: s.basePage(r), Detail: detail}
	data.Flash = s.popFlash(w, r)
	s.render(w, r, http.StatusOK, "profile", data)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, "error404", s.basePage(r))
}

// handleStoreError renders the right error page for a failed read.
func (s *Server) handleStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.handleNotFound(w, r)
		return
	}
	s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	s.render(w, r, http.StatusInternalServerError, "error500", s.basePage(r))
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	type healthBody struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}

	body := healthBody{Status: "healthy", Database: "healthy"}
	status := http.StatusOK

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.ErrorContext(r.Context(), "health check database ping failed", "error", err)
		body.Status = "unhealthy"
		body.Database = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, status, body, s.logger)
}
