// Package api provides the HTTP server, handlers, and templates for the
// gallery application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mansionapp/mansion-server/internal/service"
	"github.com/mansionapp/mansion-server/internal/store/sqlite"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *sqlite.Store
	galleryService  *service.GalleryService
	profileService  *service.ProfileService
	sessionService  *service.SessionService
	uploadsPath     string
	maxUploadSize   int64
	secureCookies   bool
	sessionDuration time.Duration
	templates       *Templates
	router          *chi.Mux
	logger          *slog.Logger
}

// Config carries the handler-level settings the Server needs beyond its
// service dependencies.
type Config struct {
	UploadsPath     string
	MaxUploadSize   int64
	SecureCookies   bool
	SessionDuration time.Duration
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(store *sqlite.Store, galleryService *service.GalleryService, profileService *service.ProfileService, sessionService *service.SessionService, cfg Config, logger *slog.Logger) (*Server, error) {
	templates, err := NewTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:           store,
		galleryService:  galleryService,
		profileService:  profileService,
		sessionService:  sessionService,
		uploadsPath:     cfg.UploadsPath,
		maxUploadSize:   cfg.MaxUploadSize,
		secureCookies:   cfg.SecureCookies,
		sessionDuration: cfg.SessionDuration,
		templates:       templates,
		router:          chi.NewRouter(),
		logger:          logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(s.recoverPanic)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.NotFound(s.handleNotFound)

	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// Public gallery pages.
	s.router.Get("/", s.handleIndex)
	s.router.Get("/category/{slug}", s.handleCategory)
	s.router.Get("/profile/{id}", s.handleProfile)

	// JSON API.
	s.router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/profiles", s.handleAPIListProfiles)
	})

	// Uploaded media, scoped to the two known subdirectories.
	s.router.Get("/uploads/images/{filename}", s.handleServeUpload(ImagesSubdirRoute))
	s.router.Get("/uploads/videos/{filename}", s.handleServeUpload(VideosSubdirRoute))

	// Admin panel.
	s.router.Route("/admin", func(r chi.Router) {
		r.Get("/login", s.handleLoginPage)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/", s.handleDashboard)
			r.Get("/logout", s.handleLogout)
			r.Get("/profile/new", s.handleNewProfilePage)
			r.Post("/profile/new", s.handleCreateProfile)
			r.Get("/profile/{id}/edit", s.handleEditProfilePage)
			r.Post("/profile/{id}/edit", s.handleUpdateProfile)
		})
	})
}
