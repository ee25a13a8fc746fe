package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/mansionapp/mansion-server/internal/api"
	"github.com/mansionapp/mansion-server/internal/config"
	"github.com/mansionapp/mansion-server/internal/logger"
	"github.com/mansionapp/mansion-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	galleryService := do.MustInvoke[*service.GalleryService](i)
	profileService := do.MustInvoke[*service.ProfileService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	handler, err := api.NewServer(storeHandle.Store, galleryService, profileService, sessionService, api.Config{
		UploadsPath:     cfg.Storage.UploadsPath(),
		MaxUploadSize:   cfg.Upload.MaxUploadSize,
		SecureCookies:   cfg.App.IsProduction(),
		SessionDuration: cfg.Admin.SessionDuration,
	}, log.Logger)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
