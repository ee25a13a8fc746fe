// Package di provides dependency injection configuration for the gallery
// server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/mansionapp/mansion-server/internal/auth"
	"github.com/mansionapp/mansion-server/internal/config"
	"github.com/mansionapp/mansion-server/internal/di/providers"
	"github.com/mansionapp/mansion-server/internal/logger"
	"github.com/mansionapp/mansion-server/internal/media/uploads"
	"github.com/mansionapp/mansion-server/internal/service"
	"github.com/mansionapp/mansion-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideUploadStorage)
	do.Provide(injector, providers.ProvideUploadPipeline)

	// Auth layer
	do.Provide(injector, providers.ProvideCredentials)
	do.Provide(injector, providers.ProvideSigner)
	do.Provide(injector, providers.ProvideValidator)

	// Business services
	do.Provide(injector, providers.ProvideGalleryService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvideSessionService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Config and store surface startup errors; everything after them can
	// only fail on programmer error.
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*uploads.Storage](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*uploads.Pipeline](injector)
	_ = do.MustInvoke[*auth.Credentials](injector)
	_ = do.MustInvoke[*auth.Signer](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*service.GalleryService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.SessionService](injector)
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
