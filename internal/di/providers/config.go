// Package providers contains dependency injection providers for the
// gallery server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/mansionapp/mansion-server/internal/config"
	"github.com/mansionapp/mansion-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.Load()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Mansion server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
	)

	if cfg.Admin.UsingDevFallbacks {
		log.Warn("Using insecure development admin credentials; set SECRET_KEY, ADMIN_USERNAME, and ADMIN_PASSWORD")
	}

	return log, nil
}
