package providers

import (
	"github.com/samber/do/v2"

	"github.com/mansionapp/mansion-server/internal/config"
	"github.com/mansionapp/mansion-server/internal/logger"
	"github.com/mansionapp/mansion-server/internal/media/uploads"
)

// ProvideUploadStorage provides the on-disk upload storage.
func ProvideUploadStorage(i do.Injector) (*uploads.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := uploads.NewStorage(cfg.Storage.UploadsPath())
	if err != nil {
		return nil, err
	}

	log.Info("Upload storage ready", "path", cfg.Storage.UploadsPath())

	return storage, nil
}

// ProvideUploadPipeline provides the upload validation pipeline.
func ProvideUploadPipeline(i do.Injector) (*uploads.Pipeline, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	storage := do.MustInvoke[*uploads.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return uploads.NewPipeline(storeHandle.Store, storage, log.Logger), nil
}
