package providers

import (
	"github.com/samber/do/v2"

	"github.com/mansionapp/mansion-server/internal/auth"
	"github.com/mansionapp/mansion-server/internal/config"
	"github.com/mansionapp/mansion-server/internal/logger"
	"github.com/mansionapp/mansion-server/internal/media/uploads"
	"github.com/mansionapp/mansion-server/internal/service"
	"github.com/mansionapp/mansion-server/internal/validation"
)

// ProvideCredentials provides the admin credential pair, hashing the
// configured password at startup.
func ProvideCredentials(i do.Injector) (*auth.Credentials, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return auth.NewCredentials(cfg.Admin.Username, cfg.Admin.Password)
}

// ProvideSigner provides the session cookie signer.
func ProvideSigner(i do.Injector) (*auth.Signer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return auth.NewSigner(cfg.Admin.SecretKey), nil
}

// ProvideValidator provides the form input validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideGalleryService provides the public read service.
func ProvideGalleryService(i do.Injector) (*service.GalleryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewGalleryService(storeHandle.Store, log.Logger), nil
}

// ProvideProfileService provides the admin profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	pipeline := do.MustInvoke[*uploads.Pipeline](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, pipeline, validator, log.Logger), nil
}

// ProvideSessionService provides the admin session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	credentials := do.MustInvoke[*auth.Credentials](i)
	signer := do.MustInvoke[*auth.Signer](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, credentials, signer, cfg.Admin.SessionDuration, log.Logger), nil
}
