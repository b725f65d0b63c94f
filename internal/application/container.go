package application

import (
	"github.com/multidom/domainsync/config"
	"github.com/multidom/domainsync/internal/application/services"
	"github.com/multidom/domainsync/internal/infrastructure/crypto"
	"github.com/multidom/domainsync/internal/infrastructure/persistence"
	"github.com/multidom/domainsync/pkg/errors"
	"github.com/multidom/domainsync/pkg/token"
)

// Services holds all application services.
type Services struct {
	Sync *services.SyncService
}

// Dependencies holds shared dependencies for services. The signing key is
// resolved exactly once here, at process start.
type Dependencies struct {
	Secrets *crypto.SecretProvider
	IDGen   *crypto.IDGenerator
	Codec   *token.Codec
}

// NewDependencies creates shared dependencies from config.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	secrets := crypto.NewSecretProvider(
		cfg.SSO.SecretOverride,
		cfg.SSO.SecretFile,
		cfg.SSO.SessionCookie,
	)

	key, err := secrets.Resolve()
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve signing secret")
	}

	return &Dependencies{
		Secrets: secrets,
		IDGen:   crypto.NewIDGenerator(),
		Codec:   token.NewCodec(key),
	}, nil
}

// NewServices creates all application services.
func NewServices(repos *persistence.Repositories, deps *Dependencies, cfg *config.Config) *Services {
	return &Services{
		Sync: services.NewSyncService(
			repos.Run,
			repos.Consumed,
			repos.Directory,
			deps.Codec,
			deps.IDGen,
			cfg,
		),
	}
}
