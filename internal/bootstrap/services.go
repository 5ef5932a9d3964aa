package bootstrap

import (
	"fmt"
	"log"

	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/core"
	"github.com/go-authgate/pairgate/internal/identity"
	"github.com/go-authgate/pairgate/internal/preview"
	"github.com/go-authgate/pairgate/internal/services"
	"github.com/go-authgate/pairgate/internal/store"
	"github.com/go-authgate/pairgate/internal/token"
)

type serviceSet struct {
	device   *services.DeviceService
	session  *services.SessionService
	usage    *services.UsageService
	compiler *preview.Compiler
}

// initializeCredentials builds the two token verification paths. They never
// share a secret or a provider.
func initializeCredentials(
	cfg *config.Config,
	identityCache core.Cache[core.Identity],
	recorder core.Recorder,
) (*token.AppTokenProvider, core.IdentityProvider, error) {
	appTokens, err := token.NewAppTokenProvider(
		cfg.AppTokenSecret,
		cfg.AppTokenIssuer,
		cfg.AppTokenExpiration,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize app tokens: %w", err)
	}

	idp, err := identity.New(cfg, identityCache, recorder)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize identity provider: %w", err)
	}
	log.Printf("Identity provider: %s", cfg.IdentityMode)

	return appTokens, idp, nil
}

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	appTokens *token.AppTokenProvider,
	auditService *services.AuditService,
	recorder core.Recorder,
) serviceSet {
	set := serviceSet{
		device:  services.NewDeviceService(db, cfg, appTokens, auditService, recorder),
		session: services.NewSessionService(db, cfg, auditService, recorder),
		usage:   services.NewUsageService(db),
	}
	if cfg.PreviewEnabled {
		set.compiler = preview.NewCompiler(preview.Options{
			CDNBase:  cfg.PreviewCDNBase,
			MaxFiles: cfg.PreviewMaxFiles,
			MaxBytes: cfg.PreviewMaxBytes,
		}, recorder)
	}
	return set
}
