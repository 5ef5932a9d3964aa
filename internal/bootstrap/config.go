package bootstrap

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/util"

	"github.com/gin-gonic/gin"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := ensureAppTokenSecret(cfg); err != nil {
		return fmt.Errorf("invalid app token configuration: %w", err)
	}
	setupGinMode(cfg)
	return nil
}

// ensureAppTokenSecret fills in a random secret outside production. Tokens
// signed with it stop verifying after a restart.
func ensureAppTokenSecret(cfg *config.Config) error {
	if cfg.AppTokenSecret != "" {
		return nil
	}
	if cfg.IsProduction {
		return errors.New("APP_TOKEN_SECRET is required in production")
	}

	secret, err := util.CryptoRandomString(48)
	if err != nil {
		return fmt.Errorf("failed to generate ephemeral app token secret: %w", err)
	}
	cfg.AppTokenSecret = secret

	log.Println("WARNING: APP_TOKEN_SECRET is not set")
	log.Println("WARNING: using an ephemeral secret; app tokens will not survive a restart")
	return nil
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	gin.SetMode(ginModeMap[cfg.IsProduction])
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}
