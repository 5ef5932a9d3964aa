package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

var _ core.IdentityProvider = (*JWTProvider)(nil)

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// JWTProvider verifies the identity provider's HS256 session tokens locally.
type JWTProvider struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTProvider creates a provider. An empty audience skips the aud check.
func NewJWTProvider(secret, audience string) (*JWTProvider, error) {
	if secret == "" {
		return nil, errors.New("identity jwt secret is required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &JWTProvider{secret: []byte(secret), parser: jwt.NewParser(opts...)}, nil
}

func (p *JWTProvider) Verify(ctx context.Context, bearer string) (*core.Identity, error) {
	claims := &sessionClaims{}
	token, err := p.parser.ParseWithClaims(bearer, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &core.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// Name returns provider name for logging
func (p *JWTProvider) Name() string {
	return config.IdentityModeJWT
}
