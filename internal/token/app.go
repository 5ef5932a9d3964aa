package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// TokenTypeBearer is the token_type reported alongside app tokens
	TokenTypeBearer = "Bearer"

	// UseApp marks a JWT as an application token
	UseApp = "app"
)

// AppClaims are the claims carried by an application token.
type AppClaims struct {
	Use string `json:"use"`
	jwt.RegisteredClaims
}

// Result is a freshly minted app token.
type Result struct {
	Token     string
	TokenType string
	ExpiresAt time.Time
	ExpiresIn int
	ID        string
}

// AppTokenProvider mints and verifies HS256 application tokens. It never
// accepts tokens from the identity provider: the secret is distinct and
// the use claim must be "app".
type AppTokenProvider struct {
	secret []byte
	issuer string
	ttl    time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

// NewAppTokenProvider creates a provider. An empty issuer disables the
// issuer check.
func NewAppTokenProvider(secret, issuer string, ttl time.Duration) (*AppTokenProvider, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &AppTokenProvider{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		parser: jwt.NewParser(opts...),
		now:    time.Now,
	}, nil
}

// Issue mints a token for subject.
func (p *AppTokenProvider) Issue(subject string) (*Result, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrTokenGeneration)
	}

	now := p.now()
	expiresAt := now.Add(p.ttl)
	jti := uuid.New().String()

	claims := &AppClaims{
		Use: UseApp,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &Result{
		Token:     signed,
		TokenType: TokenTypeBearer,
		ExpiresAt: expiresAt,
		ExpiresIn: int(p.ttl.Seconds()),
		ID:        jti,
	}, nil
}

// Verify checks signature, algorithm, expiry and the use claim, and returns
// the claims of a valid app token.
func (p *AppTokenProvider) Verify(tokenString string) (*AppClaims, error) {
	claims := &AppClaims{}
	token, err := p.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Use != UseApp {
		return nil, ErrWrongTokenUse
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}

// Name returns provider name for logging
func (p *AppTokenProvider) Name() string {
	return "local"
}
