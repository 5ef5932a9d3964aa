package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-authgate/pairgate/internal/client"
	"github.com/go-authgate/pairgate/internal/config"
	"github.com/go-authgate/pairgate/internal/core"

	retry "github.com/appleboy/go-httpretry"
)

const userInfoPath = "/auth/v1/user"

var _ core.IdentityProvider = (*HTTPAPIProvider)(nil)

// HTTPAPIProvider resolves a bearer token by asking the identity provider
// who it belongs to.
type HTTPAPIProvider struct {
	userURL string
	client  *retry.Client
}

// NewHTTPAPIProvider creates a provider that calls {IDENTITY_API_URL}/auth/v1/user
// with the project api key attached to every request.
func NewHTTPAPIProvider(cfg *config.Config) (*HTTPAPIProvider, error) {
	retryClient, err := client.NewRetryClient(client.Options{
		APIKey:             cfg.IdentityAPIKey,
		Timeout:            cfg.IdentityAPITimeout,
		InsecureSkipVerify: cfg.IdentityAPIInsecureSkipVerify,
		MaxRetries:         cfg.IdentityAPIMaxRetries,
		RetryDelay:         cfg.IdentityAPIRetryDelay,
		MaxRetryDelay:      cfg.IdentityAPIMaxRetryDelay,
	})
	if err != nil {
		return nil, err
	}

	return &HTTPAPIProvider{
		userURL: strings.TrimRight(cfg.IdentityAPIURL, "/") + userInfoPath,
		client:  retryClient,
	}, nil
}

// userResponse is the subset of the provider's user object we rely on
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

type errorResponse struct {
	Message          string `json:"message,omitempty"`
	Msg              string `json:"msg,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func (e errorResponse) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Msg != "":
		return e.Msg
	default:
		return e.ErrorDescription
	}
}

// Verify returns the user behind bearer.
func (p *HTTPAPIProvider) Verify(ctx context.Context, bearer string) (*core.Identity, error) {
	if bearer == "" {
		return nil, ErrInvalidToken
	}

	resp, err := p.client.Get(
		ctx,
		p.userURL,
		retry.WithHeader("Authorization", "Bearer "+bearer),
		retry.WithHeader("Accept", "application/json"),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response", ErrInvalidResponse)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.text() != "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidToken, e.text())
		}
		return nil, ErrInvalidToken
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		// Limit body preview to 200 characters to avoid overwhelming logs
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return nil, fmt.Errorf("%w: HTTP %d - %s", ErrProviderUnavailable, resp.StatusCode, preview)
	}

	var user userResponse
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidResponse)
	}

	return &core.Identity{UserID: user.ID, Email: user.Email}, nil
}

// Name returns provider name for logging
func (p *HTTPAPIProvider) Name() string {
	return config.IdentityModeHTTPAPI
}
