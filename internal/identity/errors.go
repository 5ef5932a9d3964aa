package identity

import "errors"

var (
	// ErrInvalidToken means the provider rejected the bearer token.
	ErrInvalidToken = errors.New("identity token rejected")

	// HTTP API errors
	ErrProviderUnavailable = errors.New("failed to reach identity provider")
	ErrInvalidResponse     = errors.New("invalid response from identity provider")
)
