package core

import "context"

// Identity is a user verified by the external identity provider.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// IdentityProvider verifies a bearer token issued by the external
// identity provider and resolves it to a user id.
type IdentityProvider interface {
	Verify(ctx context.Context, bearer string) (*Identity, error)
	Name() string
}
