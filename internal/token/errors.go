package token

import "errors"

var (
	// ErrTokenGeneration indicates token generation failed
	ErrTokenGeneration = errors.New("failed to generate token")

	// ErrInvalidToken indicates the token is invalid
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("token expired")

	// ErrWrongTokenUse indicates a validly signed token that is not an app token
	ErrWrongTokenUse = errors.New("token is not an application token")

	// ErrMissingSecret indicates the provider was built without a signing key
	ErrMissingSecret = errors.New("app token secret is empty")
)
