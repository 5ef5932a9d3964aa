package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-authgate/pairgate/internal/core"
	"github.com/go-authgate/pairgate/internal/identity"
	"github.com/go-authgate/pairgate/internal/token"
	"github.com/go-authgate/pairgate/internal/util"

	"github.com/gin-gonic/gin"
)

// AppTokenVerifier is satisfied by *token.AppTokenProvider.
type AppTokenVerifier interface {
	Verify(tokenString string) (*token.AppClaims, error)
}

// App token validation results reported to metrics
const (
	validationValid   = "valid"
	validationInvalid = "invalid"
	validationExpired = "expired"
	validationMissing = "missing"
)

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(header string) string {
	scheme, value, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}

// AuthenticateAppToken verifies raw and returns its subject.
func AuthenticateAppToken(tokens AppTokenVerifier, m core.Recorder, raw string) (string, error) {
	if raw == "" {
		m.RecordAppTokenValidation(validationMissing)
		return "", token.ErrInvalidToken
	}
	claims, err := tokens.Verify(raw)
	switch {
	case err == nil:
		m.RecordAppTokenValidation(validationValid)
		return claims.Subject, nil
	case errors.Is(err, token.ErrExpiredToken):
		m.RecordAppTokenValidation(validationExpired)
	default:
		m.RecordAppTokenValidation(validationInvalid)
	}
	return "", err
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Bearer realm="pairgate"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// RequireAppToken admits requests carrying a valid application token. The
// response never says why a token was rejected.
func RequireAppToken(tokens AppTokenVerifier, m core.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := AuthenticateAppToken(tokens, m, BearerToken(c.GetHeader("Authorization")))
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(ContextUserID, userID)
		c.Request = c.Request.WithContext(util.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// RequireIdentity admits requests carrying a token the external identity
// provider accepts. App tokens are not accepted here.
func RequireIdentity(provider core.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearer := BearerToken(c.GetHeader("Authorization"))
		if bearer == "" {
			abortUnauthorized(c)
			return
		}

		id, err := provider.Verify(c.Request.Context(), bearer)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidToken) {
				abortUnauthorized(c)
				return
			}
			log.Printf("[Identity] %s verification failed: %v", provider.Name(), err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":             "server_error",
				"error_description": "Identity provider unavailable",
			})
			return
		}

		c.Set(ContextUserID, id.UserID)
		c.Set(ContextEmail, id.Email)
		c.Request = c.Request.WithContext(util.WithUserID(c.Request.Context(), id.UserID))
		c.Next()
	}
}
