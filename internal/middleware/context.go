package middleware

import (
	"github.com/gin-gonic/gin"
)

// Keys set on the gin context by the auth middlewares
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
)

// UserID returns the authenticated user id, or "" when the route is public.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
