package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-authgate/pairgate/internal/preview"
	"github.com/go-authgate/pairgate/internal/services"

	"github.com/gin-gonic/gin"
)

// errorStatus maps a service error kind to its HTTP status and error code.
var errorStatus = []struct {
	kind   error
	status int
	code   string
}{
	{services.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
	{services.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{services.ErrForbidden, http.StatusForbidden, "forbidden"},
	{services.ErrNotFound, http.StatusNotFound, "not_found"},
	{services.ErrConflict, http.StatusConflict, "conflict"},
	{services.ErrExpired, http.StatusBadRequest, "expired"},
	{preview.ErrInvalidInput, http.StatusBadRequest, "invalid_request"},
	{services.ErrDatabase, http.StatusInternalServerError, "database_error"},
}

// respondError writes the JSON error body for err. Unauthorized responses
// carry no detail.
func respondError(c *gin.Context, err error) {
	var compileErr *preview.CompileError
	if errors.As(err, &compileErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":             "compile_error",
			"error_description": "Compilation failed",
			"messages":          compileErr.Messages,
		})
		return
	}

	for _, e := range errorStatus {
		if !errors.Is(err, e.kind) {
			continue
		}
		if e.status == http.StatusUnauthorized {
			c.JSON(e.status, gin.H{"error": e.code})
			return
		}
		if e.status >= http.StatusInternalServerError {
			log.Printf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
		}
		c.JSON(e.status, gin.H{"error": e.code, "error_description": err.Error()})
		return
	}

	log.Printf("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":             "server_error",
		"error_description": "Internal server error",
	})
}

func badRequest(c *gin.Context, description string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":             "invalid_request",
		"error_description": description,
	})
}

// bindOptionalJSON decodes a JSON body into dst. An empty body is allowed.
func bindOptionalJSON(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "Invalid JSON body")
		return false
	}
	return true
}
