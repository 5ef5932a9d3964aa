package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNoStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", NoStore(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))

	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestMethodNotAllowed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(MethodNotAllowed(r.Routes))

	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/device/start", ok)
	r.GET("/sessions/:id", ok)
	r.POST("/sessions/close", ok)
	r.DELETE("/sessions/:id", ok)

	tests := []struct {
		method, path, allow string
	}{
		{http.MethodGet, "/device/start", "POST"},
		{http.MethodPut, "/sessions/abc", "DELETE, GET"},
		{http.MethodPost, "/sessions/abc", "DELETE, GET"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, tt.path)
		assert.Equal(t, tt.allow, w.Header().Get("Allow"), tt.path)
		assert.Contains(t, w.Body.String(), "method_not_allowed")
	}
}

func TestMatchRoute(t *testing.T) {
	assert.True(t, matchRoute("/sessions/:id", "/sessions/123"))
	assert.True(t, matchRoute("/static/*filepath", "/static/a/b.js"))
	assert.True(t, matchRoute("/health", "/health/"))
	assert.False(t, matchRoute("/sessions/:id", "/sessions"))
	assert.False(t, matchRoute("/sessions/:id", "/sessions/1/extra"))
	assert.False(t, matchRoute("/device/start", "/device/poll"))
}
