package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-authgate/pairgate/internal/preview"
	"github.com/go-authgate/pairgate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: missing", services.ErrInvalidRequest), http.StatusBadRequest, "invalid_request"},
		{services.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{services.ErrNotParticipant, http.StatusForbidden, "forbidden"},
		{services.ErrSessionNotFound, http.StatusNotFound, "not_found"},
		{services.ErrRoleTaken, http.StatusConflict, "conflict"},
		{services.ErrDeviceCodeExpired, http.StatusBadRequest, "expired"},
		{fmt.Errorf("%w: disk full", services.ErrDatabase), http.StatusInternalServerError, "database_error"},
		{fmt.Errorf("%w: %w", preview.ErrInvalidInput, preview.ErrTooLarge), http.StatusBadRequest, "invalid_request"},
		{&preview.CompileError{Messages: []string{"boom"}}, http.StatusBadRequest, "compile_error"},
		{errors.New("something else"), http.StatusInternalServerError, "server_error"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/x", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body["error"])
			if tt.status == http.StatusUnauthorized {
				assert.NotContains(t, body, "error_description")
			}
		})
	}
}

func TestRespondError_DatabaseMessageAttached(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/logs", nil)

	respondError(c, fmt.Errorf("%w: no such table: usage_logs", services.ErrDatabase))

	assert.Contains(t, w.Body.String(), "no such table")
}
