package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	return Options{
		Timeout:       5 * time.Second,
		MaxRetries:    2,
		RetryDelay:    time.Millisecond,
		MaxRetryDelay: 5 * time.Millisecond,
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}
	assert.Equal(t, "none", opts.authMode())
	assert.Equal(t, DefaultAPIKeyHeader, opts.header())

	opts = Options{APIKey: "anon-key", APIKeyHeader: "X-Project-Key"}
	assert.Equal(t, "simple", opts.authMode())
	assert.Equal(t, "X-Project-Key", opts.header())
}

func TestNewRetryClient_SendsAPIKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "anon-key", r.Header.Get(DefaultAPIKeyHeader))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	opts := testOptions()
	opts.APIKey = "anon-key"
	c, err := NewRetryClient(opts)
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewRetryClient_NoKeyNoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(DefaultAPIKeyHeader))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c, err := NewRetryClient(testOptions())
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
}

func TestNewRetryClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c, err := NewRetryClient(testOptions())
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestNewRetryClient_NoRetryOnClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c, err := NewRetryClient(testOptions())
	require.NoError(t, err)

	resp, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}
