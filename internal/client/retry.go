package client

import (
	"fmt"
	"time"

	httpclient "github.com/appleboy/go-httpclient"
	retry "github.com/appleboy/go-httpretry"
)

// DefaultAPIKeyHeader is where the identity provider expects its project key.
const DefaultAPIKeyHeader = "apikey"

// Options configures the outbound client for the identity provider.
type Options struct {
	APIKey             string // sent on every request when set
	APIKeyHeader       string // defaults to DefaultAPIKeyHeader
	Timeout            time.Duration
	InsecureSkipVerify bool
	MaxRetries         int
	RetryDelay         time.Duration
	MaxRetryDelay      time.Duration
}

func (o Options) authMode() string {
	if o.APIKey == "" {
		return httpclient.AuthModeNone
	}
	return httpclient.AuthModeSimple
}

func (o Options) header() string {
	if o.APIKeyHeader == "" {
		return DefaultAPIKeyHeader
	}
	return o.APIKeyHeader
}

// NewRetryClient creates an HTTP client that attaches the api key header
// and retries transient failures with exponential backoff.
func NewRetryClient(opts Options) (*retry.Client, error) {
	client, err := httpclient.NewAuthClient(
		opts.authMode(),
		opts.APIKey,
		httpclient.WithTimeout(opts.Timeout),
		httpclient.WithHeaderName(opts.header()),
		httpclient.WithInsecureSkipVerify(opts.InsecureSkipVerify),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth client: %w", err)
	}

	retryClient, err := retry.NewRealtimeClient(
		retry.WithHTTPClient(client),
		retry.WithMaxRetries(opts.MaxRetries),
		retry.WithInitialRetryDelay(opts.RetryDelay),
		retry.WithMaxRetryDelay(opts.MaxRetryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry client: %w", err)
	}

	return retryClient, nil
}
