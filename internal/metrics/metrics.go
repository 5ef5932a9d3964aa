package metrics

import (
	"sync"

	"github.com/go-authgate/pairgate/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ core.Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Device pairing
	DeviceCodesTotal          *prometheus.CounterVec
	DeviceCodesApprovedTotal  prometheus.Counter
	DeviceCodePollsTotal      *prometheus.CounterVec
	DeviceCodesPending        prometheus.Gauge
	DeviceCodeApprovalSeconds prometheus.Histogram

	// App tokens
	AppTokensIssuedTotal      prometheus.Counter
	AppTokenValidationTotal   *prometheus.CounterVec
	AppTokenGenerationSeconds prometheus.Histogram

	// Identity provider
	IdentityVerificationsTotal  *prometheus.CounterVec
	IdentityVerificationSeconds *prometheus.HistogramVec

	// Remote sessions
	SessionsCreatedTotal *prometheus.CounterVec
	SessionsJoinedTotal  *prometheus.CounterVec
	SessionsClosedTotal  prometheus.Counter
	SessionsByState      *prometheus.GaugeVec
	SessionLifetime      prometheus.Histogram

	// Signaling relay
	SignalingConnections   prometheus.Gauge
	SignalingMessagesTotal prometheus.Counter

	// Preview compiler
	PreviewCompilesTotal  *prometheus.CounterVec
	PreviewCompileSeconds prometheus.Histogram

	// HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	DatabaseQueryErrorsTotal *prometheus.CounterVec
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init returns Prometheus-backed metrics when enabled and NoopMetrics
// otherwise. Collectors are registered once per process.
func Init(enabled bool) core.Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = initMetrics()
	})
	return defaultMetrics
}

func initMetrics() *Metrics {
	return &Metrics{
		DeviceCodesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairing_device_codes_total",
				Help: "Total number of device codes issued",
			},
			[]string{"result"}, // success, error
		),
		DeviceCodesApprovedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pairing_device_codes_approved_total",
				Help: "Total number of device codes approved by users",
			},
		),
		DeviceCodePollsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairing_device_code_polls_total",
				Help: "Total number of device code polls by outcome",
			},
			[]string{"result"}, // pending, approved, expired, consumed, not_found
		),
		DeviceCodesPending: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pairing_device_codes_pending",
				Help: "Current number of unexpired device codes awaiting approval",
			},
		),
		DeviceCodeApprovalSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pairing_device_code_approval_duration_seconds",
				Help:    "Time between issuing a device code and its approval",
				Buckets: []float64{5, 15, 30, 60, 120, 300, 600},
			},
		),

		AppTokensIssuedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "app_tokens_issued_total",
				Help: "Total number of application tokens issued",
			},
		),
		AppTokenValidationTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "app_token_validation_total",
				Help: "Total number of application token validations",
			},
			[]string{"result"}, // valid, invalid, expired
		),
		AppTokenGenerationSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "app_token_generation_duration_seconds",
				Help:    "Time taken to sign an application token",
				Buckets: prometheus.DefBuckets,
			},
		),

		IdentityVerificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "identity_verifications_total",
				Help: "Total number of identity token verifications",
			},
			[]string{"provider", "result"},
		),
		IdentityVerificationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "identity_verification_duration_seconds",
				Help:    "Time taken to verify an identity token",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"}, // http_api, jwt
		),

		SessionsCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remote_sessions_created_total",
				Help: "Total number of remote sessions created",
			},
			[]string{"role"},
		),
		SessionsJoinedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remote_sessions_joined_total",
				Help: "Total number of successful session joins",
			},
			[]string{"role", "connected"},
		),
		SessionsClosedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "remote_sessions_closed_total",
				Help: "Total number of remote sessions closed",
			},
		),
		SessionsByState: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "remote_sessions",
				Help: "Current number of remote sessions by state",
			},
			[]string{"state"}, // pending, connected
		),
		SessionLifetime: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name: "remote_session_lifetime_seconds",
				Help: "Time between session creation and close",
				Buckets: []float64{
					60,
					300,
					600,
					1800,
					3600,
					7200,
					14400,
				}, // 1m, 5m, 10m, 30m, 1h, 2h, 4h
			},
		),

		SignalingConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "signaling_connections",
				Help: "Current number of open signaling websocket connections",
			},
		),
		SignalingMessagesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "signaling_messages_total",
				Help: "Total number of relayed signaling messages",
			},
		),

		PreviewCompilesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "preview_compiles_total",
				Help: "Total number of preview compilations",
			},
			[]string{"result"},
		),
		PreviewCompileSeconds: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "preview_compile_duration_seconds",
				Help:    "Time taken to bundle a preview",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),

		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				Buckets: []float64{
					0.001,
					0.005,
					0.010,
					0.025,
					0.050,
					0.100,
					0.250,
					0.500,
					1.0,
					2.5,
					5.0,
					10.0,
				},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),

		DatabaseQueryErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "database_query_errors_total",
				Help: "Total number of database query errors during metric collection",
			},
			[]string{"operation"}, // count_pending_device_codes, count_sessions
		),
	}
}
