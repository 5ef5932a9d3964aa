package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Device pairing
	RecordDeviceCodeIssued(success bool)
	RecordDeviceCodeApproved(waitTime time.Duration)
	RecordDeviceCodePoll(result string)

	// Application tokens
	RecordAppTokenIssued(generationTime time.Duration)
	RecordAppTokenValidation(result string)

	// Identity provider
	RecordIdentityVerification(provider string, success bool, duration time.Duration)

	// Remote sessions
	RecordSessionCreated(role string)
	RecordSessionJoined(role string, connected bool)
	RecordSessionClosed(lifetime time.Duration)

	// Signaling relay
	RecordSignalingConnection(opened bool)
	RecordSignalingMessage()

	// Preview compiler
	RecordPreviewCompile(success bool, duration time.Duration)

	// Gauge Setters (for periodic updates)
	SetPendingDeviceCodesCount(count int)
	SetSessionsCount(pending, connected int)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}

// MetricsStore defines the DB operations needed by CacheWrapper.
type MetricsStore interface {
	CountPendingDeviceCodes() (int64, error)
	CountSessionsByState(state string) (int64, error)
}
