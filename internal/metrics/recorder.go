package metrics

import (
	"strconv"
	"time"
)

const (
	resultSuccess = "success"
	resultError   = "error"
	resultFailure = "failure"
)

func successLabel(ok bool, failure string) string {
	if ok {
		return resultSuccess
	}
	return failure
}

func (m *Metrics) RecordDeviceCodeIssued(success bool) {
	m.DeviceCodesTotal.WithLabelValues(successLabel(success, resultError)).Inc()
	if success {
		m.DeviceCodesPending.Inc()
	}
}

func (m *Metrics) RecordDeviceCodeApproved(waitTime time.Duration) {
	m.DeviceCodesApprovedTotal.Inc()
	m.DeviceCodesPending.Dec()
	m.DeviceCodeApprovalSeconds.Observe(waitTime.Seconds())
}

// RecordDeviceCodePoll counts a poll outcome: pending, approved, expired,
// consumed or not_found.
func (m *Metrics) RecordDeviceCodePoll(result string) {
	m.DeviceCodePollsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordAppTokenIssued(generationTime time.Duration) {
	m.AppTokensIssuedTotal.Inc()
	m.AppTokenGenerationSeconds.Observe(generationTime.Seconds())
}

func (m *Metrics) RecordAppTokenValidation(result string) {
	m.AppTokenValidationTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordIdentityVerification(provider string, success bool, duration time.Duration) {
	m.IdentityVerificationsTotal.WithLabelValues(provider, successLabel(success, resultFailure)).Inc()
	m.IdentityVerificationSeconds.WithLabelValues(provider).Observe(duration.Seconds())
}

func (m *Metrics) RecordSessionCreated(role string) {
	m.SessionsCreatedTotal.WithLabelValues(role).Inc()
	m.SessionsByState.WithLabelValues("pending").Inc()
}

func (m *Metrics) RecordSessionJoined(role string, connected bool) {
	m.SessionsJoinedTotal.WithLabelValues(role, strconv.FormatBool(connected)).Inc()
	if connected {
		m.SessionsByState.WithLabelValues("pending").Dec()
		m.SessionsByState.WithLabelValues("connected").Inc()
	}
}

func (m *Metrics) RecordSessionClosed(lifetime time.Duration) {
	m.SessionsClosedTotal.Inc()
	m.SessionLifetime.Observe(lifetime.Seconds())
}

func (m *Metrics) RecordSignalingConnection(opened bool) {
	if opened {
		m.SignalingConnections.Inc()
		return
	}
	m.SignalingConnections.Dec()
}

func (m *Metrics) RecordSignalingMessage() {
	m.SignalingMessagesTotal.Inc()
}

func (m *Metrics) RecordPreviewCompile(success bool, duration time.Duration) {
	m.PreviewCompilesTotal.WithLabelValues(successLabel(success, resultError)).Inc()
	m.PreviewCompileSeconds.Observe(duration.Seconds())
}

// SetPendingDeviceCodesCount overwrites the gauge with the database count
func (m *Metrics) SetPendingDeviceCodesCount(count int) {
	m.DeviceCodesPending.Set(float64(count))
}

// SetSessionsCount overwrites the per-state gauges with database counts
func (m *Metrics) SetSessionsCount(pending, connected int) {
	m.SessionsByState.WithLabelValues("pending").Set(float64(pending))
	m.SessionsByState.WithLabelValues("connected").Set(float64(connected))
}

func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
