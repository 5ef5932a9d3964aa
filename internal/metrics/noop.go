package metrics

import (
	"time"

	"github.com/go-authgate/pairgate/internal/core"
)

// NoopMetrics discards everything. Used when metrics are disabled.
type NoopMetrics struct{}

var _ core.Recorder = (*NoopMetrics)(nil)

func NewNoopMetrics() core.Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordDeviceCodeIssued(success bool)                {}
func (n *NoopMetrics) RecordDeviceCodeApproved(waitTime time.Duration)    {}
func (n *NoopMetrics) RecordDeviceCodePoll(result string)                 {}
func (n *NoopMetrics) RecordAppTokenIssued(generationTime time.Duration)  {}
func (n *NoopMetrics) RecordAppTokenValidation(result string)             {}
func (n *NoopMetrics) RecordSessionCreated(role string)                   {}
func (n *NoopMetrics) RecordSessionJoined(role string, connected bool)    {}
func (n *NoopMetrics) RecordSessionClosed(lifetime time.Duration)         {}
func (n *NoopMetrics) RecordSignalingConnection(opened bool)              {}
func (n *NoopMetrics) RecordSignalingMessage()                            {}
func (n *NoopMetrics) RecordPreviewCompile(success bool, d time.Duration) {}
func (n *NoopMetrics) SetPendingDeviceCodesCount(count int)               {}
func (n *NoopMetrics) SetSessionsCount(pending, connected int)            {}
func (n *NoopMetrics) RecordDatabaseQueryError(operation string)          {}

func (n *NoopMetrics) RecordIdentityVerification(
	provider string,
	success bool,
	duration time.Duration,
) {
}
