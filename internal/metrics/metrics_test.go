package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	m := Init(true)
	require.NotNil(t, m)

	metrics, ok := m.(*Metrics)
	require.True(t, ok, "Init(true) should return *Metrics")
	assert.NotNil(t, metrics.DeviceCodesTotal)
	assert.NotNil(t, metrics.SessionsByState)
	assert.NotNil(t, metrics.HTTPRequestsTotal)

	assert.Same(t, metrics, Init(true), "collectors must be registered once")
}

func TestInitNoop(t *testing.T) {
	m := Init(false)
	_, ok := m.(*NoopMetrics)
	assert.True(t, ok, "Init(false) should return *NoopMetrics")
}

func TestRecordDevicePairing(t *testing.T) {
	m := Init(true).(*Metrics)

	m.SetPendingDeviceCodesCount(0)
	m.RecordDeviceCodeIssued(true)
	m.RecordDeviceCodeIssued(true)
	assert.InDelta(t, 2, testutil.ToFloat64(m.DeviceCodesPending), 0)

	m.RecordDeviceCodeApproved(10 * time.Second)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DeviceCodesPending), 0)

	before := testutil.ToFloat64(m.DeviceCodePollsTotal.WithLabelValues("pending"))
	m.RecordDeviceCodePoll("pending")
	assert.InDelta(t, before+1, testutil.ToFloat64(m.DeviceCodePollsTotal.WithLabelValues("pending")), 0)
}

func TestRecordSessions(t *testing.T) {
	m := Init(true).(*Metrics)

	m.SetSessionsCount(0, 0)
	m.RecordSessionCreated("controller")
	assert.InDelta(t, 1, testutil.ToFloat64(m.SessionsByState.WithLabelValues("pending")), 0)

	m.RecordSessionJoined("host", true)
	assert.InDelta(t, 0, testutil.ToFloat64(m.SessionsByState.WithLabelValues("pending")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SessionsByState.WithLabelValues("connected")), 0)

	m.SetSessionsCount(3, 4)
	assert.InDelta(t, 3, testutil.ToFloat64(m.SessionsByState.WithLabelValues("pending")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m.SessionsByState.WithLabelValues("connected")), 0)

	m.RecordSessionClosed(2 * time.Minute)
}

func TestRecordSignaling(t *testing.T) {
	m := Init(true).(*Metrics)

	start := testutil.ToFloat64(m.SignalingConnections)
	m.RecordSignalingConnection(true)
	m.RecordSignalingConnection(true)
	m.RecordSignalingConnection(false)
	assert.InDelta(t, start+1, testutil.ToFloat64(m.SignalingConnections), 0)
}

func TestNoopMetrics_DoesNotPanic(t *testing.T) {
	m := NewNoopMetrics()
	assert.NotPanics(t, func() {
		m.RecordDeviceCodeIssued(true)
		m.RecordDeviceCodeApproved(time.Second)
		m.RecordDeviceCodePoll("pending")
		m.RecordAppTokenIssued(time.Millisecond)
		m.RecordAppTokenValidation("valid")
		m.RecordIdentityVerification("jwt", true, time.Millisecond)
		m.RecordSessionCreated("host")
		m.RecordSessionJoined("controller", true)
		m.RecordSessionClosed(time.Minute)
		m.RecordSignalingConnection(true)
		m.RecordSignalingMessage()
		m.RecordPreviewCompile(false, time.Millisecond)
		m.SetPendingDeviceCodesCount(1)
		m.SetSessionsCount(1, 2)
		m.RecordDatabaseQueryError("count")
	})
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := Init(true).(*Metrics)

	r := gin.New()
	r.Use(HTTPMetricsMiddleware(m))
	r.GET("/sessions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := m.HTTPRequestsTotal.WithLabelValues("GET", "/sessions/:id", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	assert.InDelta(t, before+2, testutil.ToFloat64(counter), 0)
}

func TestHTTPMetricsMiddleware_Noop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetricsMiddleware(NewNoopMetrics()))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "unknown", normalizePath(""))
	assert.Equal(t, "/sessions/:id", normalizePath("/sessions/:id"))
}
