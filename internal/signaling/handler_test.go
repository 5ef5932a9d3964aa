package signaling

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-authgate/pairgate/internal/metrics"
	"github.com/go-authgate/pairgate/internal/models"
	"github.com/go-authgate/pairgate/internal/services"
	"github.com/go-authgate/pairgate/internal/token"

	ws "github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions map[string]*models.RemoteSession

func (f fakeSessions) Get(_ context.Context, userID, sessionID string) (*models.RemoteSession, error) {
	s, ok := f[sessionID]
	if !ok {
		return nil, services.ErrSessionNotFound
	}
	if !s.IsParticipant(userID) {
		return nil, services.ErrNotParticipant
	}
	return s, nil
}

type relayEnv struct {
	hub    *Hub
	server *httptest.Server
	tokens *token.AppTokenProvider
}

func newRelayEnv(t *testing.T) *relayEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := token.NewAppTokenProvider("signaling-test-secret-0123456789abcdef", "test", time.Hour)
	require.NoError(t, err)

	sessions := fakeSessions{
		"live": {
			ID:             "live",
			State:          models.SessionStateConnected,
			OwnerUser:      "alice",
			ControllerUser: "alice",
			HostUser:       "bob",
		},
		"done": {
			ID:             "done",
			State:          models.SessionStateClosed,
			OwnerUser:      "alice",
			ControllerUser: "alice",
		},
	}

	m := metrics.NewNoopMetrics()
	hub := NewHub(m)
	r := gin.New()
	r.GET("/realtime/ws", NewHandler(hub, tokens, sessions, m).Serve)

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Shutdown()
		srv.Close()
	})
	return &relayEnv{hub: hub, server: srv, tokens: tokens}
}

func (e *relayEnv) url(t *testing.T, sessionID, user string) string {
	t.Helper()
	q := url.Values{}
	if sessionID != "" {
		q.Set("sessionId", sessionID)
	}
	if user != "" {
		tok, err := e.tokens.Issue(user)
		require.NoError(t, err)
		q.Set("access_token", tok.Token)
	}
	return "ws" + strings.TrimPrefix(e.server.URL, "http") + "/realtime/ws?" + q.Encode()
}

func (e *relayEnv) dial(t *testing.T, sessionID, user string) *ws.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, e.url(t, sessionID, user), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func (e *relayEnv) waitForClients(t *testing.T, sessionID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return e.hub.ClientCount(TopicForSession(sessionID)) == n
	}, 2*time.Second, 10*time.Millisecond)
}

func readText(t *testing.T, conn *ws.Conn) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, ws.MessageText, typ)
	return string(data)
}

func TestHandler_RelaysBetweenParticipants(t *testing.T) {
	env := newRelayEnv(t)

	controller := env.dial(t, "live", "alice")
	env.waitForClients(t, "live", 1)
	host := env.dial(t, "live", "bob")
	env.waitForClients(t, "live", 2)

	var p Presence
	require.NoError(t, json.Unmarshal([]byte(readText(t, controller)), &p))
	assert.Equal(t, Presence{Type: "peer_joined", Role: "host"}, p)

	ctx := context.Background()
	require.NoError(t, controller.Write(ctx, ws.MessageText, []byte(`{"type":"offer","sdp":"v=0"}`)))
	assert.Equal(t, `{"type":"offer","sdp":"v=0"}`, readText(t, host))

	require.NoError(t, host.Write(ctx, ws.MessageText, []byte(`{"type":"answer"}`)))
	assert.Equal(t, `{"type":"answer"}`, readText(t, controller))
}

func TestHandler_CloseSessionDisconnects(t *testing.T) {
	env := newRelayEnv(t)

	conn := env.dial(t, "live", "bob")
	env.waitForClients(t, "live", 1)

	env.hub.CloseSession("live")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, ws.StatusNormalClosure, ws.CloseStatus(err))
	env.waitForClients(t, "live", 0)
}

func TestHandler_HeaderToken(t *testing.T) {
	env := newRelayEnv(t)
	tok, err := env.tokens.Issue("alice")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	u := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/realtime/ws?sessionId=live"
	conn, _, err := ws.Dial(ctx, u, &ws.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + tok.Token}},
	})
	require.NoError(t, err)
	_ = conn.CloseNow()
}

func TestHandler_Rejections(t *testing.T) {
	env := newRelayEnv(t)

	tests := []struct {
		name      string
		sessionID string
		user      string
		status    int
	}{
		{"missing session id", "", "alice", http.StatusBadRequest},
		{"missing token", "live", "", http.StatusUnauthorized},
		{"unknown session", "nope", "alice", http.StatusNotFound},
		{"not a participant", "live", "mallory", http.StatusForbidden},
		{"closed session", "done", "alice", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			conn, resp, err := ws.Dial(ctx, env.url(t, tt.sessionID, tt.user), nil)
			require.Error(t, err)
			assert.Nil(t, conn)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
