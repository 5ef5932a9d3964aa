package signaling

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/go-authgate/pairgate/internal/core"

	ws "github.com/coder/websocket"
)

const (
	maxPeersPerTopic = 8

	// how long a closed topic keeps refusing late registrations
	closedTopicRetention = time.Hour
)

var (
	ErrHubClosed   = errors.New("signaling hub is shut down")
	ErrTopicFull   = errors.New("too many connections for this session")
	ErrTopicClosed = errors.New("session closed")
)

// TopicForSession names the relay topic of a remote session.
func TopicForSession(sessionID string) string {
	return "remote-session:" + sessionID
}

// Presence is sent by the hub when a peer enters or leaves a topic.
type Presence struct {
	Type string `json:"type"`
	Role string `json:"role"`
}

// Hub routes frames between the clients of each topic. It holds no session
// state beyond who is currently connected.
type Hub struct {
	mu      sync.RWMutex
	topics  map[string]map[*Client]struct{}
	ended   map[string]time.Time
	closed  bool
	metrics core.Recorder
	now     func() time.Time
}

func NewHub(m core.Recorder) *Hub {
	return &Hub{
		topics:  make(map[string]map[*Client]struct{}),
		ended:   make(map[string]time.Time),
		metrics: m,
		now:     time.Now,
	}
}

// Register adds c to its topic and tells the peers already there.
func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHubClosed
	}
	if _, ok := h.ended[c.topic]; ok {
		h.mu.Unlock()
		return ErrTopicClosed
	}
	peers := h.topics[c.topic]
	if len(peers) >= maxPeersPerTopic {
		h.mu.Unlock()
		return ErrTopicFull
	}
	if peers == nil {
		peers = make(map[*Client]struct{})
		h.topics[c.topic] = peers
	}
	peers[c] = struct{}{}
	h.mu.Unlock()

	h.metrics.RecordSignalingConnection(true)
	h.announce(c, "peer_joined")
	return nil
}

// Unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	peers, ok := h.topics[c.topic]
	if ok {
		_, ok = peers[c]
	}
	if ok {
		delete(peers, c)
		if len(peers) == 0 {
			delete(h.topics, c.topic)
		}
		close(c.send)
	}
	h.mu.Unlock()

	if ok {
		h.metrics.RecordSignalingConnection(false)
		h.announce(c, "peer_left")
	}
}

// Relay forwards msg to every client on from's topic except from. Slow
// receivers drop the frame.
func (h *Hub) Relay(from *Client, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.topics[from.topic] {
		if c == from {
			continue
		}
		select {
		case c.send <- msg:
		default:
			log.Printf("[Signaling] dropped frame for slow client on %s", from.topic)
		}
	}
}

func (h *Hub) announce(c *Client, kind string) {
	data, err := json.Marshal(Presence{Type: kind, Role: c.role})
	if err != nil {
		log.Printf("[Signaling] marshal presence: %v", err)
		return
	}
	h.Relay(c, data)
}

// ClientCount returns the number of clients connected to topic.
func (h *Hub) ClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// CloseTopic disconnects every client of topic. Registrations that arrive
// afterwards are refused with ErrTopicClosed.
func (h *Hub) CloseTopic(topic string) {
	h.mu.Lock()
	now := h.now()
	for t, at := range h.ended {
		if now.Sub(at) > closedTopicRetention {
			delete(h.ended, t)
		}
	}
	h.ended[topic] = now
	clients := make([]*Client, 0, len(h.topics[topic]))
	for c := range h.topics[topic] {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close(ws.StatusNormalClosure, "session closed")
	}
}

// CloseSession disconnects every client of a remote session.
func (h *Hub) CloseSession(sessionID string) {
	h.CloseTopic(TopicForSession(sessionID))
}

// Shutdown refuses new clients and disconnects the current ones.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	var clients []*Client
	for _, peers := range h.topics {
		for c := range peers {
			clients = append(clients, c)
		}
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close(ws.StatusGoingAway, "server shutting down")
	}
}
