package signaling

import (
	"context"
	"errors"
	"sync"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 32
	pingInterval   = 30 * time.Second
	maxFrameSize   = 64 * 1024
)

// Client is one participant connection on a topic.
type Client struct {
	hub   *Hub
	conn  *ws.Conn
	topic string
	role  string
	send  chan []byte

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *ws.Conn, topic, role string) *Client {
	return &Client{
		hub:   hub,
		conn:  conn,
		topic: topic,
		role:  role,
		send:  make(chan []byte, sendBufferSize),
	}
}

// Run registers the client and pumps frames until the connection ends.
func (c *Client) Run(ctx context.Context) error {
	if c.conn != nil {
		c.conn.SetReadLimit(maxFrameSize)
	}
	if err := c.hub.Register(c); err != nil {
		status := ws.StatusTryAgainLater
		if errors.Is(err, ErrTopicClosed) {
			status = ws.StatusNormalClosure
		}
		c.Close(status, err.Error())
		return err
	}
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
	return nil
}

// Close ends the connection with status. Only the first call has effect.
func (c *Client) Close(status ws.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		if c.conn == nil {
			return
		}
		// Close waits for the peer's close frame; don't block the caller
		go c.conn.Close(status, reason)
	})
}

// readPump forwards text frames to the topic. Binary frames are ignored.
func (c *Client) readPump(ctx context.Context) {
	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != ws.MessageText {
			continue
		}
		c.hub.metrics.RecordSignalingMessage()
		c.hub.Relay(c, data)
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
