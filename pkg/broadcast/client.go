package broadcast

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 256
)

// client is one WebSocket connection. The read pump handles subscribe,
// unsubscribe, and publish actions; the write pump drains the send buffer
// and keeps the connection alive with pings.
type client struct {
	b        *Broadcaster
	conn     *websocket.Conn
	request  *http.Request
	send     chan []byte
	socketID string

	mu            sync.Mutex
	subscriptions map[string]struct{}
	closed        bool
}

// trySend queues a message unless the client is closed or its buffer is
// full; slow consumers lose frames instead of blocking the caller.
func (c *client) trySend(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// closeSend shuts the send channel exactly once, stopping the write pump.
func (c *client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *client) readPump() {
	defer c.b.disconnect(c)

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.b.logger.Debug("websocket closed unexpectedly",
					slog.String("socket_id", c.socketID),
					slog.Any("error", err),
				)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			c.trySend(errorFrame("", "malformed frame"))
			continue
		}
		c.handle(f)
	}
}

func (c *client) handle(f frame) {
	if f.Channel == "" {
		c.trySend(errorFrame("", "channel is required"))
		return
	}
	switch f.Action {
	case actionSubscribe:
		c.b.subscribe(c, f.Channel)
	case actionUnsubscribe:
		c.b.unsubscribe(c, f.Channel)
	case actionPublish:
		c.publish(f)
	default:
		c.trySend(errorFrame(f.Channel, "unknown action"))
	}
}

// publish relays a client event to the channel. Only subscribed sockets
// may publish, and never to public channels, mirroring the client-events
// rule of hosted pub/sub services.
func (c *client) publish(f frame) {
	if !c.subscribed(f.Channel) {
		c.trySend(errorFrame(f.Channel, "not subscribed"))
		return
	}
	if KindOf(f.Channel) == Public {
		c.trySend(errorFrame(f.Channel, "client events are not allowed on public channels"))
		return
	}
	if err := c.b.publish(c.request.Context(), f.Channel, f.Event, f.Payload, c.socketID); err != nil {
		c.b.logger.Warn("client event publish failed",
			slog.String("channel", f.Channel),
			slog.String("socket_id", c.socketID),
			slog.Any("error", err),
		)
	}
}

func (c *client) track(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[channel] = struct{}{}
}

func (c *client) untrack(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subscriptions, channel)
}

func (c *client) subscribed(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.subscriptions[channel]
	return ok
}

func (c *client) channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.subscriptions))
	for ch := range c.subscriptions {
		out = append(out, ch)
	}
	return out
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
