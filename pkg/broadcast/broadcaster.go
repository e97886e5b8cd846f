package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

const defaultRedisChannel = "broadcast"

// Broadcaster fans events out to WebSocket subscribers across channels.
// With a Redis client configured, publishes propagate to hubs on other
// nodes through pub/sub; without one it is single-node.
type Broadcaster struct {
	hub       *hub
	client    redis.UniversalClient
	pubsub    *redis.PubSub
	authorize Authorizer
	logger    *slog.Logger
	upgrader  websocket.Upgrader
	nodeID    string
	redisName string

	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// Option configures the broadcaster.
type Option func(*Broadcaster)

// WithRedis enables the cross-node backplane on the given client.
func WithRedis(client redis.UniversalClient) Option {
	return func(b *Broadcaster) { b.client = client }
}

// WithAuthorizer gates private and presence channels.
func WithAuthorizer(fn Authorizer) Option {
	return func(b *Broadcaster) {
		if fn != nil {
			b.authorize = fn
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Broadcaster) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithRedisChannel overrides the pub/sub channel name used by the
// backplane. Defaults to "broadcast".
func WithRedisChannel(name string) Option {
	return func(b *Broadcaster) {
		if name != "" {
			b.redisName = name
		}
	}
}

// WithCheckOrigin replaces the upgrader origin check. The default accepts
// same-host requests only, per gorilla's standard behavior.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(b *Broadcaster) {
		if fn != nil {
			b.upgrader.CheckOrigin = fn
		}
	}
}

// New creates a Broadcaster. Call Start before serving the Handler when a
// Redis backplane is configured.
func New(opts ...Option) *Broadcaster {
	b := &Broadcaster{
		hub:    newHub(),
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		nodeID:    uuid.NewString(),
		redisName: defaultRedisChannel,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start subscribes to the Redis backplane. It is a no-op (after state
// checks) when no Redis client is configured.
func (b *Broadcaster) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return ErrAlreadyStarted
	}

	if b.client != nil {
		b.pubsub = b.client.Subscribe(ctx, b.redisName)
		// Force the subscription so a dead Redis fails Start, not the
		// first missed message.
		if _, err := b.pubsub.Receive(ctx); err != nil {
			_ = b.pubsub.Close()
			b.pubsub = nil
			return fmt.Errorf("broadcast: backplane subscribe: %w", err)
		}
		b.wg.Add(1)
		go b.backplaneLoop()
	}

	b.started = true
	b.logger.Info("broadcaster started",
		slog.String("node_id", b.nodeID),
		slog.Bool("backplane", b.client != nil),
	)
	return nil
}

// Stop closes the backplane subscription and disconnects all clients.
func (b *Broadcaster) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return ErrNotStarted
	}

	if b.pubsub != nil {
		_ = b.pubsub.Close()
		b.pubsub = nil
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}

	b.hub.closeAll()
	b.started = false
	b.logger.Info("broadcaster stopped")
	return nil
}

func (b *Broadcaster) backplaneLoop() {
	defer b.wg.Done()
	for msg := range b.pubsub.Channel() {
		var env envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			b.logger.Error("undecodable backplane message", slog.Any("error", err))
			continue
		}
		if env.Origin == b.nodeID {
			continue
		}
		b.deliverLocal(env.Channel, env.Event, env.Payload, env.Exclude)
	}
}

// PublishOption adjusts a single publish.
type PublishOption func(*publishConfig)

type publishConfig struct {
	excludeSocket string
}

// ExcludeSocket skips one socket during fan-out, typically the sender of
// the event.
func ExcludeSocket(socketID string) PublishOption {
	return func(c *publishConfig) { c.excludeSocket = socketID }
}

// Broadcast delivers an event to every subscriber of the channel, on this
// node and, with a backplane, on all others.
func (b *Broadcaster) Broadcast(ctx context.Context, channel, event string, payload any, opts ...PublishOption) error {
	if channel == "" {
		return ErrInvalidChannel
	}
	var cfg publishConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var raw json.RawMessage
	if payload != nil {
		bts, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("broadcast: marshal payload: %w", err)
		}
		raw = bts
	}
	return b.publish(ctx, channel, event, raw, cfg.excludeSocket)
}

func (b *Broadcaster) publish(ctx context.Context, channel, event string, payload json.RawMessage, excludeSocket string) error {
	b.deliverLocal(channel, event, payload, excludeSocket)

	if b.client == nil {
		return nil
	}
	env, err := json.Marshal(envelope{
		Origin:  b.nodeID,
		Channel: channel,
		Event:   event,
		Payload: payload,
		Exclude: excludeSocket,
	})
	if err != nil {
		return fmt.Errorf("broadcast: marshal envelope: %w", err)
	}
	if err := b.client.Publish(ctx, b.redisName, env).Err(); err != nil {
		return fmt.Errorf("broadcast: backplane publish: %w", err)
	}
	return nil
}

func (b *Broadcaster) deliverLocal(channel, event string, payload json.RawMessage, excludeSocket string) {
	b.hub.deliver(channel, frame{Channel: channel, Event: event, Payload: payload}.encode(), excludeSocket)
}

// Handler returns the WebSocket endpoint. Each connection gets a socket ID
// and manages its channel subscriptions over the socket protocol.
func (b *Broadcaster) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the error response.
			return
		}

		c := &client{
			b:             b,
			conn:          conn,
			request:       r,
			send:          make(chan []byte, sendBufferSize),
			socketID:      uuid.NewString(),
			subscriptions: make(map[string]struct{}),
		}

		// Tell the client its socket ID so it can be excluded from its
		// own publishes made over HTTP.
		payload, _ := json.Marshal(map[string]string{"socket_id": c.socketID})
		c.trySend(frame{Event: EventSubscribed, Payload: payload}.encode())

		go c.writePump()
		c.readPump()
	})
}

// subscribe authorizes and registers a channel subscription, emitting
// presence events where applicable.
func (b *Broadcaster) subscribe(c *client, channel string) {
	kind := KindOf(channel)

	var member *Member
	if kind != Public {
		if b.authorize == nil {
			c.trySend(errorFrame(channel, ErrNoAuthorizer.Error()))
			return
		}
		m, err := b.authorize(c.request, channel)
		if err != nil {
			b.logger.Debug("channel subscription denied",
				slog.String("channel", channel),
				slog.String("socket_id", c.socketID),
				slog.Any("error", err),
			)
			c.trySend(errorFrame(channel, ErrChannelForbidden.Error()))
			return
		}
		if kind == Presence && m == nil {
			c.trySend(errorFrame(channel, "presence channels require member info"))
			return
		}
		member = m
	}

	b.hub.subscribe(channel, c)
	c.track(channel)

	if kind == Presence {
		b.hub.addMember(channel, c.socketID, member)
		joined, _ := json.Marshal(member)
		_ = b.publish(c.request.Context(), channel, EventJoin, joined, c.socketID)
	}

	ack := map[string]any{"channel": channel}
	if kind == Presence {
		ack["members"] = b.hub.membersOf(channel)
	}
	payload, _ := json.Marshal(ack)
	c.trySend(frame{Channel: channel, Event: EventSubscribed, Payload: payload}.encode())
}

func (b *Broadcaster) unsubscribe(c *client, channel string) {
	member := b.hub.unsubscribe(channel, c)
	c.untrack(channel)
	if member != nil {
		left, _ := json.Marshal(member)
		_ = b.publish(c.request.Context(), channel, EventLeave, left, c.socketID)
	}
}

// disconnect tears down every subscription of a closing connection.
func (b *Broadcaster) disconnect(c *client) {
	for _, channel := range c.channels() {
		b.unsubscribe(c, channel)
	}
	c.closeSend()
	_ = c.conn.Close()
}

// Stats reports the local hub's channel and connection counts.
func (b *Broadcaster) Stats() (channels, connections int) {
	return b.hub.stats()
}

// Healthcheck returns a readiness probe: the broadcaster must be started
// and, when a backplane is configured, Redis must be reachable.
func Healthcheck(b *Broadcaster) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if b == nil {
			return errors.Join(ErrHealthcheckFailed, errors.New("broadcaster is nil"))
		}
		b.mu.Lock()
		started := b.started
		b.mu.Unlock()
		if !started {
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}
		if b.client != nil {
			if err := b.client.Ping(ctx).Err(); err != nil {
				return errors.Join(ErrHealthcheckFailed, err)
			}
		}
		return nil
	}
}

// Shutdown returns a shutdown hook for the broadcaster.
func (b *Broadcaster) Shutdown() func(context.Context) error {
	return func(ctx context.Context) error {
		return b.Stop(ctx)
	}
}
