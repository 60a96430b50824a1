// Package views signals that a logical read view has changed and cached
// copies of it must be refreshed.
//
// A Bus dispatches signals to handlers registered in this process and, when a
// Redis client is configured, publishes them on a shared channel so every
// other instance dispatches them too.
package views

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// View names a read view.
type View string

const (
	RouteListing    View = "route_listing"
	ModerationQueue View = "moderation_queue"
	IncidentFeed    View = "incident_feed"
	Leaderboard     View = "leaderboard"
)

// Channel is the Redis pub/sub channel shared by all instances.
const Channel = "views:stale"

const (
	// outboxSize bounds signals waiting to be published; more are dropped.
	outboxSize = 64

	publishTimeout = 2 * time.Second

	subscribeBackoffBase = 100 * time.Millisecond
	subscribeBackoffMax  = 5 * time.Second
)

// message is the wire form published on Channel.
type message struct {
	Origin string `json:"origin"`
	Views  []View `json:"views"`
}

// Bus fans stale-view signals out to registered handlers.
type Bus struct {
	redis  *redis.Client
	logger *slog.Logger
	origin string

	mu       sync.RWMutex
	handlers map[View][]func()

	outbox chan []byte

	ready     chan struct{}
	readyOnce sync.Once
}

// NewBus returns a Bus. A nil redis client keeps signals local to the process.
func NewBus(redisClient *redis.Client, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		redis:    redisClient,
		logger:   logger,
		origin:   uuid.NewString(),
		handlers: map[View][]func(){},
		outbox:   make(chan []byte, outboxSize),
		ready:    make(chan struct{}),
	}
}

// OnStale registers fn to run whenever v is signalled, locally or by another
// instance. Handlers run synchronously on the signalling goroutine and must
// be quick.
func (b *Bus) OnStale(v View, fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[v] = append(b.handlers[v], fn)
}

// MarkStale signals every view in vs. Local handlers run before it returns.
// The remote publish is queued for Run and never blocks the caller: when the
// queue is full the signal is dropped and logged, and other instances catch
// up when their cache TTL expires.
func (b *Bus) MarkStale(_ context.Context, vs ...View) {
	if len(vs) == 0 {
		return
	}
	for _, v := range vs {
		b.dispatch(v)
	}

	if b.redis == nil {
		return
	}
	payload, err := json.Marshal(message{Origin: b.origin, Views: vs})
	if err != nil {
		b.logger.Warn("views: encode stale signal", "error", err)
		return
	}
	select {
	case b.outbox <- payload:
	default:
		b.logger.Warn("views: publish queue full, dropping stale signal", "views", vs)
	}
}

// Run publishes queued signals and dispatches signals from other instances
// until ctx is cancelled. A failed subscribe is retried with capped
// exponential backoff; once subscribed, go-redis reconnects on its own.
// Without a redis client it just waits for ctx.
func (b *Bus) Run(ctx context.Context) error {
	if b.redis == nil {
		b.markReady()
		<-ctx.Done()
		return nil
	}

	go b.publishLoop(ctx)

	pubsub, err := b.subscribe(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("views.Bus.Run: subscribe: %w", err)
	}
	defer pubsub.Close()
	b.markReady()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handleRemote(msg.Payload)
		}
	}
}

func (b *Bus) subscribe(ctx context.Context) (*redis.PubSub, error) {
	backoff := retry.WithCappedDuration(subscribeBackoffMax, retry.NewExponential(subscribeBackoffBase))

	var pubsub *redis.PubSub
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		ps := b.redis.Subscribe(ctx, Channel)
		// Receive blocks until the subscription is confirmed.
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			if ctx.Err() != nil {
				return err
			}
			b.logger.Warn("views: subscribe failed, retrying", "error", err)
			return retry.RetryableError(err)
		}
		pubsub = ps
		return nil
	})
	return pubsub, err
}

func (b *Bus) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-b.outbox:
			pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
			if err := b.redis.Publish(pubCtx, Channel, payload).Err(); err != nil {
				b.logger.Warn("views: publish stale signal", "payload", string(payload), "error", err)
			}
			cancel()
		}
	}
}

// Ready is closed once Run is receiving remote signals.
func (b *Bus) Ready() <-chan struct{} {
	return b.ready
}

func (b *Bus) markReady() {
	b.readyOnce.Do(func() { close(b.ready) })
}

func (b *Bus) handleRemote(payload string) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		b.logger.Warn("views: malformed stale signal", "payload", payload, "error", err)
		return
	}
	if m.Origin == b.origin {
		// Already dispatched locally by MarkStale.
		return
	}
	for _, v := range m.Views {
		b.dispatch(v)
	}
}

func (b *Bus) dispatch(v View) {
	b.mu.RLock()
	handlers := b.handlers[v]
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}
