// Package relay mirrors room broadcasts to NATS JetStream so other services
// can follow games without holding a client connection.
package relay

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviaroom/go/internal/trivia/events"
	"github.com/mcdev12/triviaroom/go/internal/trivia/orchestrator"
)

const (
	defaultQueueSize      = 1024
	defaultPublishTimeout = 5 * time.Second
)

// Relay wraps a Broadcaster. Room broadcasts are delivered by the wrapped
// broadcaster and also queued for publishing; direct sends stay local.
type Relay struct {
	next      orchestrator.Broadcaster
	publisher Publisher
	metrics   MetricsCollector
	queue     chan *events.RoomEvent
	timeout   time.Duration
	running   atomic.Bool
}

// New creates a relay. A nil metrics collector records nothing.
func New(next orchestrator.Broadcaster, publisher Publisher, metrics MetricsCollector) *Relay {
	if metrics == nil {
		metrics = NoOpMetricsCollector{}
	}
	return &Relay{
		next:      next,
		publisher: publisher,
		metrics:   metrics,
		queue:     make(chan *events.RoomEvent, defaultQueueSize),
		timeout:   defaultPublishTimeout,
	}
}

func (r *Relay) Subscribe(roomID, connID string)   { r.next.Subscribe(roomID, connID) }
func (r *Relay) Unsubscribe(roomID, connID string) { r.next.Unsubscribe(roomID, connID) }
func (r *Relay) DropRoom(roomID string)            { r.next.DropRoom(roomID) }

func (r *Relay) SendToConnection(connID string, event *events.RoomEvent) {
	r.next.SendToConnection(connID, event)
}

// BroadcastToRoom delivers locally and queues the event for publishing
// without blocking.
func (r *Relay) BroadcastToRoom(roomID string, event *events.RoomEvent) {
	r.next.BroadcastToRoom(roomID, event)

	select {
	case r.queue <- event:
	default:
		r.metrics.RecordDropped(string(event.Type))
		log.Warn().
			Str("room_id", roomID).
			Str("event_type", string(event.Type)).
			Msg("relay queue full, dropping event")
	}
}

// Run publishes queued events in order until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	r.running.Store(true)
	defer r.running.Store(false)

	log.Info().Msg("event relay started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("pending", len(r.queue)).Msg("event relay shutting down")
			return
		case event := <-r.queue:
			r.publish(ctx, event)
		}
	}
}

// Running reports whether Run is active.
func (r *Relay) Running() bool {
	return r.running.Load()
}

// Pending returns the number of queued events not yet published.
func (r *Relay) Pending() int {
	return len(r.queue)
}

func (r *Relay) publish(ctx context.Context, event *events.RoomEvent) {
	pubCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := r.publisher.Publish(pubCtx, event)
	r.metrics.RecordPublished(string(event.Type), err == nil, time.Since(start))

	if err != nil {
		log.Error().
			Err(err).
			Str("room_id", event.RoomID).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("failed to publish room event")
	}
}
