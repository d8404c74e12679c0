// Package orchestrator runs trivia rooms: it admits players, starts games when
// everyone is ready, drives the question clock, settles answers and emits the
// resulting events.
package orchestrator

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviaroom/go/internal/trivia/events"
	"github.com/mcdev12/triviaroom/go/internal/trivia/questions"
	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
	"github.com/mcdev12/triviaroom/go/internal/trivia/scoring"
)

// Broadcaster delivers events to connections. Implementations must not block:
// the orchestrator calls them while holding a room lock.
type Broadcaster interface {
	Subscribe(roomID, connID string)
	Unsubscribe(roomID, connID string)
	DropRoom(roomID string)
	BroadcastToRoom(roomID string, event *events.RoomEvent)
	SendToConnection(connID string, event *events.RoomEvent)
}

// Config holds the game rules.
type Config struct {
	MaxPlayers         int
	QuestionsPerGame   int
	QuestionDuration   time.Duration
	InterQuestionPause time.Duration
	FinishedRoomTTL    time.Duration
	SpeedBonusMax      int
}

// DefaultConfig returns the standard rules.
func DefaultConfig() Config {
	return Config{
		MaxPlayers:         5,
		QuestionsPerGame:   10,
		QuestionDuration:   20 * time.Second,
		InterQuestionPause: time.Second,
		FinishedRoomTTL:    5 * time.Minute,
		SpeedBonusMax:      scoring.DefaultSpeedBonusMax,
	}
}

type Orchestrator struct {
	registry    *room.Registry
	supply      questions.Supply
	broadcaster Broadcaster
	scorer      *scoring.Engine
	clock       clockwork.Clock
	config      Config
}

// NewOrchestrator wires the orchestrator. A nil clock uses the real clock.
func NewOrchestrator(config Config, registry *room.Registry, supply questions.Supply, broadcaster Broadcaster, clock clockwork.Clock) *Orchestrator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Orchestrator{
		registry:    registry,
		supply:      supply,
		broadcaster: broadcaster,
		scorer:      scoring.NewEngine(config.SpeedBonusMax),
		clock:       clock,
		config:      config,
	}
}

// lockRoom fetches a room and locks it. The room is re-checked against the
// registry after locking so callers never act on an evicted room.
func (o *Orchestrator) lockRoom(roomID string) (*room.Room, error) {
	r, err := o.registry.Get(roomID)
	if err != nil {
		return nil, err
	}

	r.Lock()
	if current, err := o.registry.Get(roomID); err != nil || current != r {
		r.Unlock()
		return nil, room.ErrRoomNotFound
	}
	return r, nil
}

// broadcast emits an event to every connection subscribed to the room.
func (o *Orchestrator) broadcast(roomID string, eventType events.EventType, payload any) {
	event, err := events.NewRoomEvent(roomID, eventType, payload, o.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("room_id", roomID).Msg("failed to build room event")
		return
	}
	o.broadcaster.BroadcastToRoom(roomID, event)
}

// send emits an event to a single connection.
func (o *Orchestrator) send(connID, roomID string, eventType events.EventType, payload any) {
	event, err := events.NewRoomEvent(roomID, eventType, payload, o.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("connection_id", connID).Msg("failed to build connection event")
		return
	}
	o.broadcaster.SendToConnection(connID, event)
}

// evict removes a room and everything attached to it. The room lock must be held.
func (o *Orchestrator) evict(r *room.Room) {
	r.CancelTimer()
	o.registry.Delete(r.ID())
	o.broadcaster.DropRoom(r.ID())

	log.Info().
		Str("room_id", r.ID()).
		Str("status", string(r.Status())).
		Msg("room evicted")
}
