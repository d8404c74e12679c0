package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RoomEvent is the envelope for every message sent to clients.
type RoomEvent struct {
	ID        string          `json:"id"`        // Event UUID
	RoomID    string          `json:"room_id"`   // Room code
	Type      EventType       `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// EventType is the type of an outbound room event.
type EventType string

const (
	EventTypeRoomCreated     EventType = "room-created"
	EventTypeJoinedRoom      EventType = "joined-room"
	EventTypeRosterUpdate    EventType = "roster-update"
	EventTypeReadyUpdate     EventType = "ready-update"
	EventTypeRoundStarted    EventType = "round-started"
	EventTypeQuestionOpened  EventType = "question-opened"
	EventTypeLiveScores      EventType = "live-scores"
	EventTypeQuestionSettled EventType = "question-settled"
	EventTypeGameFinished    EventType = "game-finished"
	EventTypePlayerLeft      EventType = "player-left"
	EventTypeAnswerReceived  EventType = "answer-received"
	EventTypeRejected        EventType = "rejected"
)

// NewRoomEvent wraps a payload in an envelope.
func NewRoomEvent(roomID string, eventType EventType, payload any, at time.Time) (*RoomEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return &RoomEvent{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		Type:      eventType,
		Timestamp: at.UTC(),
		Data:      data,
	}, nil
}

// ParseEventPayload decodes event data into the payload struct for its type.
func ParseEventPayload(event *RoomEvent) (any, error) {
	var payload any
	switch event.Type {
	case EventTypeRoomCreated:
		payload = &RoomCreatedPayload{}
	case EventTypeJoinedRoom:
		payload = &JoinedRoomPayload{}
	case EventTypeRosterUpdate:
		payload = &RosterUpdatePayload{}
	case EventTypeReadyUpdate:
		payload = &ReadyUpdatePayload{}
	case EventTypeRoundStarted:
		payload = &RoundStartedPayload{}
	case EventTypeQuestionOpened:
		payload = &QuestionOpenedPayload{}
	case EventTypeLiveScores:
		payload = &LiveScoresPayload{}
	case EventTypeQuestionSettled:
		payload = &QuestionSettledPayload{}
	case EventTypeGameFinished:
		payload = &GameFinishedPayload{}
	case EventTypePlayerLeft:
		payload = &PlayerLeftPayload{}
	case EventTypeAnswerReceived:
		payload = &AnswerReceivedPayload{}
	case EventTypeRejected:
		payload = &RejectedPayload{}
	default:
		return nil, fmt.Errorf("unknown event type %q", event.Type)
	}

	if err := json.Unmarshal(event.Data, payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s payload: %w", event.Type, err)
	}
	return payload, nil
}
