package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviaroom/go/internal/trivia/events"
	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

var rejectMessages = map[room.Reason]string{
	room.ReasonRoomNotFound:       "Room not found",
	room.ReasonRoomFull:           "Room is full",
	room.ReasonGameAlreadyStarted: "Game has already started",
	room.ReasonGameNotInProgress:  "Game is not in progress",
	room.ReasonNotInRoom:          "You are not a player in this room",
	room.ReasonInvalidRequest:     "Invalid request",
}

// HandleMessage decodes a raw client frame and handles it. Malformed frames
// are rejected back to the sender.
func (o *Orchestrator) HandleMessage(ctx context.Context, connID string, raw []byte) error {
	cmd, err := events.DecodeCommand(raw)
	if err != nil {
		o.reject(connID, "", err)
		return nil
	}
	return o.HandleCommand(ctx, connID, cmd)
}

// HandleCommand routes a decoded command. Rule violations are sent to the
// caller as rejections and do not produce an error; only internal failures do.
func (o *Orchestrator) HandleCommand(ctx context.Context, connID string, cmd events.Command) error {
	log.Debug().
		Str("connection_id", connID).
		Str("command", string(cmd.Type)).
		Str("room_id", cmd.RoomID).
		Msg("handling command")

	var err error
	switch cmd.Type {
	case events.CommandCreateRoom:
		_, err = o.CreateRoom(connID)
	case events.CommandJoinRoom:
		err = o.JoinRoom(connID, cmd.RoomID, cmd.DisplayName)
	case events.CommandReady:
		err = o.Ready(connID, cmd.RoomID)
	case events.CommandSubmitAnswer:
		err = o.SubmitAnswer(connID, cmd.RoomID, cmd.AnswerText)
	case events.CommandLeaveRoom:
		err = o.LeaveRoom(connID, cmd.RoomID)
	default:
		err = fmt.Errorf("%w: unknown command %q", room.ErrInvalidRequest, cmd.Type)
	}

	if err == nil {
		return nil
	}
	if isRejection(err) {
		o.reject(connID, cmd.RoomID, err)
		return nil
	}
	return fmt.Errorf("failed to handle %s: %w", cmd.Type, err)
}

func (o *Orchestrator) reject(connID, roomID string, err error) {
	reason := room.ReasonFor(err)
	log.Debug().
		Err(err).
		Str("connection_id", connID).
		Str("room_id", roomID).
		Str("reason", string(reason)).
		Msg("request rejected")

	o.send(connID, roomID, events.EventTypeRejected, events.RejectedPayload{
		Reason:  reason,
		Message: rejectMessages[reason],
	})
}

func isRejection(err error) bool {
	for _, target := range []error{
		room.ErrRoomNotFound,
		room.ErrRoomFull,
		room.ErrGameAlreadyStarted,
		room.ErrGameNotInProgress,
		room.ErrNotInRoom,
		room.ErrInvalidRequest,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
