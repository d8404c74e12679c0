package events

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

var validate = validator.New()

// CommandType is the type of an inbound client message.
type CommandType string

const (
	CommandCreateRoom   CommandType = "create-room"
	CommandJoinRoom     CommandType = "join-room"
	CommandReady        CommandType = "ready"
	CommandSubmitAnswer CommandType = "submit-answer"
	CommandLeaveRoom    CommandType = "leave-room"
)

// ClientMessage is the envelope of every inbound frame.
type ClientMessage struct {
	Type CommandType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type JoinRoomRequest struct {
	RoomID      string `json:"roomId" validate:"required,max=16"`
	DisplayName string `json:"displayName" validate:"required,max=32"`
}

type ReadyRequest struct {
	RoomID string `json:"roomId" validate:"required,max=16"`
}

type SubmitAnswerRequest struct {
	RoomID     string `json:"roomId" validate:"required,max=16"`
	AnswerText string `json:"answerText" validate:"max=256"`
}

type LeaveRoomRequest struct {
	RoomID string `json:"roomId" validate:"required,max=16"`
}

// Command is a decoded and validated client request.
type Command struct {
	Type        CommandType
	RoomID      string
	DisplayName string
	AnswerText  string
}

// DecodeCommand parses and validates a raw client frame. Failures wrap
// room.ErrInvalidRequest.
func DecodeCommand(raw []byte) (Command, error) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Command{}, fmt.Errorf("%w: malformed message: %v", room.ErrInvalidRequest, err)
	}

	cmd := Command{Type: msg.Type}
	switch msg.Type {
	case CommandCreateRoom:
		return cmd, nil

	case CommandJoinRoom:
		var req JoinRoomRequest
		if err := decodeData(msg, &req); err != nil {
			return Command{}, err
		}
		cmd.RoomID = room.NormalizeCode(req.RoomID)
		cmd.DisplayName = req.DisplayName

	case CommandReady:
		var req ReadyRequest
		if err := decodeData(msg, &req); err != nil {
			return Command{}, err
		}
		cmd.RoomID = room.NormalizeCode(req.RoomID)

	case CommandSubmitAnswer:
		var req SubmitAnswerRequest
		if err := decodeData(msg, &req); err != nil {
			return Command{}, err
		}
		cmd.RoomID = room.NormalizeCode(req.RoomID)
		cmd.AnswerText = req.AnswerText

	case CommandLeaveRoom:
		var req LeaveRoomRequest
		if err := decodeData(msg, &req); err != nil {
			return Command{}, err
		}
		cmd.RoomID = room.NormalizeCode(req.RoomID)

	default:
		return Command{}, fmt.Errorf("%w: unknown message type %q", room.ErrInvalidRequest, msg.Type)
	}

	return cmd, nil
}

func decodeData(msg ClientMessage, dst any) error {
	if len(msg.Data) == 0 {
		return fmt.Errorf("%w: %s requires data", room.ErrInvalidRequest, msg.Type)
	}
	if err := json.Unmarshal(msg.Data, dst); err != nil {
		return fmt.Errorf("%w: malformed %s data: %v", room.ErrInvalidRequest, msg.Type, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", room.ErrInvalidRequest, err)
	}
	return nil
}
