package room

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameNotInProgress  = errors.New("game not in progress")
	ErrNotInRoom          = errors.New("player not in room")
	ErrInvalidRequest     = errors.New("invalid request")
)

// Reason is the machine-readable cause sent to clients in a rejection.
type Reason string

const (
	ReasonRoomNotFound       Reason = "RoomNotFound"
	ReasonRoomFull           Reason = "RoomFull"
	ReasonGameAlreadyStarted Reason = "GameAlreadyStarted"
	ReasonGameNotInProgress  Reason = "GameNotInProgress"
	ReasonNotInRoom          Reason = "NotInRoom"
	ReasonInvalidRequest     Reason = "InvalidRequest"
)

// ReasonFor maps an error returned by this package to its rejection reason.
// Unknown errors are reported as invalid requests.
func ReasonFor(err error) Reason {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return ReasonRoomNotFound
	case errors.Is(err, ErrRoomFull):
		return ReasonRoomFull
	case errors.Is(err, ErrGameAlreadyStarted):
		return ReasonGameAlreadyStarted
	case errors.Is(err, ErrGameNotInProgress):
		return ReasonGameNotInProgress
	case errors.Is(err, ErrNotInRoom):
		return ReasonNotInRoom
	default:
		return ReasonInvalidRequest
	}
}
