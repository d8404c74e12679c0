package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

func TestDecodeCommand(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Command
	}{
		{
			name: "create room without data",
			raw:  `{"type":"create-room"}`,
			want: Command{Type: CommandCreateRoom},
		},
		{
			name: "join room normalizes code",
			raw:  `{"type":"join-room","data":{"roomId":" abc123 ","displayName":"Ada"}}`,
			want: Command{Type: CommandJoinRoom, RoomID: "ABC123", DisplayName: "Ada"},
		},
		{
			name: "ready",
			raw:  `{"type":"ready","data":{"roomId":"ABC123"}}`,
			want: Command{Type: CommandReady, RoomID: "ABC123"},
		},
		{
			name: "submit answer allows empty text",
			raw:  `{"type":"submit-answer","data":{"roomId":"ABC123","answerText":""}}`,
			want: Command{Type: CommandSubmitAnswer, RoomID: "ABC123"},
		},
		{
			name: "leave room",
			raw:  `{"type":"leave-room","data":{"roomId":"ABC123"}}`,
			want: Command{Type: CommandLeaveRoom, RoomID: "ABC123"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeCommand([]byte(tc.raw))
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeCommand_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":             `{`,
		"unknown type":         `{"type":"dance"}`,
		"missing data":         `{"type":"join-room"}`,
		"missing display name": `{"type":"join-room","data":{"roomId":"ABC123"}}`,
		"missing room id":      `{"type":"ready","data":{}}`,
		"wrong field type":     `{"type":"ready","data":{"roomId":42}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCommand([]byte(raw))
			require.ErrorIs(t, err, room.ErrInvalidRequest)
		})
	}
}

func TestNewRoomEvent(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	event, err := NewRoomEvent("ABC123", EventTypeReadyUpdate, ReadyUpdatePayload{ReadyCount: 2, TotalPlayers: 3}, at)
	req.NoError(err)
	req.NotEmpty(event.ID)
	req.Equal("ABC123", event.RoomID)
	req.Equal(at, event.Timestamp)
	req.JSONEq(`{"readyCount":2,"totalPlayers":3,"allReady":false}`, string(event.Data))

	payload, err := ParseEventPayload(event)
	req.NoError(err)
	req.Equal(&ReadyUpdatePayload{ReadyCount: 2, TotalPlayers: 3}, payload)

	_, err = ParseEventPayload(&RoomEvent{Type: "mystery"})
	req.Error(err)
}
