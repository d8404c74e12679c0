package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/triviaroom/go/internal/trivia/events"
	"github.com/mcdev12/triviaroom/go/internal/trivia/orchestrator"
	"github.com/mcdev12/triviaroom/go/internal/trivia/questions"
	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

type testServer struct {
	srv  *httptest.Server
	cm   *ConnectionManager
	orch *orchestrator.Orchestrator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := clockwork.NewFakeClock()
	config := orchestrator.DefaultConfig()
	registry := room.NewRegistry(config.MaxPlayers, clock)

	cm := NewConnectionManager(DefaultConnectionConfig())
	orch := orchestrator.NewOrchestrator(config, registry, questions.NewBank(questions.Placeholders(3), nil), cm, clock)
	cm.SetHandler(orch)

	svc := NewService(cm, orch)
	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)

	ctx, cancel := context.WithCancel(context.Background())
	go svc.Start(ctx)

	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return &testServer{srv: srv, cm: cm, orch: orch}
}

func (s *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msgType events.CommandType, data any) {
	t.Helper()
	msg := map[string]any{"type": msgType}
	if data != nil {
		msg["data"] = data
	}
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil reads events until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, eventType events.EventType) *events.RoomEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var event events.RoomEvent
		require.NoError(t, conn.ReadJSON(&event))
		if event.Type == eventType {
			return &event
		}
	}
}

func decode[T any](t *testing.T, event *events.RoomEvent) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(event.Data, &out))
	return out
}

func TestGateway_RoomFlow(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	// Given a host that creates and joins a room
	host := s.dial(t)
	send(t, host, events.CommandCreateRoom, nil)
	created := decode[events.RoomCreatedPayload](t, readUntil(t, host, events.EventTypeRoomCreated))
	req.Len(created.RoomID, room.CodeLength)

	send(t, host, events.CommandJoinRoom, events.JoinRoomRequest{RoomID: created.RoomID, DisplayName: "Host"})
	joined := readUntil(t, host, events.EventTypeJoinedRoom)
	req.Equal(created.RoomID, joined.RoomID)

	// When a guest joins
	guest := s.dial(t)
	send(t, guest, events.CommandJoinRoom, events.JoinRoomRequest{RoomID: created.RoomID, DisplayName: "Guest"})
	readUntil(t, guest, events.EventTypeJoinedRoom)

	// Then the host sees the updated roster
	var roster events.RosterUpdatePayload
	for roster.PlayerCount < 2 {
		roster = decode[events.RosterUpdatePayload](t, readUntil(t, host, events.EventTypeRosterUpdate))
	}
	req.Equal("Guest", roster.Players[1].DisplayName)

	// And the room state is visible over HTTP
	resp, err := http.Get(s.srv.URL + "/api/rooms/" + created.RoomID)
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
	var state orchestrator.RoomState
	req.NoError(json.NewDecoder(resp.Body).Decode(&state))
	req.Equal(2, state.PlayerCount)
	req.Equal("waiting", state.Status)

	// When the guest drops
	guest.Close()

	// Then the host is told
	left := decode[events.PlayerLeftPayload](t, readUntil(t, host, events.EventTypePlayerLeft))
	req.Equal(1, left.PlayerCount)
}

func TestGateway_GameStartsOverWebSocket(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	host := s.dial(t)
	send(t, host, events.CommandCreateRoom, nil)
	roomID := decode[events.RoomCreatedPayload](t, readUntil(t, host, events.EventTypeRoomCreated)).RoomID
	send(t, host, events.CommandJoinRoom, events.JoinRoomRequest{RoomID: roomID, DisplayName: "Solo"})
	send(t, host, events.CommandReady, events.ReadyRequest{RoomID: roomID})

	opened := decode[events.QuestionOpenedPayload](t, readUntil(t, host, events.EventTypeQuestionOpened))
	req.Equal(1, opened.QuestionNumber)
	req.Equal(3, opened.TotalQuestions)
	req.Equal(20, opened.TimeLeftSeconds)

	send(t, host, events.CommandSubmitAnswer, events.SubmitAnswerRequest{RoomID: roomID, AnswerText: "whatever"})
	ack := decode[events.AnswerReceivedPayload](t, readUntil(t, host, events.EventTypeAnswerReceived))
	req.True(ack.Received)
}

func TestGateway_RejectsInvalidFrames(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)
	conn := s.dial(t)

	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	rejected := decode[events.RejectedPayload](t, readUntil(t, conn, events.EventTypeRejected))
	req.Equal(room.ReasonInvalidRequest, rejected.Reason)

	send(t, conn, events.CommandJoinRoom, events.JoinRoomRequest{RoomID: "ZZZZZZ", DisplayName: "Nobody"})
	rejected = decode[events.RejectedPayload](t, readUntil(t, conn, events.EventTypeRejected))
	req.Equal(room.ReasonRoomNotFound, rejected.Reason)
}

func TestGateway_StatsAndMissingRoom(t *testing.T) {
	req := require.New(t)
	s := newTestServer(t)

	conn := s.dial(t)
	send(t, conn, events.CommandCreateRoom, nil)
	readUntil(t, conn, events.EventTypeRoomCreated)

	resp, err := http.Get(s.srv.URL + "/ws/stats")
	req.NoError(err)
	defer resp.Body.Close()
	var stats ConnectionStats
	req.NoError(json.NewDecoder(resp.Body).Decode(&stats))
	req.Equal(1, stats.TotalConnections)
	req.Equal(1, stats.ActiveRooms)

	resp, err = http.Get(s.srv.URL + "/api/rooms")
	req.NoError(err)
	defer resp.Body.Close()
	var roomStats orchestrator.Stats
	req.NoError(json.NewDecoder(resp.Body).Decode(&roomStats))
	req.Equal(1, roomStats.ActiveRooms)

	resp, err = http.Get(s.srv.URL + "/api/rooms/NOPE42")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	req := require.New(t)
	check := OriginChecker([]string{"https://play.example.com/"})

	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.True(check(r), "requests without an Origin header are allowed")

	r.Header.Set("Origin", "https://play.example.com")
	req.True(check(r))

	r.Header.Set("Origin", "https://evil.example.com")
	req.False(check(r))

	req.True(OriginChecker([]string{"*"})(r))
	req.True(OriginChecker(nil)(r))
}
