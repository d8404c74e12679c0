package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/triviaroom/go/internal/trivia/events"
	"github.com/mcdev12/triviaroom/go/internal/trivia/questions"
	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

// recorded is one event captured by fakeBroadcaster. Exactly one of roomID
// (broadcast) or connID (direct send) is set.
type recorded struct {
	roomID string
	connID string
	event  *events.RoomEvent
}

type fakeBroadcaster struct {
	mu      sync.Mutex
	subs    map[string]map[string]bool
	dropped []string
	events  []recorded
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{subs: make(map[string]map[string]bool)}
}

func (f *fakeBroadcaster) Subscribe(roomID, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[roomID] == nil {
		f.subs[roomID] = make(map[string]bool)
	}
	f.subs[roomID][connID] = true
}

func (f *fakeBroadcaster) Unsubscribe(roomID, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs[roomID], connID)
}

func (f *fakeBroadcaster) DropRoom(roomID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, roomID)
	f.dropped = append(f.dropped, roomID)
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, event *events.RoomEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recorded{roomID: roomID, event: event})
}

func (f *fakeBroadcaster) SendToConnection(connID string, event *events.RoomEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recorded{connID: connID, event: event})
}

func (f *fakeBroadcaster) subscribed(roomID, connID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subs[roomID][connID]
}

func (f *fakeBroadcaster) ofType(eventType events.EventType) []recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recorded
	for _, r := range f.events {
		if r.event.Type == eventType {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeBroadcaster) types() []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.EventType, len(f.events))
	for i, r := range f.events {
		out[i] = r.event.Type
	}
	return out
}

func (f *fakeBroadcaster) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

// staticSupply always hands out the same questions in order.
type staticSupply []questions.Question

func (s staticSupply) Draw(n int) []questions.Question {
	if n > len(s) {
		n = len(s)
	}
	out := make([]questions.Question, n)
	copy(out, s[:n])
	return out
}

type harness struct {
	t     *testing.T
	req   *require.Assertions
	clock *clockwork.FakeClock
	reg   *room.Registry
	bc    *fakeBroadcaster
	orch  *Orchestrator
}

func newHarness(t *testing.T, qs ...questions.Question) *harness {
	t.Helper()
	if len(qs) == 0 {
		qs = []questions.Question{
			{ID: 1, Prompt: "Capital of France?", Answer: "Paris"},
			{ID: 2, Prompt: "Red planet?", Answer: "Mars"},
		}
	}

	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	config := DefaultConfig()
	reg := room.NewRegistry(config.MaxPlayers, clock)
	bc := newFakeBroadcaster()

	return &harness{
		t:     t,
		req:   require.New(t),
		clock: clock,
		reg:   reg,
		bc:    bc,
		orch:  NewOrchestrator(config, reg, staticSupply(qs), bc, clock),
	}
}

// advance waits for the room timer to be armed, then moves the clock.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	h.req.NoError(h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(d)
}

// waitFor blocks until n events of the given type have been recorded.
func (h *harness) waitFor(eventType events.EventType, n int) []recorded {
	h.t.Helper()
	h.req.Eventually(func() bool {
		return len(h.bc.ofType(eventType)) >= n
	}, 2*time.Second, 5*time.Millisecond, "waiting for %d %s events", n, eventType)
	return h.bc.ofType(eventType)
}

// createAndJoin makes a room with the given players in join order.
func (h *harness) createAndJoin(players ...string) string {
	h.t.Helper()
	roomID, err := h.orch.CreateRoom(players[0])
	h.req.NoError(err)
	for _, p := range players {
		h.req.NoError(h.orch.JoinRoom(p, roomID, "name-"+p))
	}
	return roomID
}

// startGame readies every player.
func (h *harness) startGame(roomID string, players ...string) {
	h.t.Helper()
	for _, p := range players {
		h.req.NoError(h.orch.Ready(p, roomID))
	}
}

func payload[T any](t *testing.T, r recorded) *T {
	t.Helper()
	p, err := events.ParseEventPayload(r.event)
	require.NoError(t, err)
	typed, ok := p.(*T)
	require.True(t, ok, "unexpected payload type %T", p)
	return typed
}
