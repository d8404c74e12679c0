package relay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/triviaroom/go/internal/trivia/events"
)

// runJetStream starts an embedded JetStream-enabled server on a random port.
func runJetStream(t *testing.T) string {
	t.Helper()
	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      server.RANDOM_PORT,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	require.NoError(t, err)

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns.ClientURL()
}

func testJetStreamConfig(url string) JetStreamConfig {
	cfg := DefaultJetStreamConfig()
	cfg.URL = url
	cfg.StreamName = "TRIVIA_TEST"
	cfg.SubjectPrefix = "trivia.test"
	cfg.MaxReconnects = 0
	return cfg
}

func openStream(t *testing.T, url, name string) jetstream.Stream {
	t.Helper()
	nc, err := nats.Connect(url)
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	require.NoError(t, err)
	stream, err := js.Stream(context.Background(), name)
	require.NoError(t, err)
	return stream
}

func streamMsgs(t *testing.T, stream jetstream.Stream) uint64 {
	t.Helper()
	info, err := stream.Info(context.Background())
	require.NoError(t, err)
	return info.State.Msgs
}

func TestJetStreamPublisher_PublishesToRoomSubject(t *testing.T) {
	url := runJetStream(t)
	cfg := testJetStreamConfig(url)

	pub, err := NewJetStreamPublisher(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })
	require.True(t, pub.Connected())

	stream := openStream(t, url, cfg.StreamName)
	require.Equal(t, []string{"trivia.test.>"}, stream.CachedInfo().Config.Subjects)

	event := newEvent(t, "ABC234", events.EventTypeRoomCreated)
	require.NoError(t, pub.Publish(context.Background(), event))

	msg, err := stream.GetLastMsgForSubject(context.Background(), "trivia.test.ABC234.room-created")
	require.NoError(t, err)
	assert.Equal(t, event.ID, msg.Header.Get(HeaderEventID))
	assert.Equal(t, "room-created", msg.Header.Get(HeaderEventType))
	assert.Equal(t, "ABC234", msg.Header.Get(HeaderRoomID))

	var got events.RoomEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, event.RoomID, got.RoomID)
	assert.JSONEq(t, string(event.Data), string(got.Data))
}

func TestJetStreamPublisher_RetriedEventIsDeduplicated(t *testing.T) {
	url := runJetStream(t)
	cfg := testJetStreamConfig(url)

	pub, err := NewJetStreamPublisher(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	first := newEvent(t, "ABC234", events.EventTypeRoomCreated)
	require.NoError(t, pub.Publish(context.Background(), first))
	require.NoError(t, pub.Publish(context.Background(), first))
	require.NoError(t, pub.Publish(context.Background(), newEvent(t, "XYZ789", events.EventTypeRoomCreated)))

	stream := openStream(t, url, cfg.StreamName)
	require.Equal(t, uint64(2), streamMsgs(t, stream))
}

func TestJetStreamPublisher_UpdatesExistingStreamLimits(t *testing.T) {
	url := runJetStream(t)
	cfg := testJetStreamConfig(url)

	first, err := NewJetStreamPublisher(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Publish(context.Background(), newEvent(t, "ABC234", events.EventTypeRoomCreated)))
	require.NoError(t, first.Close())

	cfg.MaxAge = time.Hour
	second, err := NewJetStreamPublisher(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	stream := openStream(t, url, cfg.StreamName)
	require.Equal(t, time.Hour, stream.CachedInfo().Config.MaxAge)
	require.Equal(t, uint64(1), streamMsgs(t, stream), "redeclaring keeps stored events")
}

func TestJetStreamPublisher_ConnectFailure(t *testing.T) {
	cfg := testJetStreamConfig("nats://127.0.0.1:1")
	_, err := NewJetStreamPublisher(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "connect to NATS")
}

func TestRelay_ShipsToJetStream(t *testing.T) {
	url := runJetStream(t)
	cfg := testJetStreamConfig(url)

	pub, err := NewJetStreamPublisher(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pub.Close() })

	counters := &Counters{}
	inner := &recordingBroadcaster{}
	r := New(inner, pub, counters)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	r.BroadcastToRoom("ABC234", newEvent(t, "ABC234", events.EventTypeRoomCreated))
	r.BroadcastToRoom("ABC234", newEvent(t, "ABC234", events.EventTypeRoomCreated))

	stream := openStream(t, url, cfg.StreamName)
	require.Eventually(t, func() bool {
		info, err := stream.Info(context.Background())
		return err == nil && info.State.Msgs == 2
	}, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return counters.Snapshot().Published == 2
	}, time.Second, 10*time.Millisecond)
	inner.mu.Lock()
	defer inner.mu.Unlock()
	assert.Len(t, inner.broadcasts, 2)
}
