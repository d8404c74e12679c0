package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviaroom/go/internal/trivia/events"
)

// Headers set on every relayed message so consumers can route without
// decoding the body.
const (
	HeaderEventID   = "Event-ID"
	HeaderEventType = "Event-Type"
	HeaderRoomID    = "Room-ID"
)

// JetStreamConfig describes the connection and the stream room events land in.
type JetStreamConfig struct {
	URL           string
	StreamName    string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
	// Retention limits of the stream.
	MaxAge   time.Duration
	MaxMsgs  int64
	Replicas int
	// Republishing an event ID inside this window is a no-op.
	DuplicateWindow time.Duration
}

func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "TRIVIA_EVENTS",
		SubjectPrefix:   "trivia.events",
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		MaxAge:          24 * time.Hour,
		MaxMsgs:         -1,
		Replicas:        1,
		DuplicateWindow: 2 * time.Minute,
	}
}

// Stream is the stream definition derived from the config.
func (c JetStreamConfig) Stream() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        c.StreamName,
		Description: "Trivia room events",
		Subjects:    []string{c.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		Storage:     jetstream.FileStorage,
		MaxAge:      c.MaxAge,
		MaxMsgs:     c.MaxMsgs,
		Replicas:    c.Replicas,
		Duplicates:  c.DuplicateWindow,
	}
}

func (c JetStreamConfig) connectOptions() []nats.Option {
	return []nats.Option{
		nats.Name("triviaroom-relay"),
		nats.MaxReconnects(c.MaxReconnects),
		nats.ReconnectWait(c.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Str("stream", c.StreamName).Msg("relay lost NATS connection")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("relay reconnected to NATS")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("relay NATS async error")
		}),
	}
}

// Publisher ships room events to an external bus.
type Publisher interface {
	Publish(ctx context.Context, event *events.RoomEvent) error
}

// JetStreamPublisher writes room events to a JetStream stream, one subject
// per room and event type.
type JetStreamPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

// NewJetStreamPublisher connects and makes sure the stream exists with the
// configured limits.
func NewJetStreamPublisher(cfg JetStreamConfig) (*JetStreamPublisher, error) {
	nc, err := nats.Connect(cfg.URL, cfg.connectOptions()...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", cfg.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("open JetStream: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := js.CreateOrUpdateStream(ctx, cfg.Stream())
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("declare stream %s: %w", cfg.StreamName, err)
	}
	info := stream.CachedInfo()
	log.Info().
		Str("stream", info.Config.Name).
		Uint64("messages", info.State.Msgs).
		Dur("max_age", info.Config.MaxAge).
		Msg("relay stream ready")

	return &JetStreamPublisher{nc: nc, js: js, config: cfg}, nil
}

// Publish writes one room event to <prefix>.<room>.<type>. The event ID is
// the JetStream message ID, so a retried publish is deduplicated server side.
func (p *JetStreamPublisher) Publish(ctx context.Context, event *events.RoomEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	msg := nats.NewMsg(Subject(p.config.SubjectPrefix, event))
	msg.Data = data
	msg.Header.Set(HeaderEventID, event.ID)
	msg.Header.Set(HeaderEventType, string(event.Type))
	msg.Header.Set(HeaderRoomID, event.RoomID)

	ack, err := p.js.PublishMsg(ctx, msg,
		jetstream.WithMsgID(event.ID),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish %s for room %s: %w", event.Type, event.RoomID, err)
	}

	log.Debug().
		Str("subject", msg.Subject).
		Str("event_id", event.ID).
		Uint64("sequence", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("relayed room event")
	return nil
}

// Connected reports whether the NATS connection is up.
func (p *JetStreamPublisher) Connected() bool {
	return p.nc != nil && p.nc.IsConnected()
}

// Close drains in-flight publishes before closing the connection.
func (p *JetStreamPublisher) Close() error {
	if p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

// Subject builds the subject a room event is published on.
func Subject(prefix string, event *events.RoomEvent) string {
	return fmt.Sprintf("%s.%s.%s", prefix, event.RoomID, event.Type)
}
