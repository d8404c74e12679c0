package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviaroom/go/internal/config"
	"github.com/mcdev12/triviaroom/go/internal/trivia/admin"
	"github.com/mcdev12/triviaroom/go/internal/trivia/gateway"
	"github.com/mcdev12/triviaroom/go/internal/trivia/orchestrator"
	"github.com/mcdev12/triviaroom/go/internal/trivia/questions"
	"github.com/mcdev12/triviaroom/go/internal/trivia/relay"
	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

type Services struct {
	Orchestrator *orchestrator.Orchestrator
	Gateway      *gateway.Service
	Admin        *admin.Service
	Relay        *relay.Relay // nil when NATS_URL is unset
	RelayHealth  *relay.HealthChecker

	publisher *relay.JetStreamPublisher
}

func setupServices(cfg config.Config, bank *questions.Bank) (*Services, error) {
	// Wire up dependency injection chain
	// Connections → (relay) → Orchestrator → Gateway / Admin
	clock := clockwork.NewRealClock()
	orchConfig := cfg.Orchestrator()

	connConfig := gateway.DefaultConnectionConfig()
	connConfig.CheckOrigin = gateway.OriginChecker(cfg.AllowedOrigins)
	connections := gateway.NewConnectionManager(connConfig)

	services := &Services{}

	var broadcaster orchestrator.Broadcaster = connections
	counters := &relay.Counters{}
	if cfg.RelayEnabled() {
		publisher, err := relay.NewJetStreamPublisher(cfg.JetStream())
		if err != nil {
			return nil, fmt.Errorf("failed to create event relay: %w", err)
		}
		services.publisher = publisher
		services.Relay = relay.New(connections, publisher, counters)
		services.RelayHealth = relay.NewHealthChecker(services.Relay, publisher, counters)
		broadcaster = services.Relay
		log.Info().
			Str("stream", cfg.NATSStream).
			Str("subject_prefix", cfg.NATSSubjectPrefix).
			Msg("event relay enabled")
	}

	registry := room.NewRegistry(orchConfig.MaxPlayers, clock)
	services.Orchestrator = orchestrator.NewOrchestrator(orchConfig, registry, bank, broadcaster, clock)
	connections.SetHandler(services.Orchestrator)

	services.Gateway = gateway.NewService(connections, services.Orchestrator)

	services.Admin = admin.NewService(services.Orchestrator)
	services.Admin.AddStatsSource("connections", func() any {
		return services.Gateway.GetStats()
	})
	if services.Relay != nil {
		services.Admin.AddStatsSource("relay", func() any {
			return counters.Snapshot()
		})
	}

	return services, nil
}

// Start runs background workers until ctx is cancelled.
func (s *Services) Start(ctx context.Context) {
	go s.Gateway.Start(ctx)
	if s.Relay != nil {
		go s.Relay.Run(ctx)
	}
}

func (s *Services) Close() {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close event relay")
	}
}
