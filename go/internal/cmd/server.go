package main

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/triviaroom/go/internal/config"
	"github.com/mcdev12/triviaroom/go/internal/trivia/gateway"
)

func setupServer(cfg config.Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Register gateway routes (WebSocket and REST)
	services.Gateway.RegisterRoutes(mux)

	// Register admin service and reflection
	services.Admin.RegisterRoutes(mux)

	// Add health check endpoints
	setupHealthCheck(mux)
	if services.RelayHealth != nil {
		mux.Handle("/health/relay", services.RelayHealth)
	}

	// Wrap with CORS
	handler := gateway.NewCORS(cfg.AllowedOrigins).Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
