// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/mcdev12/triviaroom/go/internal/trivia/orchestrator"
	"github.com/mcdev12/triviaroom/go/internal/trivia/relay"
)

type Config struct {
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	MaxPlayers         int           `envconfig:"MAX_PLAYERS" default:"5"`
	QuestionsPerGame   int           `envconfig:"QUESTIONS_PER_GAME" default:"10"`
	QuestionDuration   time.Duration `envconfig:"QUESTION_DURATION" default:"20s"`
	InterQuestionPause time.Duration `envconfig:"INTER_QUESTION_PAUSE" default:"1s"`
	FinishedRoomTTL    time.Duration `envconfig:"FINISHED_ROOM_TTL" default:"5m"`
	SpeedBonusMax      int           `envconfig:"SPEED_BONUS_MAX" default:"1000"`

	// QUESTION_BANK_PATH points at a YAML or JSON bank; empty uses the built-in one
	QuestionBankPath string `envconfig:"QUESTION_BANK_PATH"`
	// ALLOWED_ORIGINS is a comma-separated list; empty allows any origin
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	// NATS_URL enables the event relay when set
	NATSURL           string `envconfig:"NATS_URL"`
	NATSStream        string `envconfig:"NATS_STREAM" default:"TRIVIA_EVENTS"`
	NATSSubjectPrefix string `envconfig:"NATS_SUBJECT_PREFIX" default:"trivia.events"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env: %w", err)
	}
	cfg.AllowedOrigins = lo.Compact(lo.Map(cfg.AllowedOrigins, func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not a valid level", c.LogLevel))
	}
	if c.MaxPlayers < 1 {
		errs = append(errs, fmt.Errorf("MAX_PLAYERS must be positive, got %d", c.MaxPlayers))
	}
	if c.QuestionsPerGame < 1 {
		errs = append(errs, fmt.Errorf("QUESTIONS_PER_GAME must be positive, got %d", c.QuestionsPerGame))
	}
	if c.QuestionDuration <= 0 {
		errs = append(errs, fmt.Errorf("QUESTION_DURATION must be positive, got %s", c.QuestionDuration))
	}
	if c.InterQuestionPause < 0 {
		errs = append(errs, fmt.Errorf("INTER_QUESTION_PAUSE must not be negative, got %s", c.InterQuestionPause))
	}
	if c.FinishedRoomTTL <= 0 {
		errs = append(errs, fmt.Errorf("FINISHED_ROOM_TTL must be positive, got %s", c.FinishedRoomTTL))
	}
	if c.SpeedBonusMax < 0 {
		errs = append(errs, fmt.Errorf("SPEED_BONUS_MAX must not be negative, got %d", c.SpeedBonusMax))
	}
	if c.NATSURL != "" && (c.NATSStream == "" || c.NATSSubjectPrefix == "") {
		errs = append(errs, errors.New("NATS_STREAM and NATS_SUBJECT_PREFIX are required when NATS_URL is set"))
	}
	return errors.Join(errs...)
}

// ZerologLevel returns the configured log level, defaulting to info.
func (c Config) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// RelayEnabled reports whether room events should be mirrored to NATS.
func (c Config) RelayEnabled() bool {
	return c.NATSURL != ""
}

func (c Config) Orchestrator() orchestrator.Config {
	return orchestrator.Config{
		MaxPlayers:         c.MaxPlayers,
		QuestionsPerGame:   c.QuestionsPerGame,
		QuestionDuration:   c.QuestionDuration,
		InterQuestionPause: c.InterQuestionPause,
		FinishedRoomTTL:    c.FinishedRoomTTL,
		SpeedBonusMax:      c.SpeedBonusMax,
	}
}

func (c Config) JetStream() relay.JetStreamConfig {
	js := relay.DefaultJetStreamConfig()
	js.URL = c.NATSURL
	js.StreamName = c.NATSStream
	js.SubjectPrefix = c.NATSSubjectPrefix
	return js
}
