package main

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviaroom/go/internal/trivia/questions"
)

// loadQuestionBank reads the bank at path, or the built-in bank when path is empty.
func loadQuestionBank(path string) (*questions.Bank, error) {
	if path == "" {
		bank, err := questions.DefaultBank()
		if err != nil {
			return nil, fmt.Errorf("failed to load built-in question bank: %w", err)
		}
		log.Info().Int("questions", bank.Len()).Msg("using built-in question bank")
		return bank, nil
	}

	bank, err := questions.LoadBank(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}
	if bank.Len() == 0 {
		log.Warn().Str("path", path).Msg("question bank is empty, games will use placeholder questions")
	}
	return bank, nil
}
