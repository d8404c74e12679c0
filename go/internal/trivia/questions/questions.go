// Package questions provides the question supply used to build a game.
package questions

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

//go:embed default_bank.yaml
var defaultBankData []byte

// Question is a prompt together with its acceptable answer.
type Question struct {
	ID     int    `yaml:"id" json:"id"`
	Prompt string `yaml:"question" json:"question"`
	Answer string `yaml:"answer" json:"answer"`
}

// Supply hands out questions for a new game.
type Supply interface {
	Draw(n int) []Question
}

// Bank is an in-memory question pool. Draw returns a shuffled selection.
type Bank struct {
	questions []Question

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewBank creates a bank over the given questions. Entries without a prompt
// or an answer are skipped.
func NewBank(qs []Question, rng *rand.Rand) *Bank {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	valid := make([]Question, 0, len(qs))
	for i, q := range qs {
		q.Prompt = strings.TrimSpace(q.Prompt)
		q.Answer = strings.TrimSpace(q.Answer)
		if q.Prompt == "" || q.Answer == "" {
			log.Warn().Int("index", i).Msg("skipping question without prompt or answer")
			continue
		}
		if q.ID == 0 {
			q.ID = i + 1
		}
		valid = append(valid, q)
	}

	return &Bank{questions: valid, rng: rng}
}

// LoadBank reads a YAML (or JSON) list of questions from path.
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}

	bank, err := parseBank(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse question bank %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("questions", bank.Len()).Msg("loaded question bank")
	return bank, nil
}

// DefaultBank returns the bank compiled into the binary.
func DefaultBank() (*Bank, error) {
	bank, err := parseBank(defaultBankData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default question bank: %w", err)
	}
	return bank, nil
}

// bankEntry is one question as written in a bank file. The prompt may be
// keyed either "question" or "prompt".
type bankEntry struct {
	ID       int    `yaml:"id"`
	Question string `yaml:"question"`
	Prompt   string `yaml:"prompt"`
	Answer   string `yaml:"answer"`
}

func parseBank(data []byte) (*Bank, error) {
	var entries []bankEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	qs := make([]Question, len(entries))
	for i, e := range entries {
		prompt := e.Question
		if strings.TrimSpace(prompt) == "" {
			prompt = e.Prompt
		}
		qs[i] = Question{ID: e.ID, Prompt: prompt, Answer: e.Answer}
	}
	return NewBank(qs, nil), nil
}

// Len returns the number of usable questions in the bank.
func (b *Bank) Len() int {
	return len(b.questions)
}

// Draw returns up to n questions in random order. An empty bank yields n
// placeholder questions so a game can still be played.
func (b *Bank) Draw(n int) []Question {
	if n <= 0 {
		return nil
	}
	if len(b.questions) == 0 {
		log.Warn().Int("count", n).Msg("question bank empty, using placeholder questions")
		return Placeholders(n)
	}

	shuffled := make([]Question, len(b.questions))
	copy(shuffled, b.questions)

	b.rngMu.Lock()
	b.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	b.rngMu.Unlock()

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

// Placeholders builds n numbered stand-in questions.
func Placeholders(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{
			ID:     i + 1,
			Prompt: fmt.Sprintf("Question %d - This is a placeholder question.", i+1),
			Answer: fmt.Sprintf("Answer %d", i+1),
		}
	}
	return qs
}
