// Package events holds the wire types exchanged with clients.
package events

import (
	"github.com/mcdev12/triviaroom/go/internal/trivia/questions"
	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

// QuestionView is a question as shown to players while it is open.
type QuestionView struct {
	ID     int    `json:"id"`
	Prompt string `json:"question"`
}

// NewQuestionView hides the answer of q.
func NewQuestionView(q questions.Question) QuestionView {
	return QuestionView{ID: q.ID, Prompt: q.Prompt}
}

type RoomCreatedPayload struct {
	RoomID string `json:"roomId"`
}

type JoinedRoomPayload struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type RosterUpdatePayload struct {
	Players     []room.Player `json:"players"`
	PlayerCount int           `json:"playerCount"`
	ReadyCount  int           `json:"readyCount"`
}

type ReadyUpdatePayload struct {
	ReadyCount   int  `json:"readyCount"`
	TotalPlayers int  `json:"totalPlayers"`
	AllReady     bool `json:"allReady"`
}

type RoundStartedPayload struct {
	Question       QuestionView `json:"question"`
	QuestionNumber int          `json:"questionNumber"`
	TotalQuestions int          `json:"totalQuestions"`
}

type QuestionOpenedPayload struct {
	Question        QuestionView `json:"question"`
	QuestionNumber  int          `json:"questionNumber"`
	TotalQuestions  int          `json:"totalQuestions"`
	TimeLeftSeconds int          `json:"timeLeftSeconds"`
}

// LiveScoresPayload carries standings before the open question is settled.
type LiveScoresPayload struct {
	Scores []room.Standing `json:"scores"`
}

type QuestionSettledPayload struct {
	CorrectAnswer string                `json:"correctAnswer"`
	Scores        []room.QuestionResult `json:"scores"`
}

// GameFinishedPayload reveals every question with its answer.
type GameFinishedPayload struct {
	Results   []room.FinalResult   `json:"results"`
	Questions []questions.Question `json:"questions"`
}

type PlayerLeftPayload struct {
	Players     []room.Player `json:"players"`
	PlayerCount int           `json:"playerCount"`
}

type AnswerReceivedPayload struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate,omitempty"`
}

type RejectedPayload struct {
	Reason  room.Reason `json:"reason"`
	Message string      `json:"message"`
}
