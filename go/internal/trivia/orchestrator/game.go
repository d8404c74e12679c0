package orchestrator

import (
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviaroom/go/internal/trivia/events"
	"github.com/mcdev12/triviaroom/go/internal/trivia/questions"
	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

// startGame draws the questions and opens the first one. The room lock must be held.
func (o *Orchestrator) startGame(r *room.Room) {
	qs := o.supply.Draw(o.config.QuestionsPerGame)
	if len(qs) == 0 {
		qs = questions.Placeholders(o.config.QuestionsPerGame)
	}

	if err := r.Start(qs); err != nil {
		log.Error().Err(err).Str("room_id", r.ID()).Msg("failed to start game")
		return
	}

	first, _ := r.CurrentQuestion()
	o.broadcast(r.ID(), events.EventTypeRoundStarted, events.RoundStartedPayload{
		Question:       events.NewQuestionView(first),
		QuestionNumber: 1,
		TotalQuestions: r.TotalQuestions(),
	})
	o.broadcast(r.ID(), events.EventTypeLiveScores, events.LiveScoresPayload{Scores: r.Standings()})

	log.Info().
		Str("room_id", r.ID()).
		Int("players", r.PlayerCount()).
		Int("questions", r.TotalQuestions()).
		Msg("game started")

	o.openQuestion(r)
}

// openQuestion starts the timed phase of the current question. The room lock must be held.
func (o *Orchestrator) openQuestion(r *room.Room) {
	q, err := r.OpenQuestion(o.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("room_id", r.ID()).Msg("failed to open question")
		return
	}

	o.broadcast(r.ID(), events.EventTypeQuestionOpened, events.QuestionOpenedPayload{
		Question:        events.NewQuestionView(q),
		QuestionNumber:  r.CurrentIndex() + 1,
		TotalQuestions:  r.TotalQuestions(),
		TimeLeftSeconds: int(o.config.QuestionDuration.Seconds()),
	})

	o.scheduleQuestionTimeout(r)
}

// processAnswers settles the current question and moves the game on. The room
// lock must be held.
func (o *Orchestrator) processAnswers(r *room.Room) {
	correctAnswer, results, err := r.Settle(o.scorer, o.config.QuestionDuration)
	if err != nil {
		log.Error().Err(err).Str("room_id", r.ID()).Msg("failed to settle question")
		return
	}

	o.broadcast(r.ID(), events.EventTypeQuestionSettled, events.QuestionSettledPayload{
		CorrectAnswer: correctAnswer,
		Scores:        results,
	})

	log.Debug().
		Str("room_id", r.ID()).
		Int("question_index", r.CurrentIndex()).
		Msg("question settled")

	if r.Advance() {
		o.finishGame(r)
		o.scheduleEviction(r)
		return
	}
	o.scheduleNextQuestion(r)
}

// finishGame publishes the final results. The room lock must be held.
func (o *Orchestrator) finishGame(r *room.Room) {
	results, err := r.Finish(o.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("room_id", r.ID()).Msg("failed to finish game")
		return
	}
	r.CancelTimer()

	o.broadcast(r.ID(), events.EventTypeGameFinished, events.GameFinishedPayload{
		Results:   results,
		Questions: r.Questions(),
	})

	log.Info().
		Str("room_id", r.ID()).
		Int("participants", len(results)).
		Msg("game finished")
}
