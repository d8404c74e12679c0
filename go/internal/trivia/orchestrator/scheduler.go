package orchestrator

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

// timerKind names what a room timer does when it fires.
type timerKind string

const (
	timerQuestionTimeout timerKind = "question_timeout"
	timerNextQuestion    timerKind = "next_question"
	timerEviction        timerKind = "eviction"
)

// timerToken identifies the timer a callback belongs to. A callback whose
// token no longer matches the room is stale and does nothing.
type timerToken struct {
	roomID string
	index  int
	gen    uint64
	kind   timerKind
}

// scheduleQuestionTimeout settles the current question when its time runs out.
func (o *Orchestrator) scheduleQuestionTimeout(r *room.Room) {
	o.schedule(r, timerQuestionTimeout, o.config.QuestionDuration)
}

// scheduleNextQuestion opens the next question after the pause.
func (o *Orchestrator) scheduleNextQuestion(r *room.Room) {
	o.schedule(r, timerNextQuestion, o.config.InterQuestionPause)
}

// scheduleEviction removes a finished room after the grace period.
func (o *Orchestrator) scheduleEviction(r *room.Room) {
	o.schedule(r, timerEviction, o.config.FinishedRoomTTL)
}

// schedule replaces the room's pending timer with a one-shot timer of the
// given kind. The room lock must be held.
func (o *Orchestrator) schedule(r *room.Room, kind timerKind, d time.Duration) {
	index := r.CurrentIndex()
	r.ArmTimer(func(gen uint64) clockwork.Timer {
		token := timerToken{roomID: r.ID(), index: index, gen: gen, kind: kind}
		return o.clock.AfterFunc(d, func() { o.fire(token) })
	})

	log.Debug().
		Str("room_id", r.ID()).
		Str("timer", string(kind)).
		Int("question_index", index).
		Dur("duration", d).
		Msg("scheduled one-shot timer")
}

// fire runs a timer callback under the room lock.
func (o *Orchestrator) fire(token timerToken) {
	r, err := o.lockRoom(token.roomID)
	if err != nil {
		log.Debug().
			Str("room_id", token.roomID).
			Str("timer", string(token.kind)).
			Msg("timer fired for missing room")
		return
	}
	defer r.Unlock()

	if !o.tokenCurrent(r, token) {
		log.Debug().
			Str("room_id", token.roomID).
			Str("timer", string(token.kind)).
			Int("question_index", token.index).
			Msg("stale timer ignored")
		return
	}
	r.ClearTimer()

	switch token.kind {
	case timerQuestionTimeout:
		o.processAnswers(r)
	case timerNextQuestion:
		o.openQuestion(r)
	case timerEviction:
		o.evict(r)
	}
}

func (o *Orchestrator) tokenCurrent(r *room.Room, token timerToken) bool {
	if !r.TimerCurrent(token.gen) || r.CurrentIndex() != token.index {
		return false
	}

	switch token.kind {
	case timerQuestionTimeout:
		return r.Status() == room.StatusPlaying && r.QuestionOpen()
	case timerNextQuestion:
		return r.Status() == room.StatusPlaying && !r.QuestionOpen()
	case timerEviction:
		return r.Status() == room.StatusFinished
	default:
		return false
	}
}
