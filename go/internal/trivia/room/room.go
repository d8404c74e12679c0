package room

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"

	"github.com/mcdev12/triviaroom/go/internal/trivia/matcher"
	"github.com/mcdev12/triviaroom/go/internal/trivia/questions"
	"github.com/mcdev12/triviaroom/go/internal/trivia/scoring"
)

// Status is the lifecycle phase of a room. It only moves forward.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Player is a participant, identified by its connection id.
type Player struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"name"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Submission is the first answer a player gave to a question.
type Submission struct {
	Text    string
	Elapsed time.Duration
}

// Standing is one scoreboard line.
type Standing struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

// QuestionResult is one scoreboard line after a question is settled.
type QuestionResult struct {
	Standing
	AnsweredCorrectly bool `json:"answeredCorrectly"`
}

// FinalResult is one line of the end-of-game results.
type FinalResult struct {
	Standing
	Answers []string `json:"answers"`
}

// SubmitOutcome describes what happened to a submitted answer.
type SubmitOutcome int

const (
	SubmitAccepted SubmitOutcome = iota
	SubmitDuplicate
	// SubmitClosed means no question is open, e.g. during the pause between questions.
	SubmitClosed
)

// Room is one game session. All methods except ID, CreatedAt, Lock and Unlock
// must be called with the room lock held.
type Room struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	capacity  int

	status       Status
	players      []Player
	participants []Player
	ready        map[string]struct{}

	questions         []questions.Question
	currentIndex      int
	questionOpen      bool
	questionStartedAt time.Time
	finishedAt        time.Time

	answers map[string]map[int]Submission
	scores  map[string]int

	timer      clockwork.Timer
	generation uint64
}

// New creates an empty waiting room.
func New(id string, capacity int, now time.Time) *Room {
	return &Room{
		id:        id,
		createdAt: now,
		capacity:  capacity,
		status:    StatusWaiting,
		ready:     make(map[string]struct{}),
		answers:   make(map[string]map[int]Submission),
		scores:    make(map[string]int),
	}
}

func (r *Room) ID() string { return r.id }
func (r *Room) CreatedAt() time.Time { return r.createdAt }
func (r *Room) Lock() { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

func (r *Room) Status() Status { return r.status }
func (r *Room) Capacity() int { return r.capacity }
func (r *Room) PlayerCount() int { return len(r.players) }
func (r *Room) ReadyCount() int { return len(r.ready) }
func (r *Room) CurrentIndex() int { return r.currentIndex }
func (r *Room) TotalQuestions() int { return len(r.questions) }
func (r *Room) QuestionOpen() bool { return r.questionOpen }
func (r *Room) QuestionStartedAt() time.Time { return r.questionStartedAt }
func (r *Room) FinishedAt() time.Time { return r.finishedAt }
func (r *Room) IsEmpty() bool { return len(r.players) == 0 }

// Players returns a copy of the current roster in join order.
func (r *Room) Players() []Player {
	out := make([]Player, len(r.players))
	copy(out, r.players)
	return out
}

// Questions returns a copy of the questions drawn for this game.
func (r *Room) Questions() []questions.Question {
	out := make([]questions.Question, len(r.questions))
	copy(out, r.questions)
	return out
}

// CurrentQuestion returns the question at the current index.
func (r *Room) CurrentQuestion() (questions.Question, bool) {
	if r.currentIndex < 0 || r.currentIndex >= len(r.questions) {
		return questions.Question{}, false
	}
	return r.questions[r.currentIndex], true
}

// HasPlayer reports whether id is on the current roster.
func (r *Room) HasPlayer(id string) bool {
	return lo.ContainsBy(r.players, func(p Player) bool { return p.ID == id })
}

// Score returns the cumulative score of a player.
func (r *Room) Score(id string) int {
	return r.scores[id]
}

// Submission returns the answer a player gave at a question index.
func (r *Room) Submission(playerID string, index int) (Submission, bool) {
	s, ok := r.answers[playerID][index]
	return s, ok
}

// AddPlayer appends a player to a waiting room. Adding a player that is
// already on the roster is a no-op and reports false.
func (r *Room) AddPlayer(p Player) (bool, error) {
	if r.status != StatusWaiting {
		return false, ErrGameAlreadyStarted
	}
	if r.HasPlayer(p.ID) {
		return false, nil
	}
	if len(r.players) >= r.capacity {
		return false, ErrRoomFull
	}

	r.players = append(r.players, p)
	delete(r.ready, p.ID)
	if _, ok := r.scores[p.ID]; !ok {
		r.scores[p.ID] = 0
	}
	return true, nil
}

// RemovePlayer drops a player from the roster and the ready set. Scores and
// answers are kept.
func (r *Room) RemovePlayer(id string) bool {
	before := len(r.players)
	r.players = lo.Reject(r.players, func(p Player, _ int) bool { return p.ID == id })
	delete(r.ready, id)
	return len(r.players) != before
}

// MarkReady flags a player as ready.
func (r *Room) MarkReady(id string) error {
	if r.status != StatusWaiting {
		return ErrGameAlreadyStarted
	}
	if !r.HasPlayer(id) {
		return ErrNotInRoom
	}
	r.ready[id] = struct{}{}
	return nil
}

// AllReady reports whether a non-empty roster is entirely ready.
func (r *Room) AllReady() bool {
	return len(r.players) > 0 && len(r.ready) == len(r.players)
}

// Start moves a waiting room into play with the given questions.
func (r *Room) Start(qs []questions.Question) error {
	if r.status != StatusWaiting {
		return ErrGameAlreadyStarted
	}

	r.status = StatusPlaying
	r.questions = qs
	r.currentIndex = 0
	r.questionOpen = false
	r.ready = make(map[string]struct{})
	r.participants = r.Players()
	return nil
}

// OpenQuestion starts the timed phase for the current index and clears any
// answers recorded for it.
func (r *Room) OpenQuestion(now time.Time) (questions.Question, error) {
	q, ok := r.CurrentQuestion()
	if r.status != StatusPlaying || !ok {
		return questions.Question{}, ErrGameNotInProgress
	}

	for _, slots := range r.answers {
		delete(slots, r.currentIndex)
	}
	r.questionStartedAt = now
	r.questionOpen = true
	return q, nil
}

// Submit records a player's first answer to the open question.
func (r *Room) Submit(playerID, text string, now time.Time) (SubmitOutcome, error) {
	if r.status != StatusPlaying {
		return 0, ErrGameNotInProgress
	}
	if !r.HasPlayer(playerID) {
		return 0, ErrNotInRoom
	}
	if !r.questionOpen {
		return SubmitClosed, nil
	}

	slots, ok := r.answers[playerID]
	if !ok {
		slots = make(map[int]Submission)
		r.answers[playerID] = slots
	}
	if _, answered := slots[r.currentIndex]; answered {
		return SubmitDuplicate, nil
	}

	elapsed := now.Sub(r.questionStartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	slots[r.currentIndex] = Submission{Text: text, Elapsed: elapsed}
	return SubmitAccepted, nil
}

// Settle closes the current question, scores every matching answer and
// returns the correct answer with the ranked scoreboard. The index is not
// advanced; see Advance.
func (r *Room) Settle(engine *scoring.Engine, duration time.Duration) (string, []QuestionResult, error) {
	q, ok := r.CurrentQuestion()
	if r.status != StatusPlaying || !ok {
		return "", nil, ErrGameNotInProgress
	}
	r.questionOpen = false

	responses := make([]scoring.Response, 0, len(r.participants))
	for _, p := range r.participants {
		sub, answered := r.answers[p.ID][r.currentIndex]
		if !answered {
			continue
		}
		responses = append(responses, scoring.Response{
			PlayerID: p.ID,
			Correct:  matcher.Match(sub.Text, q.Answer),
			Elapsed:  sub.Elapsed,
		})
	}

	correct := make(map[string]bool, len(responses))
	for _, award := range engine.Settle(responses, duration) {
		if !award.Correct {
			continue
		}
		r.scores[award.PlayerID] += award.Points
		correct[award.PlayerID] = true
	}

	results := lo.Map(r.Standings(), func(s Standing, _ int) QuestionResult {
		return QuestionResult{Standing: s, AnsweredCorrectly: correct[s.PlayerID]}
	})
	return q.Answer, results, nil
}

// Advance moves to the next question and reports whether the game has run
// out of questions.
func (r *Room) Advance() bool {
	if r.currentIndex < len(r.questions) {
		r.currentIndex++
	}
	return r.currentIndex >= len(r.questions)
}

// Finish ends the game and returns the final ranked results.
func (r *Room) Finish(now time.Time) ([]FinalResult, error) {
	if r.status != StatusPlaying {
		return nil, ErrGameNotInProgress
	}
	r.status = StatusFinished
	r.questionOpen = false
	r.questionStartedAt = time.Time{}
	r.finishedAt = now

	return lo.Map(r.Standings(), func(s Standing, _ int) FinalResult {
		answers := make([]string, len(r.questions))
		for i := range answers {
			answers[i] = r.answers[s.PlayerID][i].Text
		}
		return FinalResult{Standing: s, Answers: answers}
	}), nil
}

// Standings returns the scoreboard ranked by score, highest first. Ties keep
// join order. Once a game has started the scoreboard covers everyone who
// started it, including players who have since left.
func (r *Room) Standings() []Standing {
	roster := r.players
	if r.status != StatusWaiting {
		roster = r.participants
	}

	out := lo.Map(roster, func(p Player, _ int) Standing {
		return Standing{PlayerID: p.ID, PlayerName: p.DisplayName, Score: r.scores[p.ID]}
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// ArmTimer stops any pending timer and installs the one returned by arm.
// arm receives the generation the new timer must carry; timers holding an
// older generation are stale.
func (r *Room) ArmTimer(arm func(gen uint64) clockwork.Timer) {
	r.stopTimer()
	r.generation++
	r.timer = arm(r.generation)
}

// CancelTimer stops the pending timer, if any, and invalidates it.
func (r *Room) CancelTimer() {
	r.stopTimer()
	r.generation++
}

// TimerCurrent reports whether gen belongs to the pending timer.
func (r *Room) TimerCurrent(gen uint64) bool {
	return r.timer != nil && gen == r.generation
}

// ClearTimer forgets the pending timer once it has fired.
func (r *Room) ClearTimer() {
	r.timer = nil
}

func (r *Room) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
