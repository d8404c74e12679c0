package room

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/triviaroom/go/internal/trivia/questions"
	"github.com/mcdev12/triviaroom/go/internal/trivia/scoring"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func newPlayer(id string) Player {
	return Player{ID: id, DisplayName: "name-" + id, JoinedAt: t0}
}

func playingRoom(t *testing.T, ids ...string) *Room {
	t.Helper()
	r := New("ABCDEF", 5, t0)
	for _, id := range ids {
		_, err := r.AddPlayer(newPlayer(id))
		require.NoError(t, err)
	}
	require.NoError(t, r.Start([]questions.Question{
		{ID: 1, Prompt: "Capital of France?", Answer: "Paris"},
		{ID: 2, Prompt: "Red planet?", Answer: "Mars"},
	}))
	return r
}

func TestRoom_AddPlayer(t *testing.T) {
	req := require.New(t)
	r := New("ABCDEF", 2, t0)

	added, err := r.AddPlayer(newPlayer("a"))
	req.NoError(err)
	req.True(added)

	// Re-adding is a no-op
	added, err = r.AddPlayer(newPlayer("a"))
	req.NoError(err)
	req.False(added)

	_, err = r.AddPlayer(newPlayer("b"))
	req.NoError(err)

	_, err = r.AddPlayer(newPlayer("c"))
	req.ErrorIs(err, ErrRoomFull)
	req.Equal(2, r.PlayerCount())
	req.Equal(0, r.Score("a"))
}

func TestRoom_AddPlayerAfterStart(t *testing.T) {
	r := playingRoom(t, "a")

	_, err := r.AddPlayer(newPlayer("b"))
	require.ErrorIs(t, err, ErrGameAlreadyStarted)
}

func TestRoom_ReadyAndRemove(t *testing.T) {
	req := require.New(t)
	r := New("ABCDEF", 5, t0)
	_, _ = r.AddPlayer(newPlayer("a"))
	_, _ = r.AddPlayer(newPlayer("b"))

	req.ErrorIs(r.MarkReady("ghost"), ErrNotInRoom)
	req.NoError(r.MarkReady("a"))
	req.NoError(r.MarkReady("a"))
	req.Equal(1, r.ReadyCount())
	req.False(r.AllReady())

	// When the unready player leaves
	req.True(r.RemovePlayer("b"))

	// Then everyone left is ready
	req.True(r.AllReady())
	req.False(r.RemovePlayer("b"))

	// Removing the ready player clears the flag too
	req.True(r.RemovePlayer("a"))
	req.Equal(0, r.ReadyCount())
	req.False(r.AllReady())
	req.True(r.IsEmpty())
}

func TestRoom_StartClearsReady(t *testing.T) {
	req := require.New(t)
	r := New("ABCDEF", 5, t0)
	_, _ = r.AddPlayer(newPlayer("a"))
	req.NoError(r.MarkReady("a"))

	req.NoError(r.Start(questions.Placeholders(3)))
	req.Equal(StatusPlaying, r.Status())
	req.Equal(0, r.ReadyCount())
	req.Equal(3, r.TotalQuestions())
	req.ErrorIs(r.Start(nil), ErrGameAlreadyStarted)
	req.ErrorIs(r.MarkReady("a"), ErrGameAlreadyStarted)
}

func TestRoom_SubmitFirstWins(t *testing.T) {
	req := require.New(t)
	r := playingRoom(t, "a", "b")

	// Before the question opens answers are not taken
	out, err := r.Submit("a", "Paris", t0)
	req.NoError(err)
	req.Equal(SubmitClosed, out)

	_, err = r.OpenQuestion(t0)
	req.NoError(err)

	out, err = r.Submit("a", "Paris", t0.Add(3*time.Second))
	req.NoError(err)
	req.Equal(SubmitAccepted, out)

	out, err = r.Submit("a", "London", t0.Add(4*time.Second))
	req.NoError(err)
	req.Equal(SubmitDuplicate, out)

	sub, ok := r.Submission("a", 0)
	req.True(ok)
	req.Equal(Submission{Text: "Paris", Elapsed: 3 * time.Second}, sub)

	_, err = r.Submit("ghost", "Paris", t0)
	req.ErrorIs(err, ErrNotInRoom)
}

func TestRoom_SubmitClampsNegativeElapsed(t *testing.T) {
	r := playingRoom(t, "a")
	_, err := r.OpenQuestion(t0)
	require.NoError(t, err)

	_, err = r.Submit("a", "Paris", t0.Add(-time.Second))
	require.NoError(t, err)

	sub, _ := r.Submission("a", 0)
	require.Equal(t, time.Duration(0), sub.Elapsed)
}

func TestRoom_SubmitWhenNotPlaying(t *testing.T) {
	r := New("ABCDEF", 5, t0)
	_, _ = r.AddPlayer(newPlayer("a"))

	_, err := r.Submit("a", "x", t0)
	require.ErrorIs(t, err, ErrGameNotInProgress)
}

func TestRoom_SettleAndFinish(t *testing.T) {
	req := require.New(t)
	engine := scoring.NewEngine(scoring.DefaultSpeedBonusMax)
	r := playingRoom(t, "a", "b", "c")

	// Question 1: b answers first, a second, c wrong
	_, err := r.OpenQuestion(t0)
	req.NoError(err)
	_, _ = r.Submit("b", "paris", t0.Add(2*time.Second))
	_, _ = r.Submit("a", " PARIS ", t0.Add(10*time.Second))
	_, _ = r.Submit("c", "London", t0.Add(time.Second))

	answer, results, err := r.Settle(engine, 20*time.Second)
	req.NoError(err)
	req.Equal("Paris", answer)
	req.False(r.QuestionOpen())
	req.Len(results, 3)
	req.Equal("b", results[0].PlayerID)
	req.Equal(1000+900+500, results[0].Score)
	req.True(results[0].AnsweredCorrectly)
	req.Equal("a", results[1].PlayerID)
	req.Equal(1000+500+300, results[1].Score)
	req.Equal("c", results[2].PlayerID)
	req.Equal(0, results[2].Score)
	req.False(results[2].AnsweredCorrectly)

	req.False(r.Advance())

	// Question 2: b leaves, nobody answers
	r.RemovePlayer("b")
	_, err = r.OpenQuestion(t0.Add(25 * time.Second))
	req.NoError(err)
	_, results, err = r.Settle(engine, 20*time.Second)
	req.NoError(err)
	req.Len(results, 3, "participants who left still appear on the scoreboard")

	req.True(r.Advance())
	req.True(r.Advance(), "advancing past the end stays finished")

	final, err := r.Finish(t0.Add(time.Minute))
	req.NoError(err)
	req.Equal(StatusFinished, r.Status())
	req.True(r.QuestionStartedAt().IsZero())
	req.Len(final, 3)
	req.Equal("b", final[0].PlayerID)
	req.Equal([]string{"paris", ""}, final[0].Answers)
	req.Equal([]string{"London", ""}, final[2].Answers)

	_, err = r.Finish(t0)
	req.ErrorIs(err, ErrGameNotInProgress)
}

func TestRoom_StandingsStableOnTies(t *testing.T) {
	req := require.New(t)
	r := New("ABCDEF", 5, t0)
	for _, id := range []string{"x", "y", "z"} {
		_, _ = r.AddPlayer(newPlayer(id))
	}
	r.scores["z"] = 10

	got := r.Standings()
	req.Equal([]string{"z", "x", "y"}, []string{got[0].PlayerID, got[1].PlayerID, got[2].PlayerID})
}

func TestRoom_OpenQuestionResetsSlot(t *testing.T) {
	req := require.New(t)
	r := playingRoom(t, "a")

	_, _ = r.OpenQuestion(t0)
	_, _ = r.Submit("a", "Paris", t0)

	_, err := r.OpenQuestion(t0.Add(time.Second))
	req.NoError(err)
	_, ok := r.Submission("a", 0)
	req.False(ok)
}

func TestRoom_Timers(t *testing.T) {
	req := require.New(t)
	clock := clockwork.NewFakeClock()
	r := New("ABCDEF", 5, t0)

	var first uint64
	r.ArmTimer(func(gen uint64) clockwork.Timer {
		first = gen
		return clock.NewTimer(time.Second)
	})
	req.True(r.TimerCurrent(first))

	var second uint64
	r.ArmTimer(func(gen uint64) clockwork.Timer {
		second = gen
		return clock.NewTimer(time.Second)
	})
	req.False(r.TimerCurrent(first))
	req.True(r.TimerCurrent(second))

	r.CancelTimer()
	req.False(r.TimerCurrent(second))
}
