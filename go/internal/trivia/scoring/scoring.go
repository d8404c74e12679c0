// Package scoring turns answer correctness and latency into points.
package scoring

import (
	"sort"
	"time"
)

const (
	// BasePoints is awarded for every correct answer.
	BasePoints = 1000
	// DefaultSpeedBonusMax is the speed bonus for an instant correct answer.
	DefaultSpeedBonusMax = 1000
)

// positionBonus is indexed by rank among correct responders.
var positionBonus = [...]int{500, 300, 100}

// Engine computes points for a single question.
type Engine struct {
	speedBonusMax int
}

// NewEngine creates a scoring engine. A non-positive speedBonusMax falls back
// to DefaultSpeedBonusMax.
func NewEngine(speedBonusMax int) *Engine {
	if speedBonusMax <= 0 {
		speedBonusMax = DefaultSpeedBonusMax
	}
	return &Engine{speedBonusMax: speedBonusMax}
}

// SpeedBonusMax returns the configured speed bonus ceiling.
func (e *Engine) SpeedBonusMax() int {
	return e.speedBonusMax
}

// Points returns the points earned for one answer. Elapsed time is clamped to
// [0, duration]; rank is the zero-based order among correct responders.
func (e *Engine) Points(correct bool, elapsed, duration time.Duration, rank int) int {
	if !correct {
		return 0
	}

	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > duration {
		elapsed = duration
	}

	// floor((1 - t/T) * max), in integer nanoseconds
	speed := 0
	if duration > 0 {
		speed = int(int64(e.speedBonusMax) * int64(duration-elapsed) / int64(duration))
	}

	return BasePoints + speed + PositionBonus(rank)
}

// PositionBonus returns the bonus for finishing at the given rank.
func PositionBonus(rank int) int {
	if rank < 0 || rank >= len(positionBonus) {
		return 0
	}
	return positionBonus[rank]
}

// Response is one player's settled answer to a question.
type Response struct {
	PlayerID string
	Correct  bool
	Elapsed  time.Duration
}

// Award is the outcome of settling one Response.
type Award struct {
	PlayerID string
	Correct  bool
	Rank     int // -1 when incorrect
	Points   int
}

// Settle ranks correct responses by elapsed time and scores every response.
// Responses must be given in join order; ties keep that order. The returned
// awards are in the same order as the input.
func (e *Engine) Settle(responses []Response, duration time.Duration) []Award {
	correct := make([]int, 0, len(responses))
	for i, r := range responses {
		if r.Correct {
			correct = append(correct, i)
		}
	}
	sort.SliceStable(correct, func(a, b int) bool {
		return responses[correct[a]].Elapsed < responses[correct[b]].Elapsed
	})

	ranks := make(map[int]int, len(correct))
	for rank, idx := range correct {
		ranks[idx] = rank
	}

	awards := make([]Award, len(responses))
	for i, r := range responses {
		rank, ok := ranks[i]
		if !ok {
			awards[i] = Award{PlayerID: r.PlayerID, Rank: -1}
			continue
		}
		awards[i] = Award{
			PlayerID: r.PlayerID,
			Correct:  true,
			Rank:     rank,
			Points:   e.Points(true, r.Elapsed, duration, rank),
		}
	}
	return awards
}
