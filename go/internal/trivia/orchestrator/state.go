package orchestrator

import (
	"time"

	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

// RoomState is a point-in-time view of a room for inspection endpoints.
type RoomState struct {
	RoomID           string          `json:"room_id"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	Players          []room.Player   `json:"players"`
	PlayerCount      int             `json:"player_count"`
	ReadyCount       int             `json:"ready_count"`
	Capacity         int             `json:"capacity"`
	QuestionNumber   int             `json:"question_number,omitempty"`
	TotalQuestions   int             `json:"total_questions"`
	TimeRemainingSec *int            `json:"time_remaining_sec,omitempty"`
	Scores           []room.Standing `json:"scores"`
	FinishedAt       *time.Time      `json:"finished_at,omitempty"`
}

// Stats summarizes the orchestrator's live rooms.
type Stats struct {
	ActiveRooms int            `json:"active_rooms"`
	ByStatus    map[string]int `json:"by_status"`
	RoomIDs     []string       `json:"room_ids"`
}

// RoomState returns a snapshot of one room.
func (o *Orchestrator) RoomState(roomID string) (*RoomState, error) {
	r, err := o.lockRoom(roomID)
	if err != nil {
		return nil, err
	}
	defer r.Unlock()

	state := &RoomState{
		RoomID:         r.ID(),
		Status:         string(r.Status()),
		CreatedAt:      r.CreatedAt(),
		Players:        r.Players(),
		PlayerCount:    r.PlayerCount(),
		ReadyCount:     r.ReadyCount(),
		Capacity:       r.Capacity(),
		TotalQuestions: r.TotalQuestions(),
		Scores:         r.Standings(),
	}

	if r.Status() == room.StatusPlaying && r.QuestionOpen() {
		state.QuestionNumber = r.CurrentIndex() + 1
		deadline := r.QuestionStartedAt().Add(o.config.QuestionDuration)
		remaining := int(deadline.Sub(o.clock.Now()).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		state.TimeRemainingSec = &remaining
	}
	if r.Status() == room.StatusFinished {
		finishedAt := r.FinishedAt()
		state.FinishedAt = &finishedAt
	}

	return state, nil
}

// Stats returns counts of live rooms by status.
func (o *Orchestrator) Stats() Stats {
	ids := o.registry.IDs()
	stats := Stats{
		ByStatus: make(map[string]int),
		RoomIDs:  make([]string, 0, len(ids)),
	}

	for _, id := range ids {
		r, err := o.lockRoom(id)
		if err != nil {
			continue
		}
		stats.ByStatus[string(r.Status())]++
		r.Unlock()
		stats.RoomIDs = append(stats.RoomIDs, id)
	}
	stats.ActiveRooms = len(stats.RoomIDs)
	return stats
}
