package orchestrator

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviaroom/go/internal/trivia/events"
	"github.com/mcdev12/triviaroom/go/internal/trivia/room"
)

// CreateRoom allocates a room and subscribes the creator's connection to it.
// The creator still has to join to become a player.
func (o *Orchestrator) CreateRoom(connID string) (string, error) {
	r, err := o.registry.Create()
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}

	r.Lock()
	prev, moved := o.registry.Bind(connID, r.ID())
	o.broadcaster.Subscribe(r.ID(), connID)
	o.send(connID, r.ID(), events.EventTypeRoomCreated, events.RoomCreatedPayload{RoomID: r.ID()})
	r.Unlock()

	log.Info().Str("room_id", r.ID()).Str("connection_id", connID).Msg("room created")

	if moved {
		o.leave(connID, prev)
	}
	return r.ID(), nil
}

// JoinRoom adds the connection as a player of a waiting room. Joining a room
// the connection already plays in is a no-op; joining another room leaves the
// previous one.
func (o *Orchestrator) JoinRoom(connID, roomID, displayName string) error {
	r, err := o.lockRoom(roomID)
	if err != nil {
		return err
	}

	added, err := r.AddPlayer(room.Player{
		ID:          connID,
		DisplayName: displayName,
		JoinedAt:    o.clock.Now(),
	})
	if err != nil {
		r.Unlock()
		return err
	}

	prev, moved := o.registry.Bind(connID, r.ID())
	o.broadcaster.Subscribe(r.ID(), connID)
	o.send(connID, r.ID(), events.EventTypeJoinedRoom, events.JoinedRoomPayload{RoomID: r.ID(), PlayerID: connID})
	if added {
		o.broadcast(r.ID(), events.EventTypeRosterUpdate, events.RosterUpdatePayload{
			Players:     r.Players(),
			PlayerCount: r.PlayerCount(),
			ReadyCount:  r.ReadyCount(),
		})
		log.Info().
			Str("room_id", r.ID()).
			Str("player_id", connID).
			Str("display_name", displayName).
			Int("player_count", r.PlayerCount()).
			Msg("player joined")
	}
	r.Unlock()

	// The previous room is left only after this one is released so that two
	// room locks are never held at once.
	if moved {
		o.leave(connID, prev)
	}
	return nil
}

// Ready marks a player ready and starts the game once every player is ready.
func (o *Orchestrator) Ready(connID, roomID string) error {
	r, err := o.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer r.Unlock()

	if err := r.MarkReady(connID); err != nil {
		return err
	}

	allReady := r.AllReady()
	o.broadcast(r.ID(), events.EventTypeReadyUpdate, events.ReadyUpdatePayload{
		ReadyCount:   r.ReadyCount(),
		TotalPlayers: r.PlayerCount(),
		AllReady:     allReady,
	})

	if allReady {
		o.startGame(r)
	}
	return nil
}

// SubmitAnswer records the player's first answer to the open question.
func (o *Orchestrator) SubmitAnswer(connID, roomID, answerText string) error {
	r, err := o.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer r.Unlock()

	outcome, err := r.Submit(connID, answerText, o.clock.Now())
	if err != nil {
		return err
	}

	switch outcome {
	case room.SubmitAccepted:
		o.send(connID, r.ID(), events.EventTypeAnswerReceived, events.AnswerReceivedPayload{Received: true})
		o.broadcast(r.ID(), events.EventTypeLiveScores, events.LiveScoresPayload{Scores: r.Standings()})
		log.Debug().
			Str("room_id", r.ID()).
			Str("player_id", connID).
			Int("question_index", r.CurrentIndex()).
			Msg("answer recorded")
	case room.SubmitDuplicate:
		o.send(connID, r.ID(), events.EventTypeAnswerReceived, events.AnswerReceivedPayload{Received: true, Duplicate: true})
	case room.SubmitClosed:
		o.send(connID, r.ID(), events.EventTypeAnswerReceived, events.AnswerReceivedPayload{Received: false})
	}
	return nil
}

// LeaveRoom removes the connection from a room it belongs to.
func (o *Orchestrator) LeaveRoom(connID, roomID string) error {
	bound, ok := o.registry.RoomOf(connID)
	if !ok || bound != room.NormalizeCode(roomID) {
		if _, err := o.registry.Get(roomID); err != nil {
			return err
		}
		return room.ErrNotInRoom
	}
	o.leave(connID, bound)
	return nil
}

// Disconnect handles a closed connection.
func (o *Orchestrator) Disconnect(connID string) {
	roomID, ok := o.registry.RoomOf(connID)
	if !ok {
		return
	}
	log.Debug().Str("connection_id", connID).Str("room_id", roomID).Msg("connection closed")
	o.leave(connID, roomID)
}

func (o *Orchestrator) leave(connID, roomID string) {
	r, err := o.lockRoom(roomID)
	if err != nil {
		o.registry.Unbind(connID, roomID)
		return
	}
	defer r.Unlock()

	o.registry.Unbind(connID, r.ID())
	o.broadcaster.Unsubscribe(r.ID(), connID)

	switch r.Status() {
	case room.StatusWaiting:
		if !r.RemovePlayer(connID) {
			if r.IsEmpty() {
				o.evict(r)
			}
			return
		}
		o.broadcastPlayerLeft(r, connID)
		if r.IsEmpty() {
			o.evict(r)
			return
		}

		allReady := r.AllReady()
		o.broadcast(r.ID(), events.EventTypeReadyUpdate, events.ReadyUpdatePayload{
			ReadyCount:   r.ReadyCount(),
			TotalPlayers: r.PlayerCount(),
			AllReady:     allReady,
		})
		if allReady {
			o.startGame(r)
		}

	case room.StatusPlaying:
		if r.RemovePlayer(connID) {
			o.broadcastPlayerLeft(r, connID)
		}
		if r.IsEmpty() {
			log.Info().Str("room_id", r.ID()).Msg("last player left mid-game, finishing")
			o.finishGame(r)
			o.evict(r)
		}

	case room.StatusFinished:
		// Results stay intact until the grace period ends.
	}
}

func (o *Orchestrator) broadcastPlayerLeft(r *room.Room, connID string) {
	o.broadcast(r.ID(), events.EventTypePlayerLeft, events.PlayerLeftPayload{
		Players:     r.Players(),
		PlayerCount: r.PlayerCount(),
	})
	log.Info().
		Str("room_id", r.ID()).
		Str("player_id", connID).
		Int("player_count", r.PlayerCount()).
		Msg("player left")
}
