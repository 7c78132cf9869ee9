// Package infra_memory_room is the single in-memory authority for live
// rooms. Every operation runs under one lock, so each is atomic with
// respect to the room map and no torn state is observable.
package infra_memory_room

import (
	"context"
	"sync"
	"time"

	"github.com/scrumpoker/core/internal/model"
	usecase_room "github.com/scrumpoker/core/internal/usecase/room"
	usecase_voting "github.com/scrumpoker/core/internal/usecase/voting"
)

type Store struct {
	mu    sync.RWMutex
	rooms map[string]*model.Room
}

func New() *Store {
	return &Store{
		rooms: make(map[string]*model.Room),
	}
}

func (s *Store) Create(_ context.Context, room model.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rooms[room.Code]; exists {
		return usecase_room.ErrCodeConflict
	}
	r := room.Clone()
	s.rooms[room.Code] = &r
	return nil
}

func (s *Store) ByCode(_ context.Context, code string) (model.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[code]
	if !ok {
		return model.Room{}, usecase_room.ErrRoomNotFound
	}
	return room.Clone(), nil
}

func (s *Store) List(_ context.Context) ([]model.RoomSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.RoomSummary, 0, len(s.rooms))
	for _, room := range s.rooms {
		summaries = append(summaries, room.Summary())
	}
	return summaries, nil
}

func (s *Store) AddParticipant(_ context.Context, code string, p model.Participant) (model.RoomSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return model.RoomSummary{}, usecase_room.ErrRoomNotFound
	}
	if len(room.Participants) >= room.MaxParticipants {
		return model.RoomSummary{}, usecase_room.ErrRoomFull
	}
	if room.HasParticipant(p.ID) {
		return model.RoomSummary{}, usecase_room.ErrAlreadyJoined
	}

	room.Participants = append(room.Participants, p)
	return room.Summary(), nil
}

func (s *Store) RemoveParticipant(_ context.Context, code string, participantID string) (model.RoomSummary, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return model.RoomSummary{}, false, usecase_room.ErrRoomNotFound
	}

	idx := -1
	for i, p := range room.Participants {
		if p.ID == participantID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.RoomSummary{}, false, usecase_room.ErrParticipantNotFound
	}

	room.Participants = append(room.Participants[:idx], room.Participants[idx+1:]...)
	delete(room.Votes, participantID)

	// An empty room never outlives its last member.
	if len(room.Participants) == 0 {
		delete(s.rooms, code)
		return model.RoomSummary{}, true, nil
	}
	return room.Summary(), false, nil
}

func (s *Store) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[code]; !ok {
		return usecase_room.ErrRoomNotFound
	}
	delete(s.rooms, code)
	return nil
}

func (s *Store) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for code, room := range s.rooms {
		if room.CreatedAt.Before(cutoff) {
			delete(s.rooms, code)
			removed++
		}
	}
	return removed, nil
}

// Voting round transitions. These back usecase_voting.RoundRepository
// and share the same lock as the membership operations above.

func (s *Store) StartRound(_ context.Context, code string, story string) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return model.Room{}, usecase_voting.ErrRoomNotFound
	}

	room.CurrentStory = story
	room.Votes = make(map[string]string)
	room.Status = model.StatusVoting
	return room.Clone(), nil
}

func (s *Store) SetVote(_ context.Context, code string, participantID string, value string) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return model.Room{}, usecase_voting.ErrRoomNotFound
	}
	if room.Status != model.StatusVoting {
		return model.Room{}, usecase_voting.ErrRoundNotActive
	}
	if !room.HasParticipant(participantID) {
		return model.Room{}, usecase_voting.ErrNotParticipant
	}

	room.Votes[participantID] = value
	return room.Clone(), nil
}

func (s *Store) Reveal(_ context.Context, code string) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return model.Room{}, usecase_voting.ErrRoomNotFound
	}
	// Revealing an already revealed round returns the same snapshot:
	// votes are frozen because SetVote rejects everything after the
	// transition out of voting.
	if room.Status != model.StatusVoting && room.Status != model.StatusRevealed {
		return model.Room{}, usecase_voting.ErrRoundNotActive
	}

	room.Status = model.StatusRevealed
	return room.Clone(), nil
}

func (s *Store) Reset(_ context.Context, code string) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return model.Room{}, usecase_voting.ErrRoomNotFound
	}

	room.CurrentStory = ""
	room.Votes = make(map[string]string)
	room.Status = model.StatusWaiting
	return room.Clone(), nil
}
