package model

import "time"

type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusVoting   RoomStatus = "voting"
	StatusRevealed RoomStatus = "revealed"
	StatusFinished RoomStatus = "finished"
)

const (
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	RoomCodeLength   = 6
)

type Participant struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Room struct {
	Code            string
	Name            string
	CreatedBy       string
	CreatedAt       time.Time
	MaxParticipants int
	Participants    []Participant
	Status          RoomStatus
	CurrentStory    string
	Votes           map[string]string
}

type RoomSummary struct {
	Code             string
	Name             string
	CreatedBy        string
	CreatedAt        time.Time
	MaxParticipants  int
	ParticipantCount int
	Status           RoomStatus
}

func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		Code:             r.Code,
		Name:             r.Name,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
		MaxParticipants:  r.MaxParticipants,
		ParticipantCount: len(r.Participants),
		Status:           r.Status,
	}
}

func (r *Room) HasParticipant(id string) bool {
	for _, p := range r.Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never share the participant
// slice or the vote map with the live room held by the store.
func (r *Room) Clone() Room {
	out := *r
	out.Participants = make([]Participant, len(r.Participants))
	copy(out.Participants, r.Participants)
	out.Votes = make(map[string]string, len(r.Votes))
	for id, v := range r.Votes {
		out.Votes[id] = v
	}
	return out
}
