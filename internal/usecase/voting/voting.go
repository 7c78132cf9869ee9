package usecase_voting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/scrumpoker/core/internal/model"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrEmptyStory     = errors.New("story description is required")
	ErrInvalidCard    = errors.New("vote value is not in the deck")
	ErrNotParticipant = errors.New("voter is not a room participant")
	ErrRoundNotActive = errors.New("no voting round in progress")
	ErrInternal       = errors.New("internal error")
)

// RoundRepository mutates a room's voting round atomically with
// respect to the rest of the room state.
//
//go:generate mockery --name=RoundRepository --output=./mocks/voting/repository --filename=repository.go
type RoundRepository interface {
	// StartRound clears votes, sets the story and moves to voting.
	StartRound(ctx context.Context, code string, story string) (model.Room, error)
	// SetVote records (or overwrites) a participant's vote; returns
	// ErrRoundNotActive outside the voting state and
	// ErrNotParticipant for a non-member.
	SetVote(ctx context.Context, code string, participantID string, value string) (model.Room, error)
	// Reveal moves voting to revealed and returns the room holding
	// the vote snapshot. Calling it again while revealed returns the
	// same snapshot.
	Reveal(ctx context.Context, code string) (model.Room, error)
	// Reset clears votes and the story, back to waiting.
	Reset(ctx context.Context, code string) (model.Room, error)
}

type Usecase struct {
	repo RoundRepository
}

func New(repo RoundRepository) *Usecase {
	return &Usecase{repo: repo}
}

// Start begins a round for the given story. A round may be restarted
// from any state; prior votes are discarded. Host privilege is a
// client-side display convention and is not enforced here.
func (u *Usecase) Start(ctx context.Context, code string, story string) (model.Room, error) {
	story = strings.TrimSpace(story)
	if story == "" {
		return model.Room{}, ErrEmptyStory
	}

	room, err := u.repo.StartRound(ctx, code, story)
	if err != nil {
		return model.Room{}, wrap(err)
	}
	return room, nil
}

// Submit records a vote; last write wins. The value is validated
// against the deck so arbitrary client input never reaches averages.
func (u *Usecase) Submit(ctx context.Context, code string, participantID string, value string) (model.Room, error) {
	if !model.ValidCard(value) {
		return model.Room{}, fmt.Errorf("%w: %q", ErrInvalidCard, value)
	}

	room, err := u.repo.SetVote(ctx, code, participantID, value)
	if err != nil {
		return model.Room{}, wrap(err)
	}
	return room, nil
}

// Reveal exposes every vote recorded so far and the derived summary.
// A partial vote set is allowed; waiting for everyone is the host's
// call, not the state machine's.
func (u *Usecase) Reveal(ctx context.Context, code string) (model.Room, model.RoundSummary, error) {
	room, err := u.repo.Reveal(ctx, code)
	if err != nil {
		return model.Room{}, model.RoundSummary{}, wrap(err)
	}
	return room, Summarize(room.Votes, len(room.Participants)), nil
}

func (u *Usecase) Reset(ctx context.Context, code string) (model.Room, error) {
	room, err := u.repo.Reset(ctx, code)
	if err != nil {
		return model.Room{}, wrap(err)
	}
	return room, nil
}

func wrap(err error) error {
	switch {
	case errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrRoundNotActive),
		errors.Is(err, ErrNotParticipant):
		return err
	default:
		return errors.Join(ErrInternal, err)
	}
}

// Summarize recomputes the derived round facts from a vote set.
func Summarize(votes map[string]string, participantCount int) model.RoundSummary {
	s := model.RoundSummary{
		VoteCount:        len(votes),
		ParticipantCount: participantCount,
	}

	var sum float64
	var numeric int
	consensus := len(votes) > 0
	var first string
	seen := false
	for _, v := range votes {
		if n, ok := model.NumericCard(v); ok {
			sum += n
			numeric++
		}
		if !seen {
			first = v
			seen = true
		}
		if v != first || v == model.HiddenCard {
			consensus = false
		}
	}

	if numeric > 0 {
		avg := sum / float64(numeric)
		s.Average = &avg
	}
	s.Consensus = consensus
	return s
}
