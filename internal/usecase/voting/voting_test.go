package usecase_voting_test

import (
	"context"
	"testing"
	"time"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"

	infra_memory_room "github.com/scrumpoker/core/internal/infra/memory/room"
	"github.com/scrumpoker/core/internal/model"
	usecase_voting "github.com/scrumpoker/core/internal/usecase/voting"
)

type UsecaseVotingSuite struct {
	suite.Suite
}

type resources struct {
	store   *infra_memory_room.Store
	usecase *usecase_voting.Usecase
	ctx     context.Context
}

const roomCode = "ABC123"

func initResources(t provider.T, participantIDs ...string) *resources {
	store := infra_memory_room.New()

	participants := make([]model.Participant, 0, len(participantIDs))
	for _, id := range participantIDs {
		participants = append(participants, model.Participant{ID: id, Username: "user-" + id, JoinedAt: time.Now()})
	}
	err := store.Create(context.Background(), model.Room{
		Code:            roomCode,
		Name:            "Sprint Planning",
		CreatedBy:       participantIDs[0],
		CreatedAt:       time.Now(),
		MaxParticipants: 10,
		Participants:    participants,
		Status:          model.StatusWaiting,
		Votes:           make(map[string]string),
	})
	assert.NoError(t, err)

	return &resources{
		store:   store,
		usecase: usecase_voting.New(store),
		ctx:     context.Background(),
	}
}

func (s *UsecaseVotingSuite) TestStart(t provider.T) {
	t.Parallel()

	t.Run("Should move the room to voting and set the story", func(t provider.T) {
		r := initResources(t, "u1", "u2")

		room, err := r.usecase.Start(r.ctx, roomCode, "Login page")

		assert.NoError(t, err)
		assert.Equal(t, model.StatusVoting, room.Status)
		assert.Equal(t, "Login page", room.CurrentStory)
		assert.Empty(t, room.Votes)
	})

	t.Run("Should clear votes from the previous round", func(t provider.T) {
		r := initResources(t, "u1", "u2")
		_, err := r.usecase.Start(r.ctx, roomCode, "Login page")
		assert.NoError(t, err)
		_, err = r.usecase.Submit(r.ctx, roomCode, "u1", "5")
		assert.NoError(t, err)

		room, err := r.usecase.Start(r.ctx, roomCode, "Checkout flow")

		assert.NoError(t, err)
		assert.Empty(t, room.Votes)
		assert.Equal(t, "Checkout flow", room.CurrentStory)
	})

	t.Run("Should require a story", func(t provider.T) {
		r := initResources(t, "u1")
		_, err := r.usecase.Start(r.ctx, roomCode, "   ")
		assert.ErrorIs(t, err, usecase_voting.ErrEmptyStory)
	})

	t.Run("Should report a missing room", func(t provider.T) {
		r := initResources(t, "u1")
		_, err := r.usecase.Start(r.ctx, "NOHERE", "Login page")
		assert.ErrorIs(t, err, usecase_voting.ErrRoomNotFound)
	})
}

func (s *UsecaseVotingSuite) TestSubmit(t provider.T) {
	t.Parallel()

	t.Run("Should record a vote while voting is open", func(t provider.T) {
		r := initResources(t, "u1", "u2")
		_, err := r.usecase.Start(r.ctx, roomCode, "Login page")
		assert.NoError(t, err)

		room, err := r.usecase.Submit(r.ctx, roomCode, "u1", "5")

		assert.NoError(t, err)
		assert.Equal(t, map[string]string{"u1": "5"}, room.Votes)
	})

	t.Run("Should overwrite a resubmitted vote", func(t provider.T) {
		r := initResources(t, "u1")
		_, err := r.usecase.Start(r.ctx, roomCode, "Login page")
		assert.NoError(t, err)

		_, err = r.usecase.Submit(r.ctx, roomCode, "u1", "5")
		assert.NoError(t, err)
		room, err := r.usecase.Submit(r.ctx, roomCode, "u1", "13")
		assert.NoError(t, err)

		assert.Equal(t, map[string]string{"u1": "13"}, room.Votes)
	})

	t.Run("Should reject votes outside the deck", func(t provider.T) {
		r := initResources(t, "u1")
		_, err := r.usecase.Start(r.ctx, roomCode, "Login page")
		assert.NoError(t, err)

		for _, v := range []string{"4", "banana", "", "0.25", "hidden"} {
			_, err := r.usecase.Submit(r.ctx, roomCode, "u1", v)
			assert.ErrorIs(t, err, usecase_voting.ErrInvalidCard, "value %q", v)
		}
	})

	t.Run("Should reject votes before a round starts", func(t provider.T) {
		r := initResources(t, "u1")
		_, err := r.usecase.Submit(r.ctx, roomCode, "u1", "5")
		assert.ErrorIs(t, err, usecase_voting.ErrRoundNotActive)
	})

	t.Run("Should reject votes from non-members", func(t provider.T) {
		r := initResources(t, "u1")
		_, err := r.usecase.Start(r.ctx, roomCode, "Login page")
		assert.NoError(t, err)

		_, err = r.usecase.Submit(r.ctx, roomCode, "stranger", "5")
		assert.ErrorIs(t, err, usecase_voting.ErrNotParticipant)
	})
}

func (s *UsecaseVotingSuite) TestReveal(t provider.T) {
	t.Parallel()

	t.Run("Should expose the exact votes recorded at reveal time", func(t provider.T) {
		r := initResources(t, "u1", "u2")
		_, err := r.usecase.Start(r.ctx, roomCode, "Login page")
		assert.NoError(t, err)
		_, err = r.usecase.Submit(r.ctx, roomCode, "u1", "5")
		assert.NoError(t, err)
		_, err = r.usecase.Submit(r.ctx, roomCode, "u2", "8")
		assert.NoError(t, err)

		room, summary, err := r.usecase.Reveal(r.ctx, roomCode)

		assert.NoError(t, err)
		assert.Equal(t, model.StatusRevealed, room.Status)
		assert.Equal(t, map[string]string{"u1": "5", "u2": "8"}, room.Votes)
		assert.Equal(t, 2, summary.VoteCount)
		assert.Equal(t, 2, summary.ParticipantCount)
		if assert.NotNil(t, summary.Average) {
			assert.InDelta(t, 6.5, *summary.Average, 1e-9)
		}
		assert.False(t, summary.Consensus)
	})

	t.Run("Should freeze the snapshot against later submissions", func(t provider.T) {
		r := initResources(t, "u1", "u2")
		_, err := r.usecase.Start(r.ctx, roomCode, "Login page")
		assert.NoError(t, err)
		_, err = r.usecase.Submit(r.ctx, roomCode, "u1", "5")
		assert.NoError(t, err)

		first, _, err := r.usecase.Reveal(r.ctx, roomCode)
		assert.NoError(t, err)

		_, err = r.usecase.Submit(r.ctx, roomCode, "u2", "8")
		assert.ErrorIs(t, err, usecase_voting.ErrRoundNotActive)

		second, _, err := r.usecase.Reveal(r.ctx, roomCode)
		assert.NoError(t, err)
		assert.Equal(t, first.Votes, second.Votes)
	})

	t.Run("Should allow revealing a partial vote set", func(t provider.T) {
		r := initResources(t, "u1", "u2", "u3")
		_, err := r.usecase.Start(r.ctx, roomCode, "Login page")
		assert.NoError(t, err)
		_, err = r.usecase.Submit(r.ctx, roomCode, "u1", "3")
		assert.NoError(t, err)

		_, summary, err := r.usecase.Reveal(r.ctx, roomCode)

		assert.NoError(t, err)
		assert.Equal(t, 1, summary.VoteCount)
		assert.Equal(t, 3, summary.ParticipantCount)
	})

	t.Run("Should reject a reveal with no round in progress", func(t provider.T) {
		r := initResources(t, "u1")
		_, _, err := r.usecase.Reveal(r.ctx, roomCode)
		assert.ErrorIs(t, err, usecase_voting.ErrRoundNotActive)
	})
}

func (s *UsecaseVotingSuite) TestReset(t provider.T) {
	t.Parallel()

	for _, from := range []string{"voting", "revealed"} {
		t.Run("Should return to waiting from "+from, func(t provider.T) {
			r := initResources(t, "u1", "u2")
			_, err := r.usecase.Start(r.ctx, roomCode, "Login page")
			assert.NoError(t, err)
			_, err = r.usecase.Submit(r.ctx, roomCode, "u1", "5")
			assert.NoError(t, err)
			if from == "revealed" {
				_, _, err = r.usecase.Reveal(r.ctx, roomCode)
				assert.NoError(t, err)
			}

			room, err := r.usecase.Reset(r.ctx, roomCode)

			assert.NoError(t, err)
			assert.Equal(t, model.StatusWaiting, room.Status)
			assert.Empty(t, room.CurrentStory)
			assert.Empty(t, room.Votes)
		})
	}
}

func (s *UsecaseVotingSuite) TestSummarize(t provider.T) {
	t.Parallel()

	avg := func(f float64) *float64 { return &f }

	testCases := []struct {
		name              string
		votes             map[string]string
		participants      int
		expectedAverage   *float64
		expectedConsensus bool
	}{
		{
			name:              "Should average numeric votes",
			votes:             map[string]string{"u1": "5", "u2": "8"},
			participants:      2,
			expectedAverage:   avg(6.5),
			expectedConsensus: false,
		},
		{
			name:              "Should exclude non-numeric cards from the average",
			votes:             map[string]string{"u1": "5", "u2": "?", "u3": "coffee"},
			participants:      3,
			expectedAverage:   avg(5),
			expectedConsensus: false,
		},
		{
			name:              "Should flag consensus on identical votes",
			votes:             map[string]string{"u1": "8", "u2": "8", "u3": "8"},
			participants:      3,
			expectedAverage:   avg(8),
			expectedConsensus: true,
		},
		{
			name:              "Should flag consensus on identical non-numeric votes",
			votes:             map[string]string{"u1": "?", "u2": "?"},
			participants:      2,
			expectedAverage:   nil,
			expectedConsensus: true,
		},
		{
			name:              "Should never flag consensus on the hidden placeholder",
			votes:             map[string]string{"u1": "hidden", "u2": "hidden"},
			participants:      2,
			expectedAverage:   nil,
			expectedConsensus: false,
		},
		{
			name:              "Should report no consensus and no average for an empty set",
			votes:             map[string]string{},
			participants:      2,
			expectedAverage:   nil,
			expectedConsensus: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			summary := usecase_voting.Summarize(tc.votes, tc.participants)

			assert.Equal(t, len(tc.votes), summary.VoteCount)
			assert.Equal(t, tc.participants, summary.ParticipantCount)
			assert.Equal(t, tc.expectedConsensus, summary.Consensus)
			if tc.expectedAverage == nil {
				assert.Nil(t, summary.Average)
			} else if assert.NotNil(t, summary.Average) {
				assert.InDelta(t, *tc.expectedAverage, *summary.Average, 1e-9)
			}
		})
	}
}

func TestUsecaseVotingSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseVotingSuite))
}
