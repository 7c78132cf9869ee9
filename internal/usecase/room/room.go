package usecase_room

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/scrumpoker/core/internal/model"
)

var (
	ErrInvalidName         = errors.New("room name must be between 3 and 50 characters")
	ErrMissingCreator      = errors.New("room creator is required")
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found in room")
	ErrRoomFull            = errors.New("room is full")
	ErrAlreadyJoined       = errors.New("participant already in room")
	ErrForbidden           = errors.New("only the room creator may do this")
	ErrCodeConflict        = errors.New("room code conflict")
	ErrInternal            = errors.New("internal error")
)

//go:generate mockery --name=RoomRepository --output=./mocks/room/repository --filename=repository.go
type RoomRepository interface {
	// Create stores a new room; returns ErrCodeConflict when the code
	// is already taken by a live room.
	Create(ctx context.Context, room model.Room) error
	ByCode(ctx context.Context, code string) (model.Room, error)
	List(ctx context.Context) ([]model.RoomSummary, error)
	// AddParticipant appends atomically; returns ErrRoomNotFound,
	// ErrRoomFull or ErrAlreadyJoined.
	AddParticipant(ctx context.Context, code string, p model.Participant) (model.RoomSummary, error)
	// RemoveParticipant drops the member and its vote; when the room
	// empties it is deleted in the same step and deleted=true.
	RemoveParticipant(ctx context.Context, code string, participantID string) (summary model.RoomSummary, deleted bool, err error)
	Delete(ctx context.Context, code string) error
	// DeleteOlderThan removes rooms created before the cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type Limits struct {
	DefaultCapacity int
	MaxCapacity     int
	TTL             time.Duration
	CleanupPeriod   int
}

type Usecase struct {
	repo   RoomRepository
	limits Limits

	// Used to run the expiry sweep on every Nth creation
	createCount atomic.Int64
}

func New(repo RoomRepository, limits Limits) *Usecase {
	if limits.DefaultCapacity <= 0 {
		limits.DefaultCapacity = 10
	}
	if limits.MaxCapacity <= 0 {
		limits.MaxCapacity = 20
	}
	if limits.CleanupPeriod <= 0 {
		limits.CleanupPeriod = 20
	}
	return &Usecase{
		repo:   repo,
		limits: limits,
	}
}

func (u *Usecase) Create(ctx context.Context, name string, creator model.Participant, maxParticipants int) (model.RoomSummary, error) {
	name = strings.TrimSpace(name)
	// Bounds are in characters, not bytes: a multibyte name must be
	// measured the way the client displays it.
	if n := utf8.RuneCountInString(name); n < 3 || n > 50 {
		return model.RoomSummary{}, ErrInvalidName
	}
	if creator.ID == "" {
		return model.RoomSummary{}, ErrMissingCreator
	}

	if maxParticipants <= 0 {
		maxParticipants = u.limits.DefaultCapacity
	}
	if maxParticipants > u.limits.MaxCapacity {
		maxParticipants = u.limits.MaxCapacity
	}

	if u.limits.TTL > 0 && u.createCount.Add(1)%int64(u.limits.CleanupPeriod) == 0 {
		if _, err := u.repo.DeleteOlderThan(ctx, time.Now().Add(-u.limits.TTL)); err != nil {
			return model.RoomSummary{}, errors.Join(ErrInternal, err)
		}
	}

	creator.JoinedAt = time.Now()

	// Codes can conflict with a live room; regenerate until one lands
	// free. With 36^6 combinations collisions are effectively noise.
	for {
		room := model.Room{
			Code:            u.buildRoomCode(),
			Name:            name,
			CreatedBy:       creator.ID,
			CreatedAt:       time.Now(),
			MaxParticipants: maxParticipants,
			Participants:    []model.Participant{creator},
			Status:          model.StatusWaiting,
			Votes:           make(map[string]string),
		}
		err := u.repo.Create(ctx, room)
		if err == nil {
			return room.Summary(), nil
		}
		if !errors.Is(err, ErrCodeConflict) {
			return model.RoomSummary{}, errors.Join(ErrInternal, err)
		}
	}
}

func (u *Usecase) buildRoomCode() string {
	var builder strings.Builder
	builder.Grow(model.RoomCodeLength)

	for i := 0; i < model.RoomCodeLength; i++ {
		builder.WriteByte(model.RoomCodeAlphabet[rand.Intn(len(model.RoomCodeAlphabet))])
	}

	return builder.String()
}

func (u *Usecase) List(ctx context.Context) ([]model.RoomSummary, error) {
	summaries, err := u.repo.List(ctx)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return summaries, nil
}

func (u *Usecase) ByCode(ctx context.Context, code string) (model.Room, error) {
	room, err := u.repo.ByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return model.Room{}, ErrRoomNotFound
		}
		return model.Room{}, errors.Join(ErrInternal, err)
	}
	return room, nil
}

func (u *Usecase) Join(ctx context.Context, code string, p model.Participant) (model.RoomSummary, error) {
	p.JoinedAt = time.Now()

	summary, err := u.repo.AddParticipant(ctx, code, p)
	if err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrRoomFull), errors.Is(err, ErrAlreadyJoined):
			return model.RoomSummary{}, err
		default:
			return model.RoomSummary{}, errors.Join(ErrInternal, err)
		}
	}
	return summary, nil
}

// Leave removes the participant. The returned deleted flag reports
// that the last member left and the room is gone.
func (u *Usecase) Leave(ctx context.Context, code string, participantID string) (model.RoomSummary, bool, error) {
	summary, deleted, err := u.repo.RemoveParticipant(ctx, code, participantID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrParticipantNotFound):
			return model.RoomSummary{}, false, err
		default:
			return model.RoomSummary{}, false, errors.Join(ErrInternal, err)
		}
	}
	return summary, deleted, nil
}

func (u *Usecase) Delete(ctx context.Context, code string, requesterID string) error {
	room, err := u.repo.ByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return errors.Join(ErrInternal, err)
	}
	if room.CreatedBy != requesterID {
		return ErrForbidden
	}

	if err := u.repo.Delete(ctx, code); err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return errors.Join(ErrInternal, err)
	}
	return nil
}
