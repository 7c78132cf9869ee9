package usecase_user

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/scrumpoker/core/internal/model"
)

var (
	ErrInvalidUsername = errors.New("username must be between 2 and 20 characters")
	ErrUsernameTaken   = errors.New("username already in use")
	ErrUserNotFound    = errors.New("user not found")
	ErrInternal        = errors.New("internal error")
)

//go:generate mockery --name=UserRepository --output=./mocks/user/repository --filename=repository.go
type UserRepository interface {
	// Create stores a user keyed by username; returns
	// ErrUsernameTaken on a duplicate.
	Create(ctx context.Context, user model.User) error
	Exists(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]model.User, error)
	Delete(ctx context.Context, username string) error
}

type Usecase struct {
	repo UserRepository
}

func New(repo UserRepository) *Usecase {
	return &Usecase{repo: repo}
}

// Register maps a self-asserted display name to an opaque identity.
func (u *Usecase) Register(ctx context.Context, username string) (model.User, error) {
	username = strings.TrimSpace(username)
	// Character count, not byte count.
	if n := utf8.RuneCountInString(username); n < 2 || n > 20 {
		return model.User{}, ErrInvalidUsername
	}

	user := model.User{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now(),
	}
	if err := u.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return model.User{}, ErrUsernameTaken
		}
		return model.User{}, errors.Join(ErrInternal, err)
	}
	return user, nil
}

func (u *Usecase) Exists(ctx context.Context, username string) (bool, error) {
	exists, err := u.repo.Exists(ctx, username)
	if err != nil {
		return false, errors.Join(ErrInternal, err)
	}
	return exists, nil
}

func (u *Usecase) List(ctx context.Context) ([]model.User, error) {
	users, err := u.repo.List(ctx)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	return users, nil
}

func (u *Usecase) Delete(ctx context.Context, username string) error {
	if err := u.repo.Delete(ctx, username); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return errors.Join(ErrInternal, err)
	}
	return nil
}
