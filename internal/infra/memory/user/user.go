package infra_memory_user

import (
	"context"
	"sync"

	"github.com/scrumpoker/core/internal/model"
	usecase_user "github.com/scrumpoker/core/internal/usecase/user"
)

// Store is the in-memory identity registry, keyed by username.
type Store struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func New() *Store {
	return &Store{
		users: make(map[string]model.User),
	}
}

func (s *Store) Create(_ context.Context, user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return usecase_user.ErrUsernameTaken
	}
	s.users[user.Username] = user
	return nil
}

func (s *Store) Exists(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[username]
	return ok, nil
}

func (s *Store) List(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	return users, nil
}

func (s *Store) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; !ok {
		return usecase_user.ErrUserNotFound
	}
	delete(s.users, username)
	return nil
}
