// Package memory holds process-local repository implementations backed by
// mutex-guarded maps. Every method is atomic per key.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// UserStore is an in-memory credential store.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]model.User)}
}

var _ repository.UserRepository = (*UserStore)(nil)

func (s *UserStore) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return repository.ErrDuplicate
	}
	s.users[u.Username] = cloneUser(*u)
	return nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (s *UserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *UserStore) Update(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; !ok {
		return repository.ErrNotFound
	}
	s.users[u.Username] = cloneUser(*u)
	return nil
}

func (s *UserStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, username)
	return nil
}

func cloneUser(u model.User) model.User {
	u.Roles = slices.Clone(u.Roles)
	return u
}
