package memory

import (
	"context"
	"sort"
	"sync"

	"docflow/internal/repository"
)

type assignmentKey struct {
	userID       string
	departmentID int64
}

// MembershipStore keeps user to department assignments keyed by the composite pair.
type MembershipStore struct {
	mu    sync.RWMutex
	pairs map[assignmentKey]struct{}
}

func NewMembershipStore() *MembershipStore {
	return &MembershipStore{pairs: make(map[assignmentKey]struct{})}
}

var _ repository.MembershipRepository = (*MembershipStore)(nil)

func (s *MembershipStore) Assign(_ context.Context, userID string, departmentID int64) (bool, error) {
	k := assignmentKey{userID, departmentID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pairs[k]; ok {
		return false, nil
	}
	s.pairs[k] = struct{}{}
	return true, nil
}

func (s *MembershipStore) Unassign(_ context.Context, userID string, departmentID int64) error {
	k := assignmentKey{userID, departmentID}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pairs[k]; !ok {
		return repository.ErrNotFound
	}
	delete(s.pairs, k)
	return nil
}

func (s *MembershipStore) IsMember(_ context.Context, userID string, departmentID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pairs[assignmentKey{userID, departmentID}]
	return ok, nil
}

func (s *MembershipStore) DepartmentIDs(_ context.Context, userID string) ([]int64, error) {
	out := make([]int64, 0)
	s.mu.RLock()
	for k := range s.pairs {
		if k.userID == userID {
			out = append(out, k.departmentID)
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *MembershipStore) UserIDs(_ context.Context, departmentID int64) ([]string, error) {
	out := make([]string, 0)
	s.mu.RLock()
	for k := range s.pairs {
		if k.departmentID == departmentID {
			out = append(out, k.userID)
		}
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

func (s *MembershipStore) RemoveDepartment(_ context.Context, departmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.pairs {
		if k.departmentID == departmentID {
			delete(s.pairs, k)
		}
	}
	return nil
}
