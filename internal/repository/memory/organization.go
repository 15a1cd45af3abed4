package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// namedStore backs both departments and categories: an id sequence plus a
// case-insensitive unique name.
type namedStore struct {
	mu    sync.RWMutex
	seq   int64
	names map[int64]string
}

func newNamedStore() namedStore {
	return namedStore{names: make(map[int64]string)}
}

func (s *namedStore) create(name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken(name, 0) {
		return 0, repository.ErrDuplicate
	}
	s.seq++
	s.names[s.seq] = name
	return s.seq, nil
}

func (s *namedStore) find(id int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.names[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	return name, nil
}

func (s *namedStore) update(id int64, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[id]; !ok {
		return repository.ErrNotFound
	}
	if s.taken(name, id) {
		return repository.ErrDuplicate
	}
	s.names[id] = name
	return nil
}

func (s *namedStore) remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.names[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.names, id)
	return nil
}

func (s *namedStore) ids() []int64 {
	s.mu.RLock()
	out := make([]int64, 0, len(s.names))
	for id := range s.names {
		out = append(out, id)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// taken must be called with the lock held.
func (s *namedStore) taken(name string, except int64) bool {
	for id, n := range s.names {
		if id != except && strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}

// DepartmentStore is an in-memory department table.
type DepartmentStore struct{ s namedStore }

func NewDepartmentStore() *DepartmentStore { return &DepartmentStore{s: newNamedStore()} }

var _ repository.DepartmentRepository = (*DepartmentStore)(nil)

func (d *DepartmentStore) Create(_ context.Context, name string) (*model.Department, error) {
	id, err := d.s.create(name)
	if err != nil {
		return nil, err
	}
	return &model.Department{ID: id, Name: name}, nil
}

func (d *DepartmentStore) FindByID(_ context.Context, id int64) (*model.Department, error) {
	name, err := d.s.find(id)
	if err != nil {
		return nil, err
	}
	return &model.Department{ID: id, Name: name}, nil
}

func (d *DepartmentStore) List(ctx context.Context) ([]model.Department, error) {
	out := make([]model.Department, 0)
	for _, id := range d.s.ids() {
		if name, err := d.s.find(id); err == nil {
			out = append(out, model.Department{ID: id, Name: name})
		}
	}
	return out, nil
}

func (d *DepartmentStore) Update(_ context.Context, id int64, name string) (*model.Department, error) {
	if err := d.s.update(id, name); err != nil {
		return nil, err
	}
	return &model.Department{ID: id, Name: name}, nil
}

func (d *DepartmentStore) Delete(_ context.Context, id int64) error { return d.s.remove(id) }

func (d *DepartmentStore) Count(_ context.Context) (int, error) { return len(d.s.ids()), nil }

// CategoryStore is an in-memory category table.
type CategoryStore struct{ s namedStore }

func NewCategoryStore() *CategoryStore { return &CategoryStore{s: newNamedStore()} }

var _ repository.CategoryRepository = (*CategoryStore)(nil)

func (c *CategoryStore) Create(_ context.Context, name string) (*model.Category, error) {
	id, err := c.s.create(name)
	if err != nil {
		return nil, err
	}
	return &model.Category{ID: id, Name: name}, nil
}

func (c *CategoryStore) FindByID(_ context.Context, id int64) (*model.Category, error) {
	name, err := c.s.find(id)
	if err != nil {
		return nil, err
	}
	return &model.Category{ID: id, Name: name}, nil
}

func (c *CategoryStore) List(_ context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0)
	for _, id := range c.s.ids() {
		if name, err := c.s.find(id); err == nil {
			out = append(out, model.Category{ID: id, Name: name})
		}
	}
	return out, nil
}

func (c *CategoryStore) Update(_ context.Context, id int64, name string) (*model.Category, error) {
	if err := c.s.update(id, name); err != nil {
		return nil, err
	}
	return &model.Category{ID: id, Name: name}, nil
}

func (c *CategoryStore) Delete(_ context.Context, id int64) error { return c.s.remove(id) }
