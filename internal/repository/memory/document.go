package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// DocumentStore is an in-memory document table.
type DocumentStore struct {
	mu   sync.RWMutex
	seq  int64
	docs map[int64]model.Document
	now  func() time.Time
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[int64]model.Document), now: time.Now}
}

var _ repository.DocumentRepository = (*DocumentStore)(nil)

func (s *DocumentStore) Create(_ context.Context, doc *model.Document) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	d := cloneDocument(*doc)
	d.ID = s.seq
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}
	s.docs[d.ID] = d
	out := cloneDocument(d)
	return &out, nil
}

func (s *DocumentStore) FindByID(_ context.Context, id int64) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneDocument(d)
	return &out, nil
}

func (s *DocumentStore) List(_ context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	return repository.Paginate(s.filter(func(model.Document) bool { return true }), pq), nil
}

func (s *DocumentStore) ListByDepartments(_ context.Context, departmentIDs []int64, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	return repository.Paginate(s.filter(func(d model.Document) bool {
		return slices.Contains(departmentIDs, d.DepartmentID)
	}), pq), nil
}

func (s *DocumentStore) UpdateTitleEs(_ context.Context, id int64, titleEs string) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if d.TitleEs == nil || *d.TitleEs != titleEs {
		d.TitleEs = &titleEs
		d.UpdatedAt = s.now().UTC()
		s.docs[id] = d
	}
	out := cloneDocument(d)
	return &out, nil
}

func (s *DocumentStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *DocumentStore) CountByDepartment(_ context.Context, departmentID int64) (int, error) {
	return len(s.filter(func(d model.Document) bool { return d.DepartmentID == departmentID })), nil
}

func (s *DocumentStore) CountByCategory(_ context.Context, categoryID int64) (int, error) {
	return len(s.filter(func(d model.Document) bool { return d.CategoryID == categoryID })), nil
}

// filter returns matching documents ordered newest first, ties broken by id.
func (s *DocumentStore) filter(keep func(model.Document) bool) []model.Document {
	s.mu.RLock()
	out := make([]model.Document, 0, len(s.docs))
	for _, d := range s.docs {
		if keep(d) {
			out = append(out, cloneDocument(d))
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func cloneDocument(d model.Document) model.Document {
	if d.TitleEs != nil {
		v := *d.TitleEs
		d.TitleEs = &v
	}
	return d
}
