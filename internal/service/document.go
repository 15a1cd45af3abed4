package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"docflow/internal/apperr"
	"docflow/internal/identity"
	"docflow/internal/model"
	"docflow/internal/repository"
	"docflow/internal/storage"
)

// EventPublisher emits document lifecycle events.
type EventPublisher interface {
	PublishDocumentCreated(ctx context.Context, evt model.DocumentCreatedEvent) error
}

// CreateDocumentInput is the metadata of a new document.
type CreateDocumentInput struct {
	TitleEn      string
	FileKey      string
	FileName     string
	FileType     string
	FileSize     int64
	CategoryID   int64
	DepartmentID int64
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items  []model.DocumentView `json:"data"`
	Total  int                  `json:"total"`
	Limit  int                  `json:"limit"`
	Offset int                  `json:"offset"`
}

// DocumentService is the authorization and workflow engine for documents.
// Every read and write checks department membership of the caller; ROLE_ADMIN bypasses the check on reads.
type DocumentService interface {
	// Create persists a document owned by the caller and publishes a DocumentCreatedEvent.
	// A failed publish is logged and does not fail the creation.
	Create(ctx context.Context, in CreateDocumentInput, caller identity.Principal) (*model.DocumentView, error)

	// Get returns a document visible to the caller.
	Get(ctx context.Context, id int64, caller identity.Principal) (*model.DocumentView, error)

	// ListForUser pages over documents of every department the caller belongs to.
	ListForUser(ctx context.Context, caller identity.Principal, limit, offset int) (*DocumentListResult, error)

	// ListByDepartment pages over the documents of one department.
	ListByDepartment(ctx context.Context, departmentID int64, caller identity.Principal, limit, offset int) (*DocumentListResult, error)

	// ListAll pages over every document. Callers are expected to be administrators.
	ListAll(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// ApplyTranslation stores the translated title of a document.
	ApplyTranslation(ctx context.Context, id int64, translatedTitle string) (*model.Document, error)

	Delete(ctx context.Context, id int64) error

	// DownloadLink returns a short-lived link to the stored file of a visible document.
	DownloadLink(ctx context.Context, id int64, caller identity.Principal) (*model.DownloadLink, error)
}

// DocumentDeps groups the collaborators of the document engine.
type DocumentDeps struct {
	Documents    repository.DocumentRepository
	Categories   repository.CategoryRepository
	Departments  repository.DepartmentRepository
	Memberships  MembershipService
	Publisher    EventPublisher
	Links        storage.Linker
	LinkExpiry   time.Duration
	Log          *zap.Logger
	DefaultLimit int
	MaxLimit     int
}

type documentService struct {
	DocumentDeps
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(deps DocumentDeps) DocumentService {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.DefaultLimit <= 0 {
		deps.DefaultLimit = 10
	}
	if deps.MaxLimit <= 0 {
		deps.MaxLimit = 100
	}
	if deps.LinkExpiry <= 0 {
		deps.LinkExpiry = 15 * time.Minute
	}
	return &documentService{DocumentDeps: deps}
}

func (s *documentService) Create(ctx context.Context, in CreateDocumentInput, caller identity.Principal) (*model.DocumentView, error) {
	if !caller.IsAuthenticated() {
		return nil, apperr.ErrNotAuthenticated
	}
	if err := validateCreate(&in); err != nil {
		return nil, err
	}
	cat, err := s.category(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	dept, err := s.department(ctx, in.DepartmentID)
	if err != nil {
		return nil, err
	}

	member, err := s.isMember(ctx, caller.ID, dept.ID)
	if err != nil {
		return nil, err
	}
	if !member {
		s.Log.Warn("document create denied",
			zap.String("user_id", caller.ID),
			zap.Int64("department_id", dept.ID),
		)
		return nil, apperr.ErrAccessDenied
	}

	doc, err := s.Documents.Create(ctx, &model.Document{
		TitleEn:      in.TitleEn,
		FileKey:      in.FileKey,
		FileName:     in.FileName,
		FileType:     in.FileType,
		FileSize:     in.FileSize,
		CategoryID:   cat.ID,
		DepartmentID: dept.ID,
		OwnerUserID:  caller.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.Log.Info("document created",
		zap.Int64("document_id", doc.ID),
		zap.Int64("department_id", doc.DepartmentID),
		zap.String("owner", doc.OwnerUserID),
	)

	if s.Publisher != nil {
		evt := model.DocumentCreatedEvent{DocumentID: doc.ID, TitleEn: doc.TitleEn}
		if err := s.Publisher.PublishDocumentCreated(context.WithoutCancel(ctx), evt); err != nil {
			s.Log.Error("document created event not published",
				zap.Int64("document_id", doc.ID),
				zap.Error(err),
			)
		}
	}

	return &model.DocumentView{Document: *doc, CategoryName: cat.Name, DepartmentName: dept.Name}, nil
}

func (s *documentService) Get(ctx context.Context, id int64, caller identity.Principal) (*model.DocumentView, error) {
	doc, err := s.visibleDocument(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *doc), nil
}

func (s *documentService) ListForUser(ctx context.Context, caller identity.Principal, limit, offset int) (*DocumentListResult, error) {
	pq := s.page(limit, offset)
	ids, err := s.Memberships.ListDepartmentIDs(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	if len(ids) == 0 {
		return s.result(ctx, &repository.PageResult[model.Document]{}, pq), nil
	}
	res, err := s.Documents.ListByDepartments(ctx, ids, pq)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return s.result(ctx, res, pq), nil
}

func (s *documentService) ListByDepartment(ctx context.Context, departmentID int64, caller identity.Principal, limit, offset int) (*DocumentListResult, error) {
	if _, err := s.department(ctx, departmentID); err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		if err := s.authorize(ctx, caller, departmentID, 0); err != nil {
			return nil, err
		}
	}
	pq := s.page(limit, offset)
	res, err := s.Documents.ListByDepartments(ctx, []int64{departmentID}, pq)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return s.result(ctx, res, pq), nil
}

func (s *documentService) ListAll(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	pq := s.page(limit, offset)
	res, err := s.Documents.List(ctx, pq)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return s.result(ctx, res, pq), nil
}

func (s *documentService) ApplyTranslation(ctx context.Context, id int64, translatedTitle string) (*model.Document, error) {
	translatedTitle = strings.TrimSpace(translatedTitle)
	if translatedTitle == "" {
		return nil, apperr.Validation("invalid translation", map[string]string{"translatedTitle": "translatedTitle is required"})
	}
	doc, err := s.Documents.UpdateTitleEs(ctx, id, translatedTitle)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("update translated title: %w", err)
	}
	s.Log.Info("translated title stored", zap.Int64("document_id", id))
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, id int64) error {
	if err := s.Documents.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrDocumentNotFound
		}
		return fmt.Errorf("delete document: %w", err)
	}
	s.Log.Info("document deleted", zap.Int64("document_id", id))
	return nil
}

func (s *documentService) DownloadLink(ctx context.Context, id int64, caller identity.Principal) (*model.DownloadLink, error) {
	doc, err := s.visibleDocument(ctx, id, caller)
	if err != nil {
		return nil, err
	}
	if s.Links == nil {
		return nil, apperr.ErrUpstreamUnavailable
	}
	u, err := s.Links.PresignGet(ctx, doc.FileKey, s.LinkExpiry)
	if err != nil {
		return nil, apperr.Upstream(fmt.Errorf("presign %q: %w", doc.FileKey, err))
	}
	return &model.DownloadLink{DocumentID: doc.ID, FileKey: doc.FileKey, FileName: doc.FileName, DownloadURL: u}, nil
}

func (s *documentService) visibleDocument(ctx context.Context, id int64, caller identity.Principal) (*model.Document, error) {
	doc, err := s.Documents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	if caller.IsAdmin() {
		return doc, nil
	}
	if err := s.authorize(ctx, caller, doc.DepartmentID, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

// authorize checks that caller belongs to departmentID. An empty membership set is
// reported with its own error so operators can tell it apart from a wrong department.
func (s *documentService) authorize(ctx context.Context, caller identity.Principal, departmentID, documentID int64) error {
	ids, err := s.Memberships.ListDepartmentIDs(ctx, caller.ID)
	if err != nil {
		return fmt.Errorf("list departments: %w", err)
	}
	if len(ids) == 0 {
		s.Log.Warn("access denied: user has no department",
			zap.String("user_id", caller.ID),
			zap.Int64("document_id", documentID),
		)
		return apperr.ErrNoDepartmentMembership
	}
	for _, id := range ids {
		if id == departmentID {
			return nil
		}
	}
	s.Log.Warn("access denied: department mismatch",
		zap.String("user_id", caller.ID),
		zap.Int64("department_id", departmentID),
		zap.Int64("document_id", documentID),
	)
	return apperr.ErrAccessDenied
}

func (s *documentService) isMember(ctx context.Context, userID string, departmentID int64) (bool, error) {
	ids, err := s.Memberships.ListDepartmentIDs(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("list departments: %w", err)
	}
	for _, id := range ids {
		if id == departmentID {
			return true, nil
		}
	}
	return false, nil
}

func (s *documentService) category(ctx context.Context, id int64) (*model.Category, error) {
	c, err := s.Categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (s *documentService) department(ctx context.Context, id int64) (*model.Department, error) {
	d, err := s.Departments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("find department: %w", err)
	}
	return d, nil
}

func (s *documentService) page(limit, offset int) repository.PageQuery {
	if limit <= 0 {
		limit = s.DefaultLimit
	}
	if limit > s.MaxLimit {
		limit = s.MaxLimit
	}
	return repository.PageQuery{Limit: limit, Offset: max(offset, 0)}
}

func (s *documentService) result(ctx context.Context, res *repository.PageResult[model.Document], pq repository.PageQuery) *DocumentListResult {
	items := make([]model.DocumentView, 0, len(res.Items))
	for _, d := range res.Items {
		items = append(items, *s.view(ctx, d))
	}
	return &DocumentListResult{Items: items, Total: res.Total, Limit: pq.Limit, Offset: pq.Offset}
}

// view resolves category and department names; lookups that fail leave the name empty.
func (s *documentService) view(ctx context.Context, d model.Document) *model.DocumentView {
	v := &model.DocumentView{Document: d}
	if c, err := s.Categories.FindByID(ctx, d.CategoryID); err == nil {
		v.CategoryName = c.Name
	}
	if dep, err := s.Departments.FindByID(ctx, d.DepartmentID); err == nil {
		v.DepartmentName = dep.Name
	}
	return v
}

func validateCreate(in *CreateDocumentInput) error {
	in.TitleEn = strings.TrimSpace(in.TitleEn)
	in.FileKey = strings.TrimSpace(in.FileKey)
	in.FileName = strings.TrimSpace(in.FileName)
	fields := map[string]string{}
	if in.TitleEn == "" {
		fields["titleEn"] = "titleEn is required"
	}
	if in.FileKey == "" {
		fields["fileKey"] = "fileKey is required"
	}
	if in.FileName == "" {
		fields["fileName"] = "fileName is required"
	}
	if in.CategoryID <= 0 {
		fields["categoryId"] = "categoryId must be positive"
	}
	if in.DepartmentID <= 0 {
		fields["departmentId"] = "departmentId must be positive"
	}
	if in.FileSize < 0 {
		fields["fileSize"] = "fileSize must not be negative"
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid document", fields)
	}
	return nil
}
