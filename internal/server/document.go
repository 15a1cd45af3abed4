package server

import (
	"context"
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docflow/internal/config"
	"docflow/internal/events"
	"docflow/internal/http/handler"
	"docflow/internal/http/middleware"
	"docflow/internal/repository"
	"docflow/internal/repository/memory"
	"docflow/internal/repository/postgres"
	"docflow/internal/service"
	"docflow/internal/storage"
	"docflow/internal/translation"
)

// Stores are the persistence adapters of the document service.
type Stores struct {
	Departments repository.DepartmentRepository
	Categories  repository.CategoryRepository
	Memberships repository.MembershipRepository
	Documents   repository.DocumentRepository
}

// MemoryStores keeps everything in process memory.
func MemoryStores() Stores {
	return Stores{
		Departments: memory.NewDepartmentStore(),
		Categories:  memory.NewCategoryStore(),
		Memberships: memory.NewMembershipStore(),
		Documents:   memory.NewDocumentStore(),
	}
}

// PostgresStores persists to the schema created by migration.EnsureMigrated.
func PostgresStores(db *sql.DB) Stores {
	return Stores{
		Departments: postgres.NewDepartmentPostgres(db),
		Categories:  postgres.NewCategoryPostgres(db),
		Memberships: postgres.NewMembershipPostgres(db),
		Documents:   postgres.NewDocumentPostgres(db),
	}
}

// DocumentDeps groups the collaborators of the document service.
type DocumentDeps struct {
	Config *config.AppConfig
	Stores Stores
	Links  storage.Linker
	Broker *events.Broker
	// Translator, when set, runs the translation worker in process on the same broker.
	Translator translation.Translator
	Checks     []handler.Check
	Registry   *prometheus.Registry
	Log        *zap.Logger
}

// DocumentService is the wired document service: its HTTP app and the consumers it runs.
type DocumentService struct {
	App         *fiber.App
	Departments service.DepartmentService
	Documents   service.DocumentService
	Worker      *translation.Worker

	consumers []*events.Consumer
}

func NewDocumentService(d DocumentDeps) (*DocumentService, error) {
	cfg := d.Config
	log := d.Log
	reg := registry(d.Registry)

	eventMetrics, err := events.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	publisher := events.NewPublisher(d.Broker.Publisher, events.PublisherConfig{
		Topics:           topics(cfg.Broker),
		SendTimeout:      cfg.Broker.SendTimeout,
		BreakerThreshold: cfg.Broker.BreakerThreshold,
	}, eventMetrics, log)

	links := d.Links
	if links == nil {
		links = storage.NewProxyLinker(cfg.Document.StorageProxyPath)
	}

	st := d.Stores
	memberships := service.NewMembershipService(st.Memberships, st.Departments, log)
	departments := service.NewDepartmentService(st.Departments, st.Memberships, st.Documents, log)
	categories := service.NewCategoryService(st.Categories, st.Documents)
	documents := service.NewDocumentService(service.DocumentDeps{
		Documents:    st.Documents,
		Categories:   st.Categories,
		Departments:  st.Departments,
		Memberships:  memberships,
		Publisher:    publisher,
		Links:        links,
		LinkExpiry:   cfg.MinIO.PresignExpiry,
		Log:          log,
		DefaultLimit: cfg.Document.DefaultPageLimit,
		MaxLimit:     cfg.Document.MaxPageLimit,
	})

	s := &DocumentService{Departments: departments, Documents: documents}
	s.consumers = append(s.consumers, events.NewConsumer(
		d.Broker.Subscriber, cfg.Broker.TranslationResultTopic,
		events.NewTranslationResultHandler(documents, log),
		cfg.Broker.NackDelay, eventMetrics, log,
	))

	if d.Translator == nil && (cfg.Broker.Kind == "" || cfg.Broker.Kind == "memory") {
		// nothing else can subscribe to the in-process channel
		log.Error("translation_unreachable",
			zap.String("broker", "memory"),
			zap.String("hint", "set TRANSLATOR_EMBEDDED=true or BROKER=nats"))
	}
	if d.Translator != nil {
		workerMetrics, err := translation.NewMetrics(reg)
		if err != nil {
			return nil, err
		}
		s.Worker = translation.NewWorker(translation.WorkerConfig{
			Translator: d.Translator,
			Sink:       translation.EventSink{Publisher: publisher},
			Dedup:      events.NewMemoryDeduplicator(cfg.Translator.DedupTTL),
			Metrics:    workerMetrics,
			Log:        log.Named("translator"),
		})
		s.consumers = append(s.consumers, events.NewConsumer(
			d.Broker.Subscriber, cfg.Broker.DocumentCreatedTopic,
			s.Worker.Handler(), cfg.Broker.NackDelay, eventMetrics, log,
		))
	}

	app, err := newApp("docflow-document", reg, log)
	if err != nil {
		return nil, err
	}
	handler.RegisterSystemRoutes(app, handler.Metrics(reg), d.Checks...)
	app.Get("/swagger/*", handler.Swagger())

	app.Use(middleware.Identity(cfg.Identity.UserHeader, cfg.Identity.RolesHeader))
	handler.RegisterDocumentRoutes(app, handler.DocumentRoutes{
		Departments: departments,
		Categories:  categories,
		Memberships: memberships,
		Documents:   documents,
		InternalKey: cfg.Document.InternalAPIKey,
	})
	s.App = app
	return s, nil
}

// Start opens every subscription and processes messages on g until ctx ends.
// Subscriptions are live when Start returns.
func (s *DocumentService) Start(ctx context.Context, g *errgroup.Group) error {
	return startConsumers(ctx, g, s.consumers...)
}

func startConsumers(ctx context.Context, g *errgroup.Group, consumers ...*events.Consumer) error {
	for _, c := range consumers {
		messages, err := c.Subscribe(ctx)
		if err != nil {
			return err
		}
		g.Go(func() error { return c.Process(ctx, messages) })
	}
	return nil
}

func topics(cfg config.BrokerConfig) events.Topics {
	return events.Topics{
		DocumentCreated:   cfg.DocumentCreatedTopic,
		TranslationResult: cfg.TranslationResultTopic,
	}
}
