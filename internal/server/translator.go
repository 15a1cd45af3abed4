package server

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docflow/internal/config"
	"docflow/internal/events"
	"docflow/internal/http/handler"
	"docflow/internal/translation"
)

// NewTranslator returns the provider selected by cfg.Provider.
func NewTranslator(cfg config.TranslatorConfig) (translation.Translator, error) {
	switch cfg.Provider {
	case "", "glossary":
		return translation.NewGlossaryTranslator(nil), nil
	case "libretranslate":
		return translation.NewLibreTranslate(translation.LibreTranslateConfig{
			URL:        cfg.URL,
			APIKey:     cfg.APIKey,
			Source:     cfg.SourceLang,
			Target:     cfg.TargetLang,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.RequestTimeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown translator provider %q", cfg.Provider)
	}
}

// NewResultSink returns the delivery path selected by cfg.ResultSink: the
// translation-result topic, a direct REST call, or REST with the topic as fallback.
func NewResultSink(cfg config.TranslatorConfig, internalKey string, publisher translation.ResultPublisher, log *zap.Logger) (translation.ResultSink, error) {
	switch cfg.ResultSink {
	case "", "events":
		return translation.EventSink{Publisher: publisher}, nil
	case "rest":
		return translation.NewRESTSink(cfg.DocumentServiceURL, internalKey, cfg.RequestTimeout), nil
	case "rest+events":
		return translation.FallbackSink{
			Primary:   translation.NewRESTSink(cfg.DocumentServiceURL, internalKey, cfg.RequestTimeout),
			Secondary: translation.EventSink{Publisher: publisher},
			Log:       log,
		}, nil
	default:
		return nil, fmt.Errorf("unknown result sink %q", cfg.ResultSink)
	}
}

// TranslatorDeps groups the collaborators of the standalone translation worker.
type TranslatorDeps struct {
	Config     *config.AppConfig
	Broker     *events.Broker
	Translator translation.Translator
	// Dedup defaults to an in-memory deduplicator.
	Dedup    events.Deduplicator
	Checks   []handler.Check
	Registry *prometheus.Registry
	Log      *zap.Logger
}

// TranslatorService is the wired translation worker and its operational HTTP app.
type TranslatorService struct {
	App    *fiber.App
	Worker *translation.Worker

	consumer *events.Consumer
}

func NewTranslatorService(d TranslatorDeps) (*TranslatorService, error) {
	cfg := d.Config
	reg := registry(d.Registry)

	eventMetrics, err := events.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	workerMetrics, err := translation.NewMetrics(reg)
	if err != nil {
		return nil, err
	}
	publisher := events.NewPublisher(d.Broker.Publisher, events.PublisherConfig{
		Topics:           topics(cfg.Broker),
		SendTimeout:      cfg.Broker.SendTimeout,
		BreakerThreshold: cfg.Broker.BreakerThreshold,
	}, eventMetrics, d.Log)

	sink, err := NewResultSink(cfg.Translator, cfg.Document.InternalAPIKey, publisher, d.Log)
	if err != nil {
		return nil, err
	}
	dedup := d.Dedup
	if dedup == nil {
		dedup = events.NewMemoryDeduplicator(cfg.Translator.DedupTTL)
	}

	worker := translation.NewWorker(translation.WorkerConfig{
		Translator: d.Translator,
		Sink:       sink,
		Dedup:      dedup,
		Metrics:    workerMetrics,
		Log:        d.Log,
	})

	app, err := newApp("docflow-translator", reg, d.Log)
	if err != nil {
		return nil, err
	}
	handler.RegisterSystemRoutes(app, handler.Metrics(reg), d.Checks...)
	app.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"state": worker.State().String()})
	})

	return &TranslatorService{
		App:    app,
		Worker: worker,
		consumer: events.NewConsumer(d.Broker.Subscriber, cfg.Broker.DocumentCreatedTopic,
			worker.Handler(), cfg.Broker.NackDelay, eventMetrics, d.Log),
	}, nil
}

// Start opens the document-created subscription and processes it on g until ctx ends.
func (s *TranslatorService) Start(ctx context.Context, g *errgroup.Group) error {
	return startConsumers(ctx, g, s.consumer)
}
