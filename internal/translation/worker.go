package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"docflow/internal/events"
	"docflow/internal/model"
)

// State is the phase of the worker: IDLE, TRANSLATING or PUBLISHING.
type State int32

const (
	StateIdle State = iota
	StateTranslating
	StatePublishing
)

func (s State) String() string {
	switch s {
	case StateTranslating:
		return "TRANSLATING"
	case StatePublishing:
		return "PUBLISHING"
	default:
		return "IDLE"
	}
}

// ResultSink delivers a computed translation to the document service.
type ResultSink interface {
	Deliver(ctx context.Context, evt model.TranslationResultEvent) error
}

// Metrics exposes the worker state and translation outcomes.
type Metrics struct {
	state        prometheus.Gauge
	translations *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "translation_worker_state",
			Help: "Current worker state: 0 idle, 1 translating, 2 publishing.",
		}),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "translations_total",
			Help: "Processed document-created events by result.",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{m.state, m.translations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WorkerConfig groups the collaborators of a Worker.
type WorkerConfig struct {
	Translator Translator
	Sink       ResultSink
	Dedup      events.Deduplicator
	Metrics    *Metrics
	Log        *zap.Logger
}

// Worker consumes DocumentCreatedEvents one at a time, translates the title and
// delivers the result. Translation failures are logged and nothing is delivered.
type Worker struct {
	cfg   WorkerConfig
	state atomic.Int32
}

func NewWorker(cfg WorkerConfig) *Worker {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.Dedup == nil {
		cfg.Dedup = events.NewMemoryDeduplicator(10 * time.Minute)
	}
	return &Worker{cfg: cfg}
}

func (w *Worker) State() State { return State(w.state.Load()) }

func (w *Worker) setState(s State) {
	w.state.Store(int32(s))
	if w.cfg.Metrics != nil {
		w.cfg.Metrics.state.Set(float64(s))
	}
}

func (w *Worker) count(result string) {
	if w.cfg.Metrics != nil {
		w.cfg.Metrics.translations.WithLabelValues(result).Inc()
	}
}

// Handler adapts the worker to an events.Consumer.
func (w *Worker) Handler() events.HandlerFunc {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.DecodeDocumentCreated(msg.Payload)
		if err != nil {
			w.count("malformed")
			return events.Permanent(err)
		}
		return w.Process(ctx, evt)
	}
}

// Process handles one event. A redelivered event whose key is still claimed is
// skipped. Translation errors are permanent; delivery errors are returned for redelivery.
func (w *Worker) Process(ctx context.Context, evt model.DocumentCreatedEvent) error {
	log := w.cfg.Log.With(zap.Int64("document_id", evt.DocumentID))
	key := events.DedupKey(evt.DocumentID, evt.TitleEn)

	claimed, err := w.cfg.Dedup.Claim(ctx, key)
	if err != nil {
		return fmt.Errorf("claim %s: %w", key, err)
	}
	if !claimed {
		log.Debug("duplicate document-created event skipped")
		w.count("duplicate")
		return nil
	}
	defer w.setState(StateIdle)

	w.setState(StateTranslating)
	translated, err := w.cfg.Translator.Translate(ctx, evt.TitleEn)
	if err == nil && strings.TrimSpace(translated) == "" {
		err = ErrEmptyResult
	}
	if err != nil {
		log.Error("translation failed", zap.String("title", evt.TitleEn), zap.Error(err))
		w.forget(ctx, key, log)
		w.count("failed")
		return events.Permanent(err)
	}

	w.setState(StatePublishing)
	result := model.TranslationResultEvent{DocumentID: evt.DocumentID, TranslatedTitle: translated}
	if err := w.cfg.Sink.Deliver(ctx, result); err != nil {
		w.forget(ctx, key, log)
		if events.IsPermanent(err) {
			log.Warn("translation result rejected", zap.Error(err))
			w.count("rejected")
			return err
		}
		log.Error("translation result not delivered", zap.Error(err))
		w.count("delivery_failed")
		return err
	}

	log.Info("document title translated")
	w.count("ok")
	return nil
}

func (w *Worker) forget(ctx context.Context, key string, log *zap.Logger) {
	if err := w.cfg.Dedup.Forget(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("dedup key not released", zap.String("key", key), zap.Error(err))
	}
}
