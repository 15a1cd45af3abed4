package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"docflow/internal/apperr"
	"docflow/internal/model"
)

// PublisherConfig tunes a Publisher.
type PublisherConfig struct {
	Topics Topics
	// SendTimeout bounds how long a publish may wait for the broker.
	SendTimeout time.Duration
	// BreakerThreshold is the number of consecutive failures that opens the circuit.
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
}

// Publisher serializes workflow events and hands them to the broker with a
// bounded wait, behind a circuit breaker.
type Publisher struct {
	pub     message.Publisher
	cfg     PublisherConfig
	breaker *gobreaker.CircuitBreaker[any]
	metrics *Metrics
	log     *zap.Logger
	tracer  trace.Tracer
}

func NewPublisher(pub message.Publisher, cfg PublisherConfig, metrics *Metrics, log *zap.Logger) *Publisher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 5 * time.Second
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	threshold := cfg.BreakerThreshold
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "event-publisher",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &Publisher{
		pub:     pub,
		cfg:     cfg,
		breaker: cb,
		metrics: metrics,
		log:     log,
		tracer:  otel.Tracer("docflow/events"),
	}
}

// PublishDocumentCreated emits a DocumentCreatedEvent keyed by the document ID.
func (p *Publisher) PublishDocumentCreated(ctx context.Context, evt model.DocumentCreatedEvent) error {
	return p.publish(ctx, p.cfg.Topics.DocumentCreated, evt.DocumentID, evt)
}

// PublishTranslationResult emits a TranslationResultEvent keyed by the document ID.
func (p *Publisher) PublishTranslationResult(ctx context.Context, evt model.TranslationResultEvent) error {
	return p.publish(ctx, p.cfg.Topics.TranslationResult, evt.DocumentID, evt)
}

func (p *Publisher) publish(ctx context.Context, topic string, documentID int64, payload any) error {
	ctx, span := p.tracer.Start(ctx, "publish "+topic, trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataPartitionKey, partitionKey(documentID))
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(msg.Metadata))

	_, err = p.breaker.Execute(func() (any, error) {
		return nil, p.send(ctx, topic, msg)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		result := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
		}
		p.metrics.recordPublish(topic, result)
		return apperr.Upstream(fmt.Errorf("publish %s: %w", topic, err))
	}

	p.metrics.recordPublish(topic, "ok")
	p.log.Debug("event published",
		zap.String("topic", topic),
		zap.String("message_uuid", msg.UUID),
		zap.Int64("document_id", documentID),
	)
	return nil
}

// send waits for the broker at most SendTimeout. A late confirmation is discarded.
func (p *Publisher) send(ctx context.Context, topic string, msg *message.Message) error {
	done := make(chan error, 1)
	go func() {
		done <- p.pub.Publish(topic, msg)
	}()

	timer := time.NewTimer(p.cfg.SendTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return ErrSendTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
