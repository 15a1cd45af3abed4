package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// HandlerFunc processes one message. Returning nil acks it; an error wrapped with
// Permanent acks and drops it; any other error nacks it for redelivery.
type HandlerFunc func(ctx context.Context, msg *message.Message) error

// Consumer reads one topic and dispatches every message to a handler, one at a time.
type Consumer struct {
	sub       message.Subscriber
	topic     string
	handler   HandlerFunc
	nackDelay time.Duration
	metrics   *Metrics
	log       *zap.Logger
}

func NewConsumer(sub message.Subscriber, topic string, handler HandlerFunc, nackDelay time.Duration, metrics *Metrics, log *zap.Logger) *Consumer {
	return &Consumer{
		sub:       sub,
		topic:     topic,
		handler:   handler,
		nackDelay: nackDelay,
		metrics:   metrics,
		log:       log.With(zap.String("topic", topic)),
	}
}

// Subscribe opens the subscription. Messages are processed by Run.
func (c *Consumer) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	messages, err := c.sub.Subscribe(ctx, c.topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", c.topic, err)
	}
	return messages, nil
}

// Run subscribes and processes messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	messages, err := c.Subscribe(ctx)
	if err != nil {
		return err
	}
	return c.Process(ctx, messages)
}

// Process handles messages from an open subscription until it closes or ctx ends.
func (c *Consumer) Process(ctx context.Context, messages <-chan *message.Message) error {
	c.log.Info("consumer started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info("consumer stopped")
			return nil
		case msg, ok := <-messages:
			if !ok {
				c.log.Info("subscription closed")
				return nil
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Metadata))
	msgCtx, span := otel.Tracer("docflow/events").Start(msgCtx, "consume "+c.topic, trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	err := c.handler(msgCtx, msg)
	switch {
	case err == nil:
		msg.Ack()
		c.metrics.recordConsume(c.topic, "ok")
	case IsPermanent(err):
		c.log.Warn("message dropped",
			zap.String("message_uuid", msg.UUID),
			zap.String("partition_key", msg.Metadata.Get(MetadataPartitionKey)),
			zap.Error(err),
		)
		msg.Ack()
		c.metrics.recordConsume(c.topic, "dropped")
	default:
		c.log.Error("message processing failed, will be redelivered",
			zap.String("message_uuid", msg.UUID),
			zap.String("partition_key", msg.Metadata.Get(MetadataPartitionKey)),
			zap.Error(err),
		)
		span.RecordError(err)
		c.metrics.recordConsume(c.topic, "retry")
		if c.nackDelay > 0 {
			select {
			case <-time.After(c.nackDelay):
			case <-ctx.Done():
			}
		}
		msg.Nack()
	}
}
