package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"docflow/internal/config"
)

// Broker bundles the publisher and subscriber of one event channel.
type Broker struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	closers    []func() error
}

// Close releases the underlying connections.
func (b *Broker) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewBroker builds the broker selected by cfg.Kind ("memory" or "nats").
func NewBroker(cfg config.BrokerConfig, log *zap.Logger) (*Broker, error) {
	wl := NewLoggerAdapter(log)
	switch cfg.Kind {
	case "", "memory":
		return NewMemoryBroker(wl), nil
	case "nats":
		return newNATSBroker(cfg, wl)
	default:
		return nil, fmt.Errorf("unknown broker kind %q", cfg.Kind)
	}
}

// NewMemoryBroker returns an in-process broker. Messages published before a
// subscriber exists are dropped.
func NewMemoryBroker(logger watermill.LoggerAdapter) *Broker {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, logger)
	return &Broker{Publisher: ch, Subscriber: ch, closers: []func() error{ch.Close}}
}

func natsOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

// natsPublishRetries overrides the nats.go default of retrying a publish that found no responders.
const natsPublishRetries = 0

// natsPublisherConfig leaves JetStream publish retries at zero: a failed send
// surfaces to Publisher once and is not repeated.
func natsPublisherConfig(cfg config.BrokerConfig, logger watermill.LoggerAdapter) wmNats.PublisherConfig {
	return wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOptions(logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(natsPublishRetries),
			},
		},
	}
}

func newNATSBroker(cfg config.BrokerConfig, logger watermill.LoggerAdapter) (*Broker, error) {
	pub, err := wmNats.NewPublisher(natsPublisherConfig(cfg, logger), logger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     10 * time.Second,
		NatsOptions:      natsOptions(logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.DeliverAll(),
				natsgo.AckExplicit(),
			},
			DurablePrefix: cfg.QueueGroup,
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	return &Broker{Publisher: pub, Subscriber: sub, closers: []func() error{pub.Close, sub.Close}}, nil
}
