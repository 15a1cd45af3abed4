package events

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts publish and consume outcomes per topic.
type Metrics struct {
	published *prometheus.CounterVec
	consumed  *prometheus.CounterVec
}

// NewMetrics registers the event counters on reg. Registering twice on the same
// registry returns the collectors registered first.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	published, err := registerCounter(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events handed to the broker, by topic and result.",
		},
		[]string{"topic", "result"},
	))
	if err != nil {
		return nil, err
	}
	consumed, err := registerCounter(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Events received from the broker, by topic and result.",
		},
		[]string{"topic", "result"},
	))
	if err != nil {
		return nil, err
	}
	return &Metrics{published: published, consumed: consumed}, nil
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) recordPublish(topic, result string) {
	if m != nil {
		m.published.WithLabelValues(topic, result).Inc()
	}
}

func (m *Metrics) recordConsume(topic, result string) {
	if m != nil {
		m.consumed.WithLabelValues(topic, result).Inc()
	}
}
