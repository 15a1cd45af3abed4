package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docflow/internal/config"
	"docflow/internal/events"
	"docflow/internal/translation"
)

func TestNewTranslator(t *testing.T) {
	tr, err := NewTranslator(config.TranslatorConfig{Provider: "glossary"})
	require.NoError(t, err)
	assert.IsType(t, &translation.GlossaryTranslator{}, tr)

	tr, err = NewTranslator(config.TranslatorConfig{Provider: "libretranslate", URL: "http://localhost:5000"})
	require.NoError(t, err)
	assert.IsType(t, &translation.LibreTranslate{}, tr)

	_, err = NewTranslator(config.TranslatorConfig{Provider: "babelfish"})
	assert.Error(t, err)
}

func TestNewResultSink(t *testing.T) {
	log := zap.NewNop()
	cfg := config.TranslatorConfig{DocumentServiceURL: "http://localhost:8082"}

	for kind, want := range map[string]any{
		"events":      translation.EventSink{},
		"rest":        &translation.RESTSink{},
		"rest+events": translation.FallbackSink{},
	} {
		cfg.ResultSink = kind
		sink, err := NewResultSink(cfg, "", nil, log)
		require.NoError(t, err, kind)
		assert.IsType(t, want, sink, kind)
	}

	cfg.ResultSink = "carrier-pigeon"
	_, err := NewResultSink(cfg, "", nil, log)
	assert.Error(t, err)
}

func TestTranslatorService(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	log := zap.NewNop()

	cfg := config.Load()
	cfg.Translator.ResultSink = "events"
	broker := events.NewMemoryBroker(events.NewLoggerAdapter(log))
	defer broker.Close()

	svc, err := NewTranslatorService(TranslatorDeps{
		Config:     cfg,
		Broker:     broker,
		Translator: translation.NewGlossaryTranslator(nil),
		Registry:   prometheus.NewRegistry(),
		Log:        log,
	})
	require.NoError(t, err)

	results, err := broker.Subscriber.Subscribe(ctx, cfg.Broker.TranslationResultTopic)
	require.NoError(t, err)

	g, gctx := errgroup.WithContext(ctx)
	require.NoError(t, svc.Start(gctx, g))

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"documentId":7,"titleEn":"Quarterly report"}`))
	require.NoError(t, broker.Publisher.Publish(cfg.Broker.DocumentCreatedTopic, msg))

	select {
	case got := <-results:
		got.Ack()
		evt, err := events.DecodeTranslationResult(got.Payload)
		require.NoError(t, err)
		assert.Equal(t, int64(7), evt.DocumentID)
		assert.NotEmpty(t, evt.TranslatedTitle)
	case <-time.After(5 * time.Second):
		t.Fatal("no translation result published")
	}

	resp, err := svc.App.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, g.Wait())
}
