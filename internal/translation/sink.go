package translation

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"docflow/internal/apperr"
	"docflow/internal/events"
	"docflow/internal/identity"
	"docflow/internal/model"
)

// ResultPublisher is the part of events.Publisher used by EventSink.
type ResultPublisher interface {
	PublishTranslationResult(ctx context.Context, evt model.TranslationResultEvent) error
}

// EventSink publishes results on the translation-result topic.
type EventSink struct {
	Publisher ResultPublisher
}

func (s EventSink) Deliver(ctx context.Context, evt model.TranslationResultEvent) error {
	return s.Publisher.PublishTranslationResult(ctx, evt)
}

// RESTSink patches the document directly on the document service.
type RESTSink struct {
	baseURL     string
	internalKey string
	client      *http.Client
}

func NewRESTSink(baseURL, internalKey string, timeout time.Duration) *RESTSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RESTSink{
		baseURL:     strings.TrimRight(baseURL, "/"),
		internalKey: internalKey,
		client:      &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

func (s *RESTSink) Deliver(ctx context.Context, evt model.TranslationResultEvent) error {
	body, err := json.Marshal(map[string]string{"translatedTitle": evt.TranslatedTitle})
	if err != nil {
		return err
	}
	url := s.baseURL + "/api/v1/documents/" + strconv.FormatInt(evt.DocumentID, 10) + "/translate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.internalKey != "" {
		req.Header.Set(identity.InternalTokenHeader, s.internalKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperr.Upstream(fmt.Errorf("patch translation: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return events.Permanent(apperr.ErrDocumentNotFound)
	case resp.StatusCode == http.StatusBadRequest:
		return events.Permanent(fmt.Errorf("patch translation: status %d", resp.StatusCode))
	default:
		return apperr.Upstream(fmt.Errorf("patch translation: status %d", resp.StatusCode))
	}
}

// FallbackSink tries Primary and falls back to Secondary on a transient failure.
type FallbackSink struct {
	Primary   ResultSink
	Secondary ResultSink
	Log       *zap.Logger
}

func (s FallbackSink) Deliver(ctx context.Context, evt model.TranslationResultEvent) error {
	err := s.Primary.Deliver(ctx, evt)
	if err == nil || events.IsPermanent(err) {
		return err
	}
	if s.Log != nil {
		s.Log.Warn("primary result sink failed, falling back",
			zap.Int64("document_id", evt.DocumentID),
			zap.Error(err),
		)
	}
	return s.Secondary.Deliver(ctx, evt)
}
