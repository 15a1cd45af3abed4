package translation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// LibreTranslateConfig configures a LibreTranslate client.
type LibreTranslateConfig struct {
	URL        string
	APIKey     string
	Source     string
	Target     string
	// MaxRetries counts the calls after the first one; zero disables retrying.
	MaxRetries int
	// RetryDelay is the first wait after HTTP 429; it doubles on every retry.
	RetryDelay time.Duration
	Timeout    time.Duration
}

// LibreTranslate calls the /translate endpoint of a LibreTranslate server.
type LibreTranslate struct {
	cfg    LibreTranslateConfig
	client *http.Client
}

func NewLibreTranslate(cfg LibreTranslateConfig) *LibreTranslate {
	cfg.MaxRetries = max(cfg.MaxRetries, 0)
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &LibreTranslate{
		cfg: cfg,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func (l *LibreTranslate) Translate(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: l.cfg.Source,
		Target: l.cfg.Target,
		Format: "text",
		APIKey: l.cfg.APIKey,
	})
	if err != nil {
		return "", err
	}

	b := &backoff.ExponentialBackOff{
		InitialInterval:     l.cfg.RetryDelay,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         time.Minute,
	}
	b.Reset()

	out, err := backoff.Retry(ctx, func() (string, error) {
		return l.call(ctx, body)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(l.cfg.MaxRetries)+1),
	)
	if err != nil {
		return "", err
	}
	out = CleanOutput(out)
	if out == "" {
		return "", ErrEmptyResult
	}
	return out, nil
}

// call performs one request. Only HTTP 429 is retried.
func (l *LibreTranslate) call(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(l.cfg.URL, "/")+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("libretranslate request: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", backoff.Permanent(fmt.Errorf("read libretranslate response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}

	var lr libreResponse
	_ = json.Unmarshal(raw, &lr)
	if resp.StatusCode != http.StatusOK {
		msg := lr.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", backoff.Permanent(fmt.Errorf("libretranslate status %d: %s", resp.StatusCode, msg))
	}
	return lr.TranslatedText, nil
}
