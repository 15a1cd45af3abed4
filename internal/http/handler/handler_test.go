package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"docflow/internal/apperr"
	"docflow/internal/http/middleware"
)

const (
	userHeader  = "X-User-Id"
	rolesHeader = "X-User-Roles"
)

// newTestApp mirrors the middleware chain of a downstream service.
func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	app.Use(middleware.RequestID())
	app.Use(middleware.Identity(userHeader, rolesHeader))
	return app
}

type call struct {
	method string
	path   string
	body   any
	user   string
	roles  string
	header map[string]string
}

func do(t *testing.T, app *fiber.App, c call) *http.Response {
	t.Helper()
	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.Header.Set(userHeader, c.user)
	}
	if c.roles != "" {
		req.Header.Set(rolesHeader, c.roles)
	}
	for k, v := range c.header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(DBCheck(db)))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		body := decode[errorPayload](t, resp)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Code)
		assert.Equal(t, "database unavailable", body.Message)
	})
}

func TestHealthCheck_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(RedisCheck(client)))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mr.Close()
	resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.New(core))})
	app.Use(middleware.RequestID())

	app.Get("/validation", func(c *fiber.Ctx) error {
		return apperr.Validation("validation failed", map[string]string{"titleEn": "is required"})
	})
	app.Get("/denied", func(c *fiber.Ctx) error { return apperr.ErrNoDepartmentMembership })
	app.Get("/conflict", func(c *fiber.Ctx) error { return apperr.ErrUserExists })
	app.Get("/upstream", func(c *fiber.Ctx) error { return apperr.Upstream(errors.New("dial tcp: refused")) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("pq: relation documents does not exist") })

	t.Run("validation carries fields", func(t *testing.T) {
		resp := do(t, app, call{method: http.MethodGet, path: "/validation"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body := decode[errorPayload](t, resp)
		assert.Equal(t, 400, body.Status)
		assert.Equal(t, "Bad Request", body.Error)
		assert.Equal(t, "VALIDATION_ERROR", body.Code)
		assert.Equal(t, "/validation", body.Path)
		assert.Equal(t, map[string]string{"titleEn": "is required"}, body.Fields)
		assert.NotEmpty(t, body.RequestID)
		assert.False(t, body.Timestamp.IsZero())
	})

	t.Run("typed errors keep code", func(t *testing.T) {
		resp := do(t, app, call{method: http.MethodGet, path: "/denied"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "NO_DEPARTMENT_MEMBERSHIP", decode[errorPayload](t, resp).Code)

		resp = do(t, app, call{method: http.MethodGet, path: "/conflict"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)

		resp = do(t, app, call{method: http.MethodGet, path: "/upstream"})
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.NotContains(t, decode[errorPayload](t, resp).Message, "refused")
	})

	t.Run("unexpected errors are hidden and logged", func(t *testing.T) {
		resp := do(t, app, call{method: http.MethodGet, path: "/boom"})
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		body := decode[errorPayload](t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Code)
		assert.Equal(t, "internal server error", body.Message)

		entries := logs.FilterMessage("unhandled error").All()
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].ContextMap()["error"], "relation documents")
	})

	t.Run("not found route", func(t *testing.T) {
		resp := do(t, app, call{method: http.MethodGet, path: "/non-existent"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decode[errorPayload](t, resp).Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp := do(t, app, call{method: http.MethodPost, path: "/boom"})
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decode[errorPayload](t, resp).Code)
	})
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "docflow_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	app := fiber.New()
	app.Get("/metrics", Metrics(reg))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), "docflow_test_total 1")
}

func TestPage(t *testing.T) {
	app := newTestApp()
	app.Get("/p", func(c *fiber.Ctx) error {
		limit, offset, err := page(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"limit": limit, "offset": offset})
	})

	tests := []struct {
		query    string
		status   int
		code     string
		expected map[string]int
	}{
		{query: "", status: 200, expected: map[string]int{"limit": 0, "offset": 0}},
		{query: "?limit=5&offset=10", status: 200, expected: map[string]int{"limit": 5, "offset": 10}},
		{query: "?limit=abc", status: 400, code: "INVALID_LIMIT"},
		{query: "?offset=-1", status: 400, code: "INVALID_OFFSET"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := do(t, app, call{method: http.MethodGet, path: "/p" + tt.query})
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.code != "" {
				assert.Equal(t, tt.code, decode[errorPayload](t, resp).Code)
				return
			}
			assert.Equal(t, tt.expected, decode[map[string]int](t, resp))
		})
	}
}

func TestBlockInternalAndForward(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-User", r.Header.Get(userHeader))
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, r.Method+" "+r.URL.RequestURI())
	}))
	defer upstream.Close()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
	app.All("/api/*", BlockInternal(), Forward(upstream.URL+"/", nil, time.Second))

	t.Run("forwards method path and query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/documents?limit=5", strings.NewReader("{}"))
		req.Header.Set(userHeader, "alice")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusTeapot, resp.StatusCode)
		assert.Equal(t, "alice", resp.Header.Get("X-Seen-User"))
		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "POST /api/v1/documents?limit=5", string(raw))
	})

	t.Run("translate is never forwarded", func(t *testing.T) {
		for _, p := range []string{
			"/api/v1/documents/7/translate",
			"/api/v1/documents/7/translate/",
			"/api/v1/documents/7/Translate",
			"/api/v1/documents/7/TRANSLATE//",
		} {
			resp, _ := app.Test(httptest.NewRequest(http.MethodPatch, p, nil))
			assert.Equal(t, http.StatusNotFound, resp.StatusCode, p)
		}
	})

	t.Run("lookalike segments are forwarded", func(t *testing.T) {
		for _, p := range []string{"/api/v1/documents/7/translated", "/api/v1/translate-jobs"} {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, p, nil))
			assert.Equal(t, http.StatusTeapot, resp.StatusCode, p)
		}
	})

	t.Run("unreachable upstream", func(t *testing.T) {
		down := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(nil)})
		down.All("/api/*", Forward("http://127.0.0.1:1", nil, time.Second))

		resp, _ := down.Test(httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}
