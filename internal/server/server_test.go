package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"docflow/internal/config"
	"docflow/internal/events"
	"docflow/internal/repository/memory"
	"docflow/internal/service"
	"docflow/internal/token"
	"docflow/internal/translation"
)

const translatedTitle = "Título traducido"

// serve runs app on a loopback listener until the test ends.
func serve(t *testing.T, app *fiber.App) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })
	return "http://" + ln.Addr().String()
}

type stack struct {
	gateway *fiber.App
	docs    *DocumentService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	log := zap.NewNop()

	cfg := config.Load()
	cfg.Document.SeedDepartments = false
	cfg.Broker.NackDelay = 10 * time.Millisecond

	tokens, err := token.NewManager(strings.Repeat("e2e-secret-", 4), time.Hour)
	require.NoError(t, err)

	users := service.NewUserService(memory.NewUserStore(), bcrypt.MinCost, log)
	require.NoError(t, users.EnsureAdmin(ctx, "admin", "admin-pass"))
	authApp, err := NewAuthApp(AuthDeps{Config: cfg, Users: users, Tokens: tokens, Registry: prometheus.NewRegistry(), Log: log})
	require.NoError(t, err)
	cfg.Gateway.AuthServiceURL = serve(t, authApp)

	broker := events.NewMemoryBroker(events.NewLoggerAdapter(log))
	t.Cleanup(func() { _ = broker.Close() })
	docs, err := NewDocumentService(DocumentDeps{
		Config: cfg,
		Stores: MemoryStores(),
		Broker: broker,
		Translator: translation.TranslatorFunc(func(context.Context, string) (string, error) {
			return translatedTitle, nil
		}),
		Registry: prometheus.NewRegistry(),
		Log:      log,
	})
	require.NoError(t, err)

	g, gctx := errgroup.WithContext(ctx)
	require.NoError(t, docs.Start(gctx, g))
	t.Cleanup(func() {
		cancel()
		_ = g.Wait()
	})
	cfg.Gateway.DocumentServiceURL = serve(t, docs.App)

	gateway, err := NewGatewayApp(GatewayDeps{Config: cfg, Verifier: tokens, Registry: prometheus.NewRegistry(), Log: log})
	require.NoError(t, err)

	return &stack{gateway: gateway, docs: docs}
}

func (s *stack) call(t *testing.T, method, path, bearer string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := s.gateway.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (s *stack) login(t *testing.T, username, password string) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(username+":"+password)))
	resp, err := s.gateway.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Token
}

func (s *stack) signup(t *testing.T, username string) string {
	t.Helper()
	status, _ := s.call(t, http.MethodPost, "/auth/signup", "", map[string]string{"username": username, "password": username + "-pass"})
	require.Equal(t, http.StatusCreated, status)
	return s.login(t, username, username+"-pass")
}

func decodeInto[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

type documentBody struct {
	ID      int64   `json:"id"`
	TitleEs *string `json:"titleEs"`
}

func TestEndToEnd_TranslationWorkflow(t *testing.T) {
	s := newStack(t)

	admin := s.login(t, "admin", "admin-pass")
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	for i, name := range []string{"Engineering", "Finance"} {
		status, raw := s.call(t, http.MethodPost, "/api/v1/departments", admin, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, status, string(raw))
		assert.Equal(t, int64(i+1), decodeInto[documentBody](t, raw).ID)
	}
	status, _ := s.call(t, http.MethodPost, "/api/v1/categories", admin, map[string]string{"name": "Reports"})
	require.Equal(t, http.StatusCreated, status)

	status, _ = s.call(t, http.MethodPost, "/api/v1/departments/1/users", admin, map[string]string{"userId": "alice"})
	require.Equal(t, http.StatusNoContent, status)

	newDoc := func(department int64) map[string]any {
		return map[string]any{
			"titleEn": "Quarterly report", "fileKey": "docs/q1.pdf", "fileName": "q1.pdf",
			"fileType": "application/pdf", "fileSize": 2048, "categoryId": 1, "departmentId": department,
		}
	}

	status, raw := s.call(t, http.MethodPost, "/api/v1/documents", alice, newDoc(1))
	require.Equal(t, http.StatusCreated, status, string(raw))
	created := decodeInto[documentBody](t, raw)
	assert.Nil(t, created.TitleEs)

	path := fmt.Sprintf("/api/v1/documents/%d", created.ID)
	assert.Eventually(t, func() bool {
		status, raw := s.call(t, http.MethodGet, path, alice, nil)
		if status != http.StatusOK {
			return false
		}
		doc := decodeInto[documentBody](t, raw)
		return doc.TitleEs != nil && *doc.TitleEs == translatedTitle
	}, 5*time.Second, 20*time.Millisecond)

	status, raw = s.call(t, http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Contains(t, string(raw), "NO_DEPARTMENT_MEMBERSHIP")

	status, _ = s.call(t, http.MethodGet, path, admin, nil)
	assert.Equal(t, http.StatusOK, status)

	assert.Eventually(t, func() bool {
		return s.docs.Worker.State() == translation.StateIdle
	}, time.Second, 10*time.Millisecond)
}

func TestEndToEnd_CreateOutsideMembership(t *testing.T) {
	s := newStack(t)

	admin := s.login(t, "admin", "admin-pass")
	alice := s.signup(t, "alice")

	for _, name := range []string{"Engineering", "Finance"} {
		status, _ := s.call(t, http.MethodPost, "/api/v1/departments", admin, map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, status)
	}
	status, _ := s.call(t, http.MethodPost, "/api/v1/categories", admin, map[string]string{"name": "Reports"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.call(t, http.MethodPost, "/api/v1/departments/1/users", admin, map[string]string{"userId": "alice"})
	require.Equal(t, http.StatusNoContent, status)

	status, _ = s.call(t, http.MethodPost, "/api/v1/documents", alice, map[string]any{
		"titleEn": "Budget", "fileKey": "docs/budget.xlsx", "fileName": "budget.xlsx",
		"categoryId": 1, "departmentId": 2,
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, raw := s.call(t, http.MethodGet, "/api/v1/documents/all", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), decodeInto[map[string]any](t, raw)["total"])
}

func TestEndToEnd_GatewayBoundary(t *testing.T) {
	s := newStack(t)
	alice := s.signup(t, "alice")

	t.Run("missing token", func(t *testing.T) {
		status, _ := s.call(t, http.MethodGet, "/api/v1/documents", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("forged token", func(t *testing.T) {
		other, err := token.NewManager(strings.Repeat("x", 32), time.Hour)
		require.NoError(t, err)
		forged, err := other.Issue("admin", []string{"ROLE_ADMIN"})
		require.NoError(t, err)

		status, _ := s.call(t, http.MethodGet, "/api/v1/documents/all", forged, nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("spoofed trust header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/all", nil)
		req.Header.Set("Authorization", "Bearer "+alice)
		req.Header.Set("X-User-Roles", "ROLE_ADMIN")
		resp, err := s.gateway.Test(req, 5000)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("translate endpoint is internal", func(t *testing.T) {
		for _, p := range []string{
			"/api/v1/documents/1/translate",
			"/api/v1/documents/1/Translate",
			"/api/v1/documents/1/TRANSLATE/",
			"/API/v1/documents/1/translate",
		} {
			status, _ := s.call(t, http.MethodPatch, p, alice, map[string]string{"translatedTitle": "x"})
			assert.Equal(t, http.StatusNotFound, status, p)
		}
	})

	t.Run("me", func(t *testing.T) {
		status, raw := s.call(t, http.MethodGet, "/auth/me", alice, nil)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "alice", decodeInto[map[string]any](t, raw)["username"])
	})

	t.Run("admin routes", func(t *testing.T) {
		status, _ := s.call(t, http.MethodGet, "/admin/users", alice, nil)
		assert.Equal(t, http.StatusForbidden, status)
	})
}

func TestEndToEnd_StoredValuesSurviveLaterRequests(t *testing.T) {
	s := newStack(t)

	admin := s.login(t, "admin", "admin-pass")
	alice := s.signup(t, "alice")
	bob := s.signup(t, "bob")

	status, raw := s.call(t, http.MethodPost, "/admin/users/carol", admin, map[string]any{"password": "carol-pass"})
	require.Equal(t, http.StatusCreated, status, string(raw))
	for range 5 {
		status, _ = s.call(t, http.MethodGet, "/admin/users/xxxxx", admin, nil)
		assert.Equal(t, http.StatusNotFound, status)
	}
	status, raw = s.call(t, http.MethodGet, "/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), `"carol"`)
	assert.NotContains(t, string(raw), "xxxxx")
	assert.NotEmpty(t, s.login(t, "carol", "carol-pass"))

	status, _ = s.call(t, http.MethodPost, "/api/v1/departments", admin, map[string]string{"name": "Engineering"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.call(t, http.MethodPost, "/api/v1/categories", admin, map[string]string{"name": "Reports"})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.call(t, http.MethodPost, "/api/v1/departments/1/users", admin, map[string]string{"userId": "alice"})
	require.Equal(t, http.StatusNoContent, status)

	status, raw = s.call(t, http.MethodPost, "/api/v1/documents", alice, map[string]any{
		"titleEn": "Roadmap", "fileKey": "docs/roadmap.pdf", "fileName": "roadmap.pdf",
		"categoryId": 1, "departmentId": 1,
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	path := fmt.Sprintf("/api/v1/documents/%d", decodeInto[documentBody](t, raw).ID)

	for range 5 {
		s.call(t, http.MethodGet, "/api/v1/documents", bob, nil)
		s.call(t, http.MethodGet, "/auth/me", admin, nil)
	}

	status, raw = s.call(t, http.MethodGet, path, admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", decodeInto[map[string]any](t, raw)["ownerUserId"])
}

func TestNewGatewayApp_FilterRunsBeforeSystemRoutes(t *testing.T) {
	tokens, err := token.NewManager(strings.Repeat("gw-secret-", 4), time.Hour)
	require.NoError(t, err)
	cfg := config.Load()
	cfg.Gateway.PublicPaths = []string{"/healthz"}

	app, err := NewGatewayApp(GatewayDeps{Config: cfg, Verifier: tokens, Registry: prometheus.NewRegistry(), Log: zap.NewNop()})
	require.NoError(t, err)

	tests := []struct {
		path   string
		bearer bool
		want   int
	}{
		{path: "/healthz", want: http.StatusOK},
		{path: "/metrics", want: http.StatusUnauthorized},
		{path: "/health", want: http.StatusUnauthorized},
		{path: "/metrics", bearer: true, want: http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		if tt.bearer {
			tok, err := tokens.Issue("alice", []string{"ROLE_USER"})
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.StatusCode, tt.path)
	}
}
