package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/incident"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/middleware"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/server"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/telemetry"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/sentinel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	verdict sentinel.Verdict
	calls   int
}

func (s *stubValidator) ValidateUserInput(context.Context, sentinel.Request) sentinel.Verdict {
	s.calls++
	return s.verdict
}

type stubLister struct{}

func (stubLister) List(context.Context, incident.ListParams) ([]incident.Record, error) {
	return nil, nil
}

func newTestDeps() (server.Dependencies, *stubValidator) {
	v := &stubValidator{verdict: sentinel.Verdict{IsValid: true, IsTravelRelated: true, Confidence: 90}}
	return server.Dependencies{
		SentinelHandler: sentinel.NewHandler(v),
		IncidentHandler: incident.NewHandler(stubLister{}, "admin-secret"),
		Metrics:         telemetry.NewMetrics(),
	}, v
}

func TestServer_HealthCheck(t *testing.T) {
	srv := server.New(":0", server.Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_ReadinessCheck_NoValidator(t *testing.T) {
	srv := server.New(":0", server.Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "validator not configured")
}

func TestServer_ReadinessCheck_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	deps, _ := newTestDeps()
	deps.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	srv := server.New(":0", deps)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	mr.Close()

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis ping failed")
}

func TestServer_NotFound(t *testing.T) {
	srv := server.New(":0", server.Dependencies{})

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_StartStop(t *testing.T) {
	srv := server.New("127.0.0.1:0", server.Dependencies{})

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// Give server time to start, then cancel
	cancel()

	err := <-errCh
	assert.NoError(t, err)
}

func TestServer_Validate(t *testing.T) {
	deps, v := newTestDeps()
	srv := server.New(":0", deps)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate",
		strings.NewReader(`{"destination":"Paris","notes":"museums"}`))
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, v.calls)
	assert.Contains(t, w.Body.String(), `"isValid":true`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_ValidateRateLimited(t *testing.T) {
	deps, v := newTestDeps()
	deps.RateLimiter = middleware.NewRateLimiter(0.001, 1, 0)
	srv := server.New(":0", deps)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/validate",
			strings.NewReader(`{"destination":"Paris","notes":"museums"}`))
		req.Header.Set("X-User-ID", "user-1")
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
	assert.Equal(t, 1, v.calls)

	// the token-guarded instruction block is not metered
	deps.SentinelHandler.WithInstructionsToken("ops-secret")
	srv = server.New(":0", deps)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/security-instructions", nil)
		req.Header.Set("Authorization", "Bearer ops-secret")
		srv.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestServer_SecurityInstructions(t *testing.T) {
	deps, _ := newTestDeps()
	deps.SentinelHandler.WithInstructionsToken("ops-secret")
	srv := server.New(":0", deps)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/security-instructions", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "sexual_content")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/security-instructions", nil)
	req.Header.Set("Authorization", "Bearer ops-secret")
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CRITICAL SECURITY REQUIREMENTS")
}

func TestServer_SecurityInstructionsUnmountedWithoutToken(t *testing.T) {
	deps, _ := newTestDeps()
	srv := server.New(":0", deps)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/security-instructions", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "CRITICAL SECURITY REQUIREMENTS")
}

func TestServer_IncidentsRequireToken(t *testing.T) {
	deps, _ := newTestDeps()
	srv := server.New(":0", deps)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/incidents", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/incidents", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestServer_IncidentsNotMountedWithoutHandler(t *testing.T) {
	deps, _ := newTestDeps()
	deps.IncidentHandler = nil
	srv := server.New(":0", deps)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/incidents", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	deps, _ := newTestDeps()
	srv := server.New(":0", deps)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
