package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/incident"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/middleware"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/telemetry"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/sentinel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Dependencies holds all injected dependencies for the server. Everything
// except SentinelHandler is optional.
type Dependencies struct {
	Pool               *pgxpool.Pool
	Redis              redis.Cmdable
	SentinelHandler    *sentinel.Handler
	IncidentHandler    *incident.Handler
	Metrics            *telemetry.Metrics
	RateLimiter        *middleware.RateLimiter
	Logger             *slog.Logger
	CORSAllowedOrigins []string
}

type Server struct {
	httpServer *http.Server
	deps       Dependencies
	handler    http.Handler
}

func New(addr string, deps Dependencies) *Server {
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		deps: deps,
	}

	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /healthz", s.handleHealth)
	topMux.HandleFunc("GET /readyz", s.handleReadiness)

	if deps.Metrics != nil {
		topMux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	if deps.SentinelHandler != nil {
		validation := http.NewServeMux()
		deps.SentinelHandler.RegisterRoutes(validation)

		// Only validation spends money upstream, so only it is rate limited.
		var validate http.Handler = validation
		if deps.RateLimiter != nil {
			validate = deps.RateLimiter.Middleware(validate)
		}
		topMux.Handle("/api/v1/validate", validate)
		topMux.Handle("/api/v1/security-instructions", validation)
	}

	if deps.IncidentHandler != nil {
		topMux.HandleFunc("GET /api/v1/incidents", deps.IncidentHandler.HandleList)
	}

	// Wrap top-level mux with observability middleware
	var handler http.Handler = topMux
	if deps.Logger != nil {
		handler = middleware.Logging(deps.Logger)(handler)
	}
	handler = middleware.RequestID(handler)
	if len(deps.CORSAllowedOrigins) > 0 {
		handler = middleware.CORS(deps.CORSAllowedOrigins)(handler)
	}

	s.handler = handler
	s.httpServer.Handler = handler
	return s
}

// Handler returns the full middleware-wrapped handler chain (for testing).
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}

	slog.Info("server starting", "addr", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadiness reports ready once the validator is wired and every
// configured backing store answers a ping.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if s.deps.SentinelHandler == nil {
		notReady(w, "validator not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.deps.Pool != nil {
		if err := s.deps.Pool.Ping(ctx); err != nil {
			notReady(w, "database ping failed")
			return
		}
	}
	if s.deps.Redis != nil {
		if err := s.deps.Redis.Ping(ctx).Err(); err != nil {
			notReady(w, "redis ping failed")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func notReady(w http.ResponseWriter, reason string) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status": "not ready",
		"reason": reason,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
