package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/incident"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/llm"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/config"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/database"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/middleware"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/server"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/platform/telemetry"
	"github.com/Kulek-Kulek/ai-travel-planner-sub000/internal/sentinel"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logging
	logger := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format)
	telemetry.SetDefault(logger)

	slog.Info("travelguard starting",
		"version", version,
		"port", cfg.Server.Port,
		"llm_provider", cfg.LLM.Provider,
		"incident_sink", cfg.Incidents.Sink,
	)

	// Graceful shutdown on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := telemetry.NewMetrics()

	// Database is optional unless incidents go to postgres.
	var pool *database.Pool
	if cfg.Database.URL != "" {
		slog.Info("connecting to database")
		p, err := database.ConnectRetry(ctx, cfg.Database.URL, cfg.Database.MaxConns, 5, 500*time.Millisecond)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		pool = p
		defer pool.Close()

		migrationsURL := fmt.Sprintf("file://%s", cfg.Database.MigrationsPath)
		if err := database.RunMigrations(cfg.Database.URL, migrationsURL); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("migrations complete")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	// Incidents
	incidents, err := buildIncidentLogger(cfg, pool, rdb, logger, metrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := incidents.Close(); err != nil {
			slog.Error("closing incident logger", "error", err)
		}
	}()

	// Classifier provider
	provider, err := llm.New(ctx, llm.Config{
		Provider: cfg.LLM.Provider,
		BaseURL:  cfg.LLM.BaseURL,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		Region:   cfg.LLM.Region,
		Timeout:  time.Duration(cfg.LLM.TimeoutMS) * time.Millisecond,
	})
	if err != nil {
		return fmt.Errorf("creating llm provider: %w", err)
	}

	classifier := sentinel.NewClassifier(provider, sentinel.ClassifierConfig{
		Model:       cfg.LLM.Model,
		Temperature: &cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutMS) * time.Millisecond,
	})
	pipeline := sentinel.NewPipeline(sentinel.Config{
		MinNotesLength:       cfg.Sentinel.MinNotesLength,
		MaxNotesLength:       cfg.Sentinel.MaxNotesLength,
		MaxDestinationLength: cfg.Sentinel.MaxDestinationLength,
		SoftWatchThreshold:   cfg.Sentinel.SoftWatchThreshold,
		ConfidenceFloor:      cfg.Sentinel.ConfidenceFloor,
	}, classifier, incidents, metrics)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, 0)
		if cfg.RateLimit.TrustUserHeader {
			limiter.TrustUserHeader()
		}
	}

	deps := server.Dependencies{
		Pool:               pool,
		SentinelHandler:    sentinel.NewHandler(pipeline).WithInstructionsToken(cfg.Sentinel.InstructionsToken),
		IncidentHandler:    buildIncidentHandler(pool, cfg.Incidents.AdminToken),
		Metrics:            metrics,
		RateLimiter:        limiter,
		Logger:             logger,
		CORSAllowedOrigins: cfg.Server.AllowedOrigins(),
	}
	if rdb != nil {
		deps.Redis = rdb
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := server.New(addr, deps)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	if limiter != nil {
		g.Go(func() error { return limiter.Run(gctx) })
	}

	slog.Info("server ready", "addr", addr, "rate_limit", cfg.RateLimit.Enabled)
	return g.Wait()
}

// buildIncidentLogger selects the incident sink named in config.
func buildIncidentLogger(cfg *config.Config, pool *database.Pool, rdb *redis.Client, logger *slog.Logger, metrics *telemetry.Metrics) (incident.Logger, error) {
	var w incident.Writer
	switch sink := strings.ToLower(strings.TrimSpace(cfg.Incidents.Sink)); sink {
	case "none":
		return incident.NopLogger{}, nil
	case "", "log":
		w = incident.NewLogWriter(logger)
	case "postgres":
		if pool == nil {
			return nil, fmt.Errorf("incident sink %q requires database.url", sink)
		}
		w = incident.NewStore(pool)
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("incident sink %q requires redis.addr", sink)
		}
		w = incident.NewRedisStream(rdb, cfg.Redis.Stream, cfg.Redis.StreamMaxLen)
	default:
		return nil, fmt.Errorf("unknown incident sink %q", cfg.Incidents.Sink)
	}

	return incident.NewAsyncLogger(w, incident.LoggerConfig{
		BufferSize:    cfg.Incidents.BufferSize,
		BatchSize:     cfg.Incidents.BatchSize,
		FlushInterval: time.Duration(cfg.Incidents.FlushIntervalMS) * time.Millisecond,
		OnWriteError:  metrics.IncidentWriteFailed,
	}), nil
}

// buildIncidentHandler mounts the admin listing only when incidents can be
// read back and a token guards them.
func buildIncidentHandler(pool *database.Pool, adminToken string) *incident.Handler {
	if pool == nil || strings.TrimSpace(adminToken) == "" {
		return nil
	}
	return incident.NewHandler(incident.NewStore(pool), adminToken)
}
