// Package main is the entrypoint for the Bookspace API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gurova-J/bookspace-backend/internal/auth"
	"github.com/Gurova-J/bookspace-backend/internal/cache"
	"github.com/Gurova-J/bookspace-backend/internal/config"
	"github.com/Gurova-J/bookspace-backend/internal/events"
	"github.com/Gurova-J/bookspace-backend/internal/handler"
	"github.com/Gurova-J/bookspace-backend/internal/metrics"
	"github.com/Gurova-J/bookspace-backend/internal/repository"
	"github.com/Gurova-J/bookspace-backend/internal/server"
	"github.com/Gurova-J/bookspace-backend/internal/service"
	"github.com/Gurova-J/bookspace-backend/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	recorder, metricsEndpoint := initMetrics(cfg)
	views := cache.NewViews(cacheClient, cfg.CacheTTL)
	publisher := events.NewPublisher(cacheClient.Client(), logger, recorder)

	tokenEnv := auth.EnvTest
	if cfg.IsProduction() {
		tokenEnv = auth.EnvLive
	}

	accounts := service.NewAccountService(repo, cacheClient, tokenEnv, cfg.SessionTTL, logger)
	svcs := services{
		accounts:  accounts,
		profiles:  service.NewProfileService(repo),
		catalog:   service.NewCatalogService(repo, cacheClient, views, logger),
		library:   service.NewLibraryService(repo, publisher, views, logger, recorder),
		stats:     service.NewStatsService(repo, views, logger, recorder),
		plans:     service.NewPlanService(repo, views, cfg.PlanUpdateCompat, logger, recorder),
		recommend: service.NewRecommendationService(repo, views, logger, recorder),
		reviews:   service.NewReviewService(repo),
	}

	r := setupRouter(routerDeps{
		cfg:      cfg,
		logger:   logger,
		validate: validation.New(),
		services: svcs,
		health: handler.NewHealthHandler(
			handler.Dependency{Name: "postgres", Checker: repo},
			handler.Dependency{Name: "redis", Checker: cacheClient},
		),
		limiter: cacheClient,
		metrics: metricsEndpoint,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if cfg.EventsWorkerEnabled {
		worker := events.NewWorker(
			cacheClient.Client(),
			repository.NewLibraryEventRepository(repo),
			views,
			logger,
			events.NewConsumerID(),
			recorder,
		)
		worker.SetBatchSize(cfg.EventsBatchSize)

		go func() {
			if err := worker.Run(context.WithoutCancel(ctx)); err != nil && ctx.Err() == nil {
				logger.Error("library event worker stopped", "error", err)
			}
		}()
		srv.OnShutdown("library-event-worker", worker.Shutdown)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"plan_update_compat", cfg.PlanUpdateCompat,
		"metrics_backend", cfg.MetricsBackend,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// initMetrics builds the recorder and the /metrics endpoint for the configured backend.
func initMetrics(cfg *config.Config) (metrics.Recorder, http.Handler) {
	if cfg.MetricsBackend == "memory" {
		rec := metrics.NewInMemory()
		return rec, http.HandlerFunc(handler.NewMetricsHandler(rec).Metrics)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.NewPrometheus(reg), promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
