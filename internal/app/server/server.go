package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"salesperf/internal/domain/auth"
	"salesperf/internal/domain/core"
	"salesperf/internal/domain/evaluations"
	"salesperf/internal/domain/reports"
	"salesperf/internal/domain/scoring"
	"salesperf/internal/platform/config"
	"salesperf/internal/platform/db"
	"salesperf/internal/platform/events"
	"salesperf/internal/platform/jobs"
	"salesperf/internal/platform/metrics"
	"salesperf/internal/transport/http/api"
	authhandler "salesperf/internal/transport/http/handlers/auth"
	corehandler "salesperf/internal/transport/http/handlers/core"
	evaluationshandler "salesperf/internal/transport/http/handlers/evaluations"
	reportshandler "salesperf/internal/transport/http/handlers/reports"
	"salesperf/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector

	publisher events.PublishCloser
	cancel    context.CancelFunc
}

func Run() {
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		logger.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("salesperf server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "err", err)
	}
}

// New wires storage, services and routes. Background workers live until ctx
// is done or Close is called.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
		slog.Warn("JWT_SECRET not set, using a random secret; tokens will not survive restarts")
	}

	criteria, err := cfg.ScoringCriteria()
	if err != nil {
		return nil, fmt.Errorf("scoring weights: %w", err)
	}
	engine, err := scoring.NewEngine(criteria)
	if err != nil {
		return nil, fmt.Errorf("scoring engine: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	publisher, err := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("event publisher: %w", err)
	}

	collector := metrics.New()
	authSvc := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)
	coreSvc := core.NewService(core.NewStore(pool))
	evalSvc := evaluations.NewService(evaluations.NewStore(pool), engine, collector.CountScored(publisher))
	reportSvc := reports.NewService(evalSvc, coreSvc, reports.NewStore(pool), cfg.ReportsDir)

	workerCtx, cancel := context.WithCancel(ctx)
	jobSvc := jobs.New(jobs.NewStore(pool))
	jobSvc.Start(workerCtx)
	jobSvc.Schedule(workerCtx, jobs.JobReportArchive, cfg.ReportArchiveInterval, func(ctx context.Context) (any, error) {
		return reportSvc.ArchiveCurrentQuarter(ctx)
	})

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(slog.Default(), collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-Total-Count", "Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc).RegisterRoutes(r)
		corehandler.NewHandler(coreSvc, authSvc).RegisterRoutes(r)
		evaluationshandler.NewHandler(evalSvc, authSvc).RegisterRoutes(r)
		reportshandler.NewHandler(reportSvc, jobSvc, authSvc).RegisterRoutes(r)
	})

	return &App{
		Config:    cfg,
		DB:        pool,
		Router:    router,
		Metrics:   collector,
		publisher: publisher,
		cancel:    cancel,
	}, nil
}

func (a *App) Close() {
	a.cancel()
	if err := a.publisher.Close(); err != nil {
		slog.Warn("event publisher close failed", "err", err)
	}
	a.DB.Close()
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
