package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"hrflow/internal/domain/attendance"
	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/auth"
	"hrflow/internal/domain/core"
	"hrflow/internal/domain/leave"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/domain/onboarding"
	"hrflow/internal/platform/config"
	"hrflow/internal/platform/crypto"
	"hrflow/internal/platform/db"
	"hrflow/internal/platform/email"
	"hrflow/internal/platform/jobs"
	"hrflow/internal/platform/kafka"
	"hrflow/internal/platform/metrics"
	attendancehandler "hrflow/internal/transport/http/handlers/attendance"
	audithandler "hrflow/internal/transport/http/handlers/audit"
	corehandler "hrflow/internal/transport/http/handlers/core"
	leavehandler "hrflow/internal/transport/http/handlers/leave"
	notificationshandler "hrflow/internal/transport/http/handlers/notifications"
	onboardinghandler "hrflow/internal/transport/http/handlers/onboarding"
	"hrflow/internal/transport/http/api"
	"hrflow/internal/transport/http/middleware"
	"hrflow/internal/transport/http/shared"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Jobs    *jobs.Service
	Metrics *metrics.Collector

	publisher kafka.PublishCloser
	stopJobs  context.CancelFunc
}

// New connects, migrates, seeds and wires every handler. Close releases what
// New acquired.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, db.Migrations()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, err
	}

	jobCtx, stopJobs := context.WithCancel(context.Background())
	jobsSvc := jobs.New(pool, cfg.NotifyWorkers, cfg.NotifyQueueSize)
	jobsSvc.Start(jobCtx)

	publisher := kafka.New(cfg)
	notifier := notifications.New(notifications.NewStore(pool), email.New(cfg))
	notifier.Publisher = publisher
	notifier.Jobs = jobsSvc
	notifier.DefaultFrom = cfg.EmailFrom

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	app := &App{
		Config:    cfg,
		DB:        pool,
		Jobs:      jobsSvc,
		Metrics:   collector,
		publisher: publisher,
		stopJobs:  stopJobs,
	}
	app.Router = app.routes(sealer, notifier)
	return app, nil
}

func (a *App) routes(sealer *crypto.Service, notifier *notifications.Service) http.Handler {
	cfg := a.Config
	perms := auth.NewStaticPermissions()
	auditSvc := audit.New(a.DB)
	accounts := auth.NewService(auth.NewStore(a.DB))
	directory := core.NewService(core.NewStore(a.DB))
	effects := shared.Effects{Notifier: notifier, Audit: auditSvc, Metrics: a.Metrics}

	onboardingSvc := onboarding.NewService(
		onboarding.NewStore(a.DB, sealer),
		onboarding.WithCompanyDomain(cfg.CompanyEmailDomain),
	)
	leaveSvc := leave.NewService(leave.NewStore(a.DB), decimal.NewFromFloat(cfg.LeaveDefaultAllocation))

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "X-Total-Count", "X-Page-Limit", "X-Page-Offset"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if a.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

		onboardinghandler.NewHandler(onboardingSvc, accounts, perms, effects).RegisterRoutes(r)
		leavehandler.NewHandler(leaveSvc, perms, effects).RegisterRoutes(r)
		attendancehandler.NewHandler(attendance.NewStore(a.DB), directory, perms).RegisterRoutes(r)
		corehandler.NewHandler(directory, perms, effects).RegisterRoutes(r)
		notificationshandler.NewHandler(notifier, accounts).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, perms).RegisterRoutes(r)
	})

	return router
}

// Close stops the workers after they drain and releases connections.
func (a *App) Close() {
	a.stopJobs()
	a.Jobs.Wait()
	if err := a.publisher.Close(); err != nil {
		slog.Warn("kafka publisher close failed", "err", err)
	}
	a.DB.Close()
}

func Run() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})))

	app, err := New(context.Background(), cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("hrflow listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
	app.Close()
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
