package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/akmalmuhammed/hifzer-backend/internal/authadapter"
	"github.com/akmalmuhammed/hifzer-backend/internal/config"
	"github.com/akmalmuhammed/hifzer-backend/internal/httpserver"
	"github.com/akmalmuhammed/hifzer-backend/internal/platform"
	"github.com/akmalmuhammed/hifzer-backend/internal/seed"
	"github.com/akmalmuhammed/hifzer-backend/internal/telemetry"
	"github.com/akmalmuhammed/hifzer-backend/pkg/analytics"
	"github.com/akmalmuhammed/hifzer-backend/pkg/assessment"
	"github.com/akmalmuhammed/hifzer-backend/pkg/ayah"
	"github.com/akmalmuhammed/hifzer-backend/pkg/dailysession"
	"github.com/akmalmuhammed/hifzer-backend/pkg/fluencygate"
	"github.com/akmalmuhammed/hifzer-backend/pkg/queue"
	"github.com/akmalmuhammed/hifzer-backend/pkg/reducer"
	"github.com/akmalmuhammed/hifzer-backend/pkg/review"
	"github.com/akmalmuhammed/hifzer-backend/pkg/session"
	"github.com/akmalmuhammed/hifzer-backend/pkg/transition"
	"github.com/akmalmuhammed/hifzer-backend/pkg/user"
)

// Run is the main application entry point. It reads config, connects to
// infrastructure, and starts the appropriate mode (api or seed).
func Run(ctx context.Context, cfg *config.Config) error {
	logger := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting hifzer",
		"mode", cfg.Mode,
		"listen", cfg.ListenAddr(),
	)

	// Database
	db, err := platform.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	// Redis
	rdb, err := platform.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("closing redis", "error", err)
		}
	}()

	if err := platform.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("migrations applied")

	metricsReg := telemetry.NewMetricsRegistry(telemetry.All()...)

	switch cfg.Mode {
	case "api":
		return runAPI(ctx, cfg, logger, db, rdb, metricsReg)
	case "seed":
		return seed.Run(ctx, db, cfg.AyahCorpusPath, logger)
	default:
		return fmt.Errorf("unknown mode: %s", cfg.Mode)
	}
}

func runAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *pgxpool.Pool, rdb *redis.Client, metricsReg *prometheus.Registry) error {
	// Stores: every domain package's persistence layer over the shared pool.
	userStore := user.NewStore(db)
	ayahStore := ayah.NewStore(db)
	reducerStore := reducer.NewStore(db)
	reviewStore := review.NewStore(db)
	transitionStore := transition.NewStore(db)
	sessionStore := session.NewStore(db)
	dailySessionStore := dailysession.NewStore(db)
	fluencyTestStore := fluencygate.NewStore(db)

	// Auth: bearer tokens are verified against the shared secret and
	// resolved to a durable user record via find-or-create by email.
	verifier := authadapter.NewHMACVerifier(cfg.AuthSharedSecret, userStore)

	srv := httpserver.NewServer(cfg, logger, db, rdb, metricsReg, verifier)

	// --- Domain services ---

	reducerService := reducer.NewService(db, reviewStore, reducerStore, transitionStore)

	pageCache := fluencygate.NewPageCache(rdb, ayahStore, logger)
	fluencyService := fluencygate.NewService(fluencyTestStore, pageCache, ayahStore, userStore)

	sessionService := session.NewService(sessionStore, reducerService)

	queueHandler := queue.NewHandler(logger, reducerStore, reviewStore, dailySessionStore, transitionStore, userStore)

	// The rollup's debt snapshot is today's queue, recomputed at session
	// close rather than cached from session start, so it reflects any
	// reviews the session itself just ingested.
	debtSnapshot := func(ctx context.Context, userID uuid.UUID, now time.Time) (int, int, bool, error) {
		q, err := queue.Build(ctx, queueHandler, userID, now)
		if err != nil {
			return 0, 0, false, err
		}
		return q.Debt.BacklogMinutesEstimate, q.Debt.OverdueDaysMax, q.Sabaq.Allowed, nil
	}
	rollupService := dailysession.NewService(sessionStore, reviewStore, reducerStore, userStore, debtSnapshot, dailySessionStore)

	// --- Mount domain handlers on the authenticated /api/v1 sub-router ---

	assessmentHandler := assessment.NewHandler(logger, userStore)
	srv.APIRouter.Mount("/assessment", assessmentHandler.Routes())

	fluencyGateHandler := fluencygate.NewHandler(logger, fluencyService, fluencyTestStore, userStore)
	srv.APIRouter.Mount("/fluency-gate", fluencyGateHandler.Routes())

	srv.APIRouter.Mount("/queue", queueHandler.Routes())

	sessionHandler := session.NewHandler(logger, sessionService, sessionStore, userStore, queueHandler, rollupService)
	srv.APIRouter.Mount("/session", sessionHandler.Routes())

	reducerHandler := reducer.NewHandler(logger, reducerService)
	srv.APIRouter.Mount("/review", reducerHandler.Routes())

	buildTodayQueue := func(ctx context.Context, userID uuid.UUID, now time.Time) (queue.TodayQueue, error) {
		return queue.Build(ctx, queueHandler, userID, now)
	}
	analyticsHandler := analytics.NewHandler(logger, reducerStore, dailySessionStore, transitionStore, buildTodayQueue, userStore)
	srv.APIRouter.Mount("/user", analyticsHandler.Routes())

	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", cfg.ListenAddr())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
