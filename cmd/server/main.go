package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/nevenhsu/survey-web-sub001/internal/config"
	"github.com/nevenhsu/survey-web-sub001/internal/database"
	"github.com/nevenhsu/survey-web-sub001/internal/handler"
	"github.com/nevenhsu/survey-web-sub001/internal/logger"
	"github.com/nevenhsu/survey-web-sub001/internal/repository"
	"github.com/nevenhsu/survey-web-sub001/internal/router"
	"github.com/nevenhsu/survey-web-sub001/internal/service"
	"github.com/nevenhsu/survey-web-sub001/internal/validator"
	"github.com/nevenhsu/survey-web-sub001/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting survey server")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	surveyRepo := repository.NewSurveyRepository(pool)
	surveyCache := repository.NewSurveyCache(rdb, cfg.SurveyCacheTTL)
	answerRepo := repository.NewAnswerRepository(pool)
	draftRepo := repository.NewDraftRepository(pool)
	sessionStore := repository.NewSessionStore(rdb, cfg.SessionTTL, cfg.SubmitLockTTL)
	draftQueue := repository.NewDraftQueue(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	surveyService := service.NewSurveyService(surveyRepo, surveyCache, cfg.SurveyCacheTTL, log)
	sessionService := service.NewSessionService(surveyService, sessionStore, answerRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Survey:  handler.NewSurveyHandler(surveyService, log),
		Session: handler.NewSessionHandler(sessionService, log),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
		System:  handler.NewSystemHandler(database.NewChecker(pool, rdb), sessionStore, log),
	}
	limiters := router.NewLimiters(cfg)
	defer limiters.Stop()

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	draftWorker := worker.NewDraftWorker(draftQueue, draftRepo, cfg.DraftBatchSize, log)
	go func() {
		draftWorker.Start(workerCtx)
		close(workerDone)
	}()

	// ─── Prewarm Caches ───────────────────────────────────────────────
	// Load every stored survey BEFORE accepting traffic so the first
	// respondents do not all miss the cache at once.
	if err := surveyService.PrewarmAll(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, limiters, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the draft worker and wait for the queue to drain.
	workerCancel()
	select {
	case <-workerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Draft worker did not finish draining in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
