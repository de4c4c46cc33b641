// File: cmd/app/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"life-story-companion/internal/config"
	"life-story-companion/internal/domain/ports/adapter"
	aiAdapters "life-story-companion/internal/infra/adapters/ai"
	pg "life-story-companion/internal/infra/db/postgres"
	"life-story-companion/internal/infra/logging"
	"life-story-companion/internal/infra/metrics"
	red "life-story-companion/internal/infra/redis"
	"life-story-companion/internal/infra/web"
	"life-story-companion/internal/prompts"
	"life-story-companion/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, noop AI fallback)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	sessionCache := red.NewSessionCache(redisClient, cfg.Redis.TTL)
	locker := red.NewLocker(redisClient)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Prompt library ----
	lib, err := prompts.NewLibrary(prompts.DefaultFS())
	if err != nil {
		logger.Fatal().Err(err).Msg("prompts")
	}

	// ---- Repositories ----
	sessionRepo := pg.NewSessionRepo(pool, sessionCache)
	interventionRepo := pg.NewInterventionRepo(pool)

	// ---- AI adapter (Gemini -> OpenAI -> noop in dev) ----
	var ai adapter.AIServiceAdapter
	switch {
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini adapter")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (dev)")
	default:
		logger.Fatal().Msgf("no AI provider configured: set ai.gemini_key or ai.openai_key in %s", *cfgPath)
	}
	ai = aiAdapters.NewLimitedAI(ai, cfg.AI.ConcurrentLimit)

	// ---- Use cases ----
	convUC := usecase.NewConversationUseCase(
		sessionRepo, interventionRepo, ai, ai, lib, locker,
		cfg.AI.DefaultModel, cfg.Chat.SummaryFrequency, cfg.Runtime.Dev, logger,
	)
	statsUC := usecase.NewStatsUseCase(interventionRepo)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, "", cfg.Admin.TokenTTL)
	srv := web.NewServer(convUC, statsUC, rateLimiter, auth, cfg.Admin.APIKey, cfg.Chat, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
