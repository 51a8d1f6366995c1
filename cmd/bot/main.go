// File: cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"police-security-bot/internal/config"
	"police-security-bot/internal/domain/ports/adapter"
	aiAdapters "police-security-bot/internal/infra/adapters/ai"
	tele "police-security-bot/internal/infra/adapters/telegram"
	pg "police-security-bot/internal/infra/db/postgres"
	"police-security-bot/internal/infra/i18n"
	"police-security-bot/internal/infra/logging"
	"police-security-bot/internal/infra/memory"
	"police-security-bot/internal/infra/metrics"
	red "police-security-bot/internal/infra/redis"
	"police-security-bot/internal/infra/registry"
	"police-security-bot/internal/infra/sched"
	"police-security-bot/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs, message text not redacted")
	fromStdin := flag.Bool("stdin", false, "moderate lines from stdin and log replies instead of using Telegram")
	stdinChat := flag.Int64("stdin-chat", 1, "chat id recorded for messages read from stdin")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.Bot.DryRun = *fromStdin
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit, "bot")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Postgres ----
	if cfg.Database.AutoMigrate {
		if err := pg.Migrate(cfg.Database.URL, false, logger); err != nil {
			logger.Fatal().Err(err).Msg("migrate")
		}
	}
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema check")
	}
	messageRepo := pg.NewPostgresMessageRepo(pool)

	// ---- Admin registry ----
	store, err := registry.NewFileStore(cfg.Registry.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Registry.Path).Msg("admin registry")
	}

	// ---- Classifier ----
	completer, err := newCompleter(ctx, cfg.Classifier)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Classifier.Provider).Msg("classifier")
	}
	completer = aiAdapters.NewLimitedCompleter(completer, cfg.Classifier.ConcurrentLimit)
	var truncator *aiAdapters.Truncator
	if cfg.Classifier.MaxInputTokens > 0 {
		truncator = aiAdapters.NewTruncator(cfg.Classifier.MaxInputTokens, logger)
	}
	classifier := aiAdapters.NewClassifier(completer, aiAdapters.ClassifierOptions{
		Timeout:   cfg.Classifier.Timeout,
		MaxTokens: cfg.Classifier.MaxTokens,
		Truncator: truncator,
	}, logger)
	logger.Info().Str("provider", cfg.Classifier.Provider).Str("model", cfg.Classifier.Model).Msg("classifier ready")

	// ---- Command rate limiter ----
	var limiter tele.CommandLimiter = memory.NewRateLimiter()
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	}

	// ---- Telegram ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}
	registryUC := usecase.NewRegistryUseCase(store, cfg.Bot.RegistrationSecret, logger)
	if cfg.Bot.DryRun {
		noop := tele.NewNoopBotAdapter(translator, logger)
		ingestUC := usecase.NewIngestUseCase(classifier, messageRepo, store, noop, logger, cfg.Runtime.Dev)
		n, err := noop.Replay(ctx, os.Stdin, *stdinChat, ingestUC)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("stdin replay")
		}
		logger.Info().Int("messages", n).Msg("stdin replay finished")
		return
	}

	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, translator, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	ingestUC := usecase.NewIngestUseCase(classifier, messageRepo, store, botAdapter, logger, cfg.Runtime.Dev)
	botAdapter.Bind(ingestUC, registryUC, limiter)

	if ids, err := registryUC.List(ctx); err == nil {
		metrics.SetAlertAdmins(len(ids))
	}

	// ---- Metrics ----
	if cfg.Bot.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.Bot.MetricsAddr, logger)
		sampler := sched.NewStatsSampler(time.Minute, messageRepo, pg.PoolStats(pool), logger)
		go func() { _ = sampler.Run(ctx) }()
	}

	logger.Info().Str("version", version).Int("workers", cfg.Bot.Workers).Msg("bot starting")
	if err := botAdapter.StartPolling(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("telegram polling stopped")
	}
	logger.Info().Msg("shutdown complete")
}

func newCompleter(ctx context.Context, c config.ClassifierConfig) (adapter.Completer, error) {
	switch c.Provider {
	case "gemini":
		return aiAdapters.NewGeminiCompleter(ctx, c.APIKey, c.BaseURL, c.Model)
	case "none":
		return aiAdapters.NewNoopCompleter(), nil
	default:
		return aiAdapters.NewOpenAICompleter(aiAdapters.OpenAIOptions{
			APIKey:  c.APIKey,
			BaseURL: c.BaseURL,
			Model:   c.Model,
			Referer: c.Referer,
			Title:   c.Title,
			Timeout: c.Timeout,
		})
	}
}

func serveMetrics(ctx context.Context, addr string, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	logger.Info().Str("addr", addr).Msg("metrics listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
