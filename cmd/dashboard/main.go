// File: cmd/dashboard/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"police-security-bot/internal/config"
	"police-security-bot/internal/domain/ports/repository"
	pg "police-security-bot/internal/infra/db/postgres"
	"police-security-bot/internal/infra/logging"
	"police-security-bot/internal/infra/memory"
	"police-security-bot/internal/infra/metrics"
	red "police-security-bot/internal/infra/redis"
	"police-security-bot/internal/infra/sched"
	"police-security-bot/internal/infra/web"
	"police-security-bot/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: console logs")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateDashboard(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit, "dashboard")

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
	adminRepo := pg.NewPostgresAdminRepo(pool)

	// ---- Login guards: Redis when configured, process memory otherwise ----
	var (
		limiter  repository.LoginLimiter
		denylist repository.SessionDenylist
	)
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewLoginLimiter(redisClient, cfg.Web.Lockout)
		denylist = red.NewSessionDenylist(redisClient)
		logger.Info().Msg("login guards backed by redis")
	} else {
		limiter = memory.NewLoginLimiter(cfg.Web.Lockout)
		denylist = memory.NewSessionDenylist()
		logger.Info().Msg("login guards kept in memory")
	}

	dashUC := usecase.NewDashboardUseCase(adminRepo, messageRepo, limiter, logger)

	sampler := sched.NewStatsSampler(time.Minute, messageRepo, pg.PoolStats(pool), logger)
	go func() { _ = sampler.Run(ctx) }()

	server := web.NewServer(cfg.Web, dashUC, denylist, logger)
	if err := server.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("http server")
	}
	logger.Info().Msg("shutdown complete")
}
