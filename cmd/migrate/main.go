// File: cmd/migrate/main.go
package main

import (
	"flag"
	"log"

	"police-security-bot/internal/config"
	pg "police-security-bot/internal/infra/db/postgres"
	"police-security-bot/internal/infra/logging"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("database.url (DATABASE_URL) is required")
	}

	logger := logging.New(cfg.Log, false)
	if err := pg.Migrate(cfg.Database.URL, *down, logger); err != nil {
		logger.Fatal().Err(err).Bool("down", *down).Msg("migrate")
	}
}
