package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v4"
	"golang.org/x/crypto/bcrypt"

	"police-security-bot/internal/config"
	"police-security-bot/internal/domain"
	"police-security-bot/internal/domain/model"
	"police-security-bot/internal/domain/ports/repository"
	pg "police-security-bot/internal/infra/db/postgres"
)

// Creates a dashboard admin, or resets the password of an existing one.
// With -print-hash it only prints a bcrypt hash and touches no database.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	username := flag.String("username", "admin", "dashboard admin username")
	password := flag.String("password", "", "password (defaults to $SEED_PASSWORD)")
	printHash := flag.Bool("print-hash", false, "print the bcrypt hash and exit")
	flag.Parse()

	pw := *password
	if pw == "" {
		pw = os.Getenv("SEED_PASSWORD")
	}
	if pw == "" {
		log.Fatal("a password is required: pass -password or set SEED_PASSWORD")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	if *printHash {
		fmt.Println(string(hash))
		return
	}

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema check (run cmd/migrate first): %v", err)
	}

	admins := pg.NewPostgresAdminRepo(pool)
	tm := pg.NewTxManager(pool)

	var created bool
	err = tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		existing, err := admins.FindByUsername(ctx, tx, *username)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			created = true
		case err != nil:
			return err
		}

		a, err := model.NewDashboardAdmin(*username, string(hash))
		if err != nil {
			return err
		}
		if existing != nil {
			a.ID = existing.ID
		}
		return admins.Save(ctx, tx, a)
	})
	if err != nil {
		log.Fatalf("seed admin %q: %v", *username, err)
	}

	if created {
		fmt.Printf("created dashboard admin %q\n", *username)
	} else {
		fmt.Printf("updated password for dashboard admin %q\n", *username)
	}
}
