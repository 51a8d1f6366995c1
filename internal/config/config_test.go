//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BOT_TOKEN", "ADMIN_REG_SECRET", "DATABASE_URL", "REDIS_URL", "ADMINS_FILE",
		"HTTP_ADDR", "JWT_SECRET", "LOG_LEVEL", "CLASSIFIER_PROVIDER",
		"GEMINI_API_KEY", "OPENROUTER_API_KEY", "ACCESS_EXPIRE_SECONDS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("should apply defaults when the file is missing", func(t *testing.T) {
		clearEnv(t)

		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Bot.Workers != 1 {
			t.Errorf("expected 1 worker, got %d", cfg.Bot.Workers)
		}
		if cfg.Classifier.BaseURL != "https://openrouter.ai/api/v1" {
			t.Errorf("unexpected base url %q", cfg.Classifier.BaseURL)
		}
		if cfg.Classifier.Model != "gpt-4o-mini" {
			t.Errorf("unexpected model %q", cfg.Classifier.Model)
		}
		if cfg.Classifier.Timeout != 15*time.Second || cfg.Classifier.MaxTokens != 150 {
			t.Errorf("unexpected classifier limits: %v / %d", cfg.Classifier.Timeout, cfg.Classifier.MaxTokens)
		}
		if cfg.Web.AccessTTL != time.Hour {
			t.Errorf("expected 1h ttl, got %v", cfg.Web.AccessTTL)
		}
		l := cfg.Web.Lockout
		if l.MaxFailures != 5 || l.Window != 5*time.Minute || l.BlockFor != 10*time.Minute {
			t.Errorf("unexpected lockout defaults: %+v", l)
		}
		if cfg.Registry.Path != "admins.json" {
			t.Errorf("unexpected registry path %q", cfg.Registry.Path)
		}
	})

	t.Run("should read yaml and let env override it", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `
bot:
  token: from-file
  workers: 3
classifier:
  model: some/model
  timeout: 5s
web:
  jwt_secret: file-secret
  lockout:
    max_failures: 2
`)
		t.Setenv("BOT_TOKEN", "from-env")
		t.Setenv("OPENROUTER_API_KEY", "or-key")
		t.Setenv("ACCESS_EXPIRE_SECONDS", "120")

		cfg, err := LoadConfig(path, true)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Bot.Token != "from-env" {
			t.Errorf("env should win, got %q", cfg.Bot.Token)
		}
		if cfg.Bot.Workers != 3 {
			t.Errorf("expected 3 workers, got %d", cfg.Bot.Workers)
		}
		if cfg.Classifier.APIKey != "or-key" {
			t.Errorf("expected api key from env, got %q", cfg.Classifier.APIKey)
		}
		if cfg.Classifier.Model != "some/model" || cfg.Classifier.Timeout != 5*time.Second {
			t.Errorf("yaml values lost: %+v", cfg.Classifier)
		}
		if cfg.Web.AccessTTL != 120*time.Second {
			t.Errorf("expected 120s ttl, got %v", cfg.Web.AccessTTL)
		}
		if cfg.Web.Lockout.MaxFailures != 2 {
			t.Errorf("expected 2 max failures, got %d", cfg.Web.Lockout.MaxFailures)
		}
		if !cfg.Runtime.Dev {
			t.Error("dev flag not propagated")
		}
	})

	t.Run("should route the gemini key only to the gemini provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CLASSIFIER_PROVIDER", "gemini")
		t.Setenv("GEMINI_API_KEY", "g-key")
		t.Setenv("OPENROUTER_API_KEY", "or-key")

		cfg, err := LoadConfig("", false)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Classifier.APIKey != "g-key" {
			t.Errorf("expected gemini key, got %q", cfg.Classifier.APIKey)
		}
		if cfg.Classifier.Model != "gemini-2.0-flash" {
			t.Errorf("unexpected gemini default model %q", cfg.Classifier.Model)
		}
	})

	t.Run("should reject a malformed ttl", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ACCESS_EXPIRE_SECONDS", "soon")
		if _, err := LoadConfig("", false); err == nil {
			t.Fatal("expected an error for a non-numeric ttl")
		}
	})

	t.Run("should fail on invalid yaml", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, "bot: [unclosed")
		if _, err := LoadConfig(path, false); err == nil {
			t.Fatal("expected a parse error")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Run("bot config reports every missing field", func(t *testing.T) {
		cfg := &Config{}
		applyDefaults(cfg)
		err := cfg.ValidateBot()
		if err == nil {
			t.Fatal("expected validation error")
		}
		for _, want := range []string{"BOT_TOKEN", "ADMIN_REG_SECRET", "api_key", "DATABASE_URL"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q does not mention %s", err, want)
			}
		}
	})

	t.Run("bot config passes when complete", func(t *testing.T) {
		cfg := &Config{
			Bot:        BotConfig{Token: "t", RegistrationSecret: "s"},
			Classifier: ClassifierConfig{APIKey: "k"},
			Database:   DatabaseConfig{URL: "postgres://x"},
		}
		applyDefaults(cfg)
		if err := cfg.ValidateBot(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("dry run needs no bot token", func(t *testing.T) {
		cfg := &Config{
			Bot:        BotConfig{RegistrationSecret: "s", DryRun: true},
			Classifier: ClassifierConfig{Provider: "none"},
			Database:   DatabaseConfig{URL: "postgres://x"},
		}
		applyDefaults(cfg)
		if err := cfg.ValidateBot(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("keyword-only provider needs no api key", func(t *testing.T) {
		cfg := &Config{
			Bot:        BotConfig{Token: "t", RegistrationSecret: "s"},
			Classifier: ClassifierConfig{Provider: "none"},
			Database:   DatabaseConfig{URL: "postgres://x"},
		}
		applyDefaults(cfg)
		if err := cfg.ValidateBot(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unknown provider is rejected", func(t *testing.T) {
		cfg := &Config{
			Bot:        BotConfig{Token: "t", RegistrationSecret: "s"},
			Classifier: ClassifierConfig{Provider: "llama", APIKey: "k"},
			Database:   DatabaseConfig{URL: "postgres://x"},
		}
		applyDefaults(cfg)
		if err := cfg.ValidateBot(); err == nil || !strings.Contains(err.Error(), "llama") {
			t.Fatalf("expected provider error, got %v", err)
		}
	})

	t.Run("dashboard config needs a jwt secret", func(t *testing.T) {
		cfg := &Config{Database: DatabaseConfig{URL: "postgres://x"}}
		applyDefaults(cfg)
		err := cfg.ValidateDashboard()
		if err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
			t.Fatalf("expected JWT_SECRET error, got %v", err)
		}
	})
}
