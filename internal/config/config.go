// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token              string `yaml:"token"`
	Workers            int    `yaml:"workers"` // update workers; 1 keeps strict FIFO
	RegistrationSecret string `yaml:"registration_secret"`
	Language           string `yaml:"language"`
	PollTimeout        int    `yaml:"poll_timeout"` // seconds

	// DryRun reads messages from stdin and logs replies instead of calling Telegram.
	DryRun bool `yaml:"-"`

	// MetricsAddr serves /metrics for the bot process; empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`

	// /register_admin attempts allowed per chat per window
	RegisterAttempts int           `yaml:"register_attempts"`
	RegisterWindow   time.Duration `yaml:"register_window"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL         string `yaml:"url"`
	MaxConns    int32  `yaml:"max_conns"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// RedisConfig is optional. An empty URL keeps login counters and the
// session denylist in process memory.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type ClassifierConfig struct {
	Provider        string        `yaml:"provider"` // openai|gemini|none
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	Model           string        `yaml:"model"`
	Referer         string        `yaml:"referer"`
	Title           string        `yaml:"title"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxTokens       int           `yaml:"max_tokens"`
	MaxInputTokens  int           `yaml:"max_input_tokens"` // 0 disables truncation
	ConcurrentLimit int           `yaml:"concurrent_limit"`
}

type RegistryConfig struct {
	Path string `yaml:"path"`
}

type WebConfig struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	AccessTTL      time.Duration `yaml:"access_ttl"`
	SecureCookie   bool          `yaml:"secure_cookie"`
	CookieDomain   string        `yaml:"cookie_domain"`
	TrustProxy     bool          `yaml:"trust_proxy"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	FeedLimit      int           `yaml:"feed_limit"`
	Lockout        LockoutConfig `yaml:"lockout"`
}

type LockoutConfig struct {
	MaxFailures int           `yaml:"max_failures"`
	Window      time.Duration `yaml:"window"`
	BlockFor    time.Duration `yaml:"block_for"`
}

type Config struct {
	Bot        BotConfig        `yaml:"bot"`
	Log        LogConfig        `yaml:"log"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Registry   RegistryConfig   `yaml:"registry"`
	Web        WebConfig        `yaml:"web"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, then a .env file from the working
// directory, then process environment overrides. A missing YAML file is not
// an error so the services can run from environment alone.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 1
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "en"
	}
	if cfg.Bot.PollTimeout <= 0 {
		cfg.Bot.PollTimeout = 60
	}
	if cfg.Bot.RegisterAttempts <= 0 {
		cfg.Bot.RegisterAttempts = 5
	}
	if cfg.Bot.RegisterWindow <= 0 {
		cfg.Bot.RegisterWindow = 10 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}

	c := &cfg.Classifier
	if c.Provider == "" {
		c.Provider = "openai"
	}
	c.Provider = strings.ToLower(c.Provider)
	if c.Provider == "openai" && c.BaseURL == "" {
		c.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.Model == "" {
		if c.Provider == "gemini" {
			c.Model = "gemini-2.0-flash"
		} else {
			c.Model = "gpt-4o-mini"
		}
	}
	if c.Referer == "" {
		c.Referer = "http://localhost"
	}
	if c.Title == "" {
		c.Title = "Police Security Bot"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 150
	}
	if c.ConcurrentLimit <= 0 {
		c.ConcurrentLimit = 4
	}

	if cfg.Registry.Path == "" {
		cfg.Registry.Path = "admins.json"
	}

	w := &cfg.Web
	if w.Addr == "" {
		w.Addr = ":8000"
	}
	if w.AccessTTL <= 0 {
		w.AccessTTL = time.Hour
	}
	if w.RequestTimeout <= 0 {
		w.RequestTimeout = 10 * time.Second
	}
	if w.FeedLimit <= 0 {
		w.FeedLimit = 50
	}
	if len(w.AllowedOrigins) == 0 {
		w.AllowedOrigins = []string{
			"http://localhost",
			"http://127.0.0.1",
			"http://localhost:5500",
			"http://127.0.0.1:5500",
		}
	}
	if w.Lockout.MaxFailures <= 0 {
		w.Lockout.MaxFailures = 5
	}
	if w.Lockout.Window <= 0 {
		w.Lockout.Window = 5 * time.Minute
	}
	if w.Lockout.BlockFor <= 0 {
		w.Lockout.BlockFor = 10 * time.Minute
	}
}

func applyEnv(cfg *Config) error {
	setStr := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setStr(&cfg.Bot.Token, "BOT_TOKEN")
	setStr(&cfg.Bot.RegistrationSecret, "ADMIN_REG_SECRET")
	setStr(&cfg.Database.URL, "DATABASE_URL")
	setStr(&cfg.Redis.URL, "REDIS_URL")
	setStr(&cfg.Registry.Path, "ADMINS_FILE")
	setStr(&cfg.Web.Addr, "HTTP_ADDR")
	setStr(&cfg.Bot.MetricsAddr, "METRICS_ADDR")
	setStr(&cfg.Web.JWTSecret, "JWT_SECRET")
	setStr(&cfg.Log.Level, "LOG_LEVEL")
	setStr(&cfg.Classifier.Provider, "CLASSIFIER_PROVIDER")

	if v := os.Getenv("GEMINI_API_KEY"); v != "" && strings.EqualFold(cfg.Classifier.Provider, "gemini") {
		cfg.Classifier.APIKey = v
	}
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" && !strings.EqualFold(cfg.Classifier.Provider, "gemini") {
		cfg.Classifier.APIKey = v
	}

	if v := os.Getenv("ACCESS_EXPIRE_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return fmt.Errorf("ACCESS_EXPIRE_SECONDS must be a positive integer, got %q", v)
		}
		cfg.Web.AccessTTL = time.Duration(secs) * time.Second
	}
	return nil
}

// ValidateBot checks what the Telegram ingest service needs to start.
func (c *Config) ValidateBot() error {
	var errs []error
	if c.Bot.Token == "" && !c.Bot.DryRun {
		errs = append(errs, errors.New("bot.token (BOT_TOKEN) is required"))
	}
	if c.Bot.RegistrationSecret == "" {
		errs = append(errs, errors.New("bot.registration_secret (ADMIN_REG_SECRET) is required"))
	}
	switch c.Classifier.Provider {
	case "openai", "gemini":
		if c.Classifier.APIKey == "" {
			errs = append(errs, fmt.Errorf("classifier.api_key is required for provider %q", c.Classifier.Provider))
		}
	case "none":
	default:
		errs = append(errs, fmt.Errorf("classifier.provider %q is not supported", c.Classifier.Provider))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url (DATABASE_URL) is required"))
	}
	return errors.Join(errs...)
}

// ValidateDashboard checks what the web dashboard needs to start.
func (c *Config) ValidateDashboard() error {
	var errs []error
	if c.Web.JWTSecret == "" {
		errs = append(errs, errors.New("web.jwt_secret (JWT_SECRET) is required"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url (DATABASE_URL) is required"))
	}
	return errors.Join(errs...)
}
