package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultAPIEndpoint = "https://api.telegram.org/bot%s/%s"

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token       string        `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	APIEndpoint string        `yaml:"api_endpoint" env:"TELEGRAM_API_ENDPOINT"` // printf format: token, method
	ParseMode   string        `yaml:"parse_mode" env:"TELEGRAM_PARSE_MODE"`     // HTML | MarkdownV2 | none
	EagerIntake bool          `yaml:"eager_intake" env:"TELEGRAM_EAGER_INTAKE"` // read one update at construction
	Timeout     time.Duration `yaml:"timeout" env:"TELEGRAM_TIMEOUT"`
	Workers     int           `yaml:"workers" env:"TELEGRAM_WORKERS"` // webhook update workers
}

type WebhookConfig struct {
	URL         string `yaml:"url" env:"WEBHOOK_URL"` // public URL registered with setWebhook
	Path        string `yaml:"path" env:"WEBHOOK_PATH"`
	SecretToken string `yaml:"secret_token" env:"WEBHOOK_SECRET"`
}

type HTTPConfig struct {
	Port         int           `yaml:"port" env:"HTTP_PORT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" env:"HTTP_MAX_BODY_BYTES"`
}

type LogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL"`       // trace|debug|info|warn|error
	Format   string `yaml:"format" env:"LOG_FORMAT"`     // json|console
	Sampling bool   `yaml:"sampling" env:"LOG_SAMPLING"` // enable sampling in prod
}

type I18nConfig struct {
	Lang string `yaml:"lang" env:"BOT_LANG"`
}

type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Webhook WebhookConfig `yaml:"webhook"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
	I18n    I18nConfig    `yaml:"i18n"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (a missing file is allowed), loads
// a .env file if present, and applies environment overrides on top.
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
			// env-only deployment
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Bot.Token == "" && !dev {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Bot.ParseMode == "none" {
		cfg.Bot.ParseMode = ""
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.APIEndpoint == "" {
		cfg.Bot.APIEndpoint = DefaultAPIEndpoint
	}
	if cfg.Bot.ParseMode == "" {
		cfg.Bot.ParseMode = "HTML"
	}
	if cfg.Bot.Timeout <= 0 {
		cfg.Bot.Timeout = 30 * time.Second
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Webhook.Path == "" {
		cfg.Webhook.Path = "/webhook"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.ReadTimeout <= 0 {
		cfg.HTTP.ReadTimeout = 10 * time.Second
	}
	if cfg.HTTP.MaxBodyBytes <= 0 {
		cfg.HTTP.MaxBodyBytes = 1 << 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.I18n.Lang == "" {
		cfg.I18n.Lang = "en"
	}
}
