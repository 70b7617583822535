// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Environment variables that override the YAML file. Secrets are normally supplied this way.
const (
	EnvBotToken  = "TELEGRAM_BOT_TOKEN"
	EnvAPIKey    = "OPENAI_API_KEY"
	EnvGeminiKey = "GEMINI_API_KEY"
	EnvRedisURL  = "REDIS_URL"
	EnvRedisKey  = "REDIS_ENCRYPTION_KEY"
)

type RuntimeConfig struct {
	Dev bool
	// ConfigFile is empty when no YAML file was found and only env/defaults apply.
	ConfigFile string
}

type BotConfig struct {
	Token       string `yaml:"token"`
	Workers     int    `yaml:"workers"`      // update workers
	QueueSize   int    `yaml:"queue_size"`   // pending updates per worker
	PollTimeout int    `yaml:"poll_timeout"` // long polling timeout, seconds
	Language    string `yaml:"language"`     // ru | en
	ParseMode   string `yaml:"parse_mode"`   // Markdown | MarkdownV2 | HTML | "" (plain)
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"` // /health and /metrics; 0 means 9090, negative disables
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	// EncryptionKey seals stored messages with AES-GCM when set (16, 24 or 32 bytes).
	EncryptionKey string `yaml:"encryption_key"`
}

type ModelEntry struct {
	ID          string `yaml:"id"`
	Vendor      string `yaml:"vendor"`
	Description string `yaml:"description"`
	Featured    bool   `yaml:"featured"`
}

type AIConfig struct {
	Provider        string        `yaml:"provider"` // openrouter | gemini
	APIKey          string        `yaml:"api_key"`
	BaseURL         string        `yaml:"base_url"`
	Referer         string        `yaml:"referer"` // OpenRouter HTTP-Referer
	Title           string        `yaml:"title"`   // OpenRouter X-Title
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	DefaultModel    string        `yaml:"default_model"`
	Models          []ModelEntry  `yaml:"models"` // empty: built-in catalog
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
}

type SessionConfig struct {
	Backend       string        `yaml:"backend"` // memory | redis
	HistoryLimit  int           `yaml:"history_limit"`
	IdleTTL       time.Duration `yaml:"idle_ttl"` // 0 keeps sessions until reset
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	Log     LogConfig     `yaml:"log"`
	Admin   AdminConfig   `yaml:"admin"`
	Redis   RedisConfig   `yaml:"redis"`
	AI      AIConfig      `yaml:"ai"`
	Session SessionConfig `yaml:"session"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (a missing file is not an error), applies
// environment overrides and defaults, and validates the result.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
			cfg.Runtime.ConfigFile = path
		case errors.Is(err, os.ErrNotExist):
			// environment-only deployment
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBotToken)); v != "" {
		c.Bot.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
		c.AI.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGeminiKey)); v != "" {
		c.AI.GeminiKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisURL)); v != "" {
		c.Redis.URL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisKey)); v != "" {
		c.Redis.EncryptionKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Bot.Workers <= 0 {
		c.Bot.Workers = 8
	}
	if c.Bot.QueueSize <= 0 {
		c.Bot.QueueSize = 4
	}
	if c.Bot.PollTimeout <= 0 {
		c.Bot.PollTimeout = 60
	}
	if c.Bot.Language == "" {
		c.Bot.Language = "ru"
	}
	if c.Bot.ParseMode == "" {
		c.Bot.ParseMode = "Markdown"
	} else if strings.EqualFold(c.Bot.ParseMode, "none") {
		c.Bot.ParseMode = ""
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Admin.Port == 0 {
		c.Admin.Port = 9090
	}

	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderOpenRouter
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.AI.Referer == "" {
		c.AI.Referer = "https://github.com"
	}
	if c.AI.Title == "" {
		c.AI.Title = "Telegram AI Assistant"
	}
	if c.AI.DefaultModel == "" {
		c.AI.DefaultModel = "deepseek/deepseek-chat"
	}
	if c.AI.RequestTimeout <= 0 {
		c.AI.RequestTimeout = 90 * time.Second
	}
	if c.AI.ConcurrentLimit <= 0 {
		c.AI.ConcurrentLimit = 16
	}

	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	if c.Session.Backend == "" {
		c.Session.Backend = BackendMemory
	}
	if c.Session.HistoryLimit <= 0 {
		c.Session.HistoryLimit = 10
	}
	if c.Session.SweepInterval <= 0 {
		c.Session.SweepInterval = 10 * time.Minute
	}
	c.Redis.TTL = normalizeTTL(c.Redis.TTL)
}

// Validate fails fast on anything the bot cannot start without.
func (c *Config) Validate() error {
	if c.Bot.Token == "" {
		return fmt.Errorf("bot.token is required (or set %s)", EnvBotToken)
	}
	switch c.AI.Provider {
	case ProviderOpenRouter:
		if c.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required (or set %s)", EnvAPIKey)
		}
	case ProviderGemini:
		if c.AI.GeminiKey == "" {
			return fmt.Errorf("ai.gemini_key is required (or set %s)", EnvGeminiKey)
		}
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	switch c.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("redis.url is required when session.backend is redis")
		}
		if n := len(c.Redis.EncryptionKey); n != 0 && n != 16 && n != 24 && n != 32 {
			return fmt.Errorf("redis.encryption_key must be 16, 24 or 32 bytes, got %d", n)
		}
	default:
		return fmt.Errorf("unknown session.backend %q", c.Session.Backend)
	}
	return nil
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
