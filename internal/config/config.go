// Package config loads service configuration from an optional .env file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration. Every field maps to one env var.
type Config struct {
	Env      string `env:"APP_ENV" env-default:"local"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr string `env:"HTTP_ADDR" env-default:"localhost:3000"`

	// DBURL is required: users, profiles, the diary and chat history live in Postgres.
	DBURL string `env:"DB_URL" env-required:"true"`

	KV     KVConfig
	Redis  RedisConfig
	OpenAI OpenAIConfig
	Tips   TipsConfig
	Limits LimitsConfig
}

// KVConfig selects where per-user tip and quota state is kept.
type KVConfig struct {
	Backend string `env:"KV_BACKEND" env-default:"postgres"` // postgres | redis | memory
}

// RedisConfig is used when KV_BACKEND=redis.
type RedisConfig struct {
	Address   string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB" env-default:"0"`
	PoolSize  int           `env:"REDIS_POOL_SIZE" env-default:"10"`
	KeyPrefix string        `env:"REDIS_KEY_PREFIX" env-default:"nutritionist:"`
	TTL       time.Duration `env:"REDIS_TTL" env-default:"0s"`
}

// OpenAIConfig configures the chat and vision proxy.
type OpenAIConfig struct {
	APIKey      string        `env:"OPENAI_API_KEY"`
	BaseURL     string        `env:"OPENAI_BASE_URL" env-default:"https://api.openai.com"`
	Model       string        `env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	Temperature float64       `env:"OPENAI_TEMPERATURE" env-default:"0.7"`
	MaxTokens   int           `env:"OPENAI_MAX_TOKENS" env-default:"800"`
	Timeout     time.Duration `env:"OPENAI_TIMEOUT" env-default:"30s"`
}

// TipsConfig tunes repetition avoidance for the daily tip.
type TipsConfig struct {
	HistoryWindow int `env:"TIPS_HISTORY_WINDOW" env-default:"30"`
	HistoryCap    int `env:"TIPS_HISTORY_CAP" env-default:"100"`
}

// LimitsConfig holds the per-day quotas for metered AI features.
type LimitsConfig struct {
	FreeChat     int `env:"LIMIT_FREE_CHAT" env-default:"10"`
	PremiumChat  int `env:"LIMIT_PREMIUM_CHAT" env-default:"100"`
	FreePhoto    int `env:"LIMIT_FREE_PHOTO" env-default:"5"`
	PremiumPhoto int `env:"LIMIT_PREMIUM_PHOTO" env-default:"999"`
}

// Load reads envFile (if it exists) into the environment, then parses the
// environment into a Config. Variables already set take precedence over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	switch cfg.KV.Backend {
	case "postgres", "redis", "memory":
	default:
		return nil, fmt.Errorf("KV_BACKEND must be one of: postgres, redis, memory")
	}
	return &cfg, nil
}
