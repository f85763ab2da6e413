package config

import (
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"

	"clausewise/internal/llm"
)

// Config holds runtime configuration. Extend as needed.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"16777216"` // 16MB in bytes

	// Queue
	QueueProvider string        `env:"QUEUE_PROVIDER" envDefault:"local"` // "local" (in-process) or "nats" (separate analysis workers)
	QueueURL      string        `env:"QUEUE_URL"`
	QueueAttempts int           `env:"QUEUE_ATTEMPTS" envDefault:"3"`
	QueueBackoff  time.Duration `env:"QUEUE_BACKOFF" envDefault:"200ms"`

	// LLM
	LLMProvider    string  `env:"LLM_PROVIDER" envDefault:"ollama"` // "ollama" or "openai" (any Chat Completions endpoint)
	OllamaHost     string  `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	LLMModel       string  `env:"LLM_MODEL" envDefault:"granite3.3:2b"`
	LLMMaxTokens   int     `env:"LLM_MAX_TOKENS" envDefault:"512"`
	LLMTemperature float64 `env:"LLM_TEMPERATURE" envDefault:"0.2"`
	OpenAIKey      string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL  string  `env:"OPENAI_BASE_URL"`

	// Cache
	CacheProvider string        `env:"CACHE_PROVIDER" envDefault:"noop"` // "redis" or "noop"
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"24h"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return LoadFrom(nil)
}

// LoadFrom reads configuration from environ instead of the process
// environment. A nil map means the process environment.
func LoadFrom(environ map[string]string) Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}

// Settings returns the default model settings for requests that send none.
func (c Config) Settings() llm.Settings {
	return llm.Settings{
		Host:        c.OllamaHost,
		Model:       c.LLMModel,
		MaxTokens:   c.LLMMaxTokens,
		Temperature: c.LLMTemperature,
	}.WithDefaults()
}
