package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"clausewise/internal/assistant"
	"clausewise/internal/cache"
	"clausewise/internal/config"
	"clausewise/internal/llm"
	"clausewise/internal/logger"
	"clausewise/internal/metrics"
	"clausewise/internal/pipeline"
	"clausewise/internal/queue"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config     config.Config
	Log        *slog.Logger
	Metrics    *metrics.Metrics
	Gateway    llm.Gateway
	Analyzer   *pipeline.Analyzer
	Simplifier *assistant.CachedSimplifier
	Chat       *assistant.Chat
	Queue      queue.Queue
	Cache      cache.Cache

	closers []func() error
}

// Build loads env, config, and shared components. Logs go to stdout.
func Build() (Deps, error) {
	if err := LoadDotEnv(); err != nil {
		return Deps{}, err
	}
	cfg := config.Load()
	return BuildWith(cfg, logger.New(cfg.LogLevel))
}

// LoadDotEnv reads .env when present. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

// BuildWith wires every component from cfg.
func BuildWith(cfg config.Config, log *slog.Logger) (Deps, error) {
	m := metrics.New()

	gw, err := BuildGateway(cfg, log, m)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	analyzer := pipeline.New(gw, log, pipeline.WithObserver(m))

	d := Deps{
		Config:   cfg,
		Log:      log,
		Metrics:  m,
		Gateway:  gw,
		Analyzer: analyzer,
		Chat:     assistant.NewChat(gw),
	}

	q, closeQueue, err := buildQueue(cfg, log, analyzer)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	d.Queue = q
	d.closers = append(d.closers, closeQueue)

	d.Cache = buildCache(cfg, log)
	d.closers = append(d.closers, d.Cache.Close)
	d.Simplifier = assistant.NewCachedSimplifier(assistant.NewSimplifier(gw), d.Cache, cfg.CacheTTL, log, m)

	return d, nil
}

// Close releases broker and cache connections.
func (d Deps) Close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildGateway selects the model provider and instruments it with obs.
func BuildGateway(cfg config.Config, log *slog.Logger, obs llm.Observer) (llm.Gateway, error) {
	switch cfg.LLMProvider {
	case llm.ProviderOllama:
		log.Info("using Ollama gateway", "host", cfg.OllamaHost, "model", cfg.LLMModel)
		return llm.Instrument(llm.NewOllamaClient(nil, log), llm.ProviderOllama, obs), nil
	case llm.ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		client, err := llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIBaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
		}
		log.Info("using OpenAI gateway", "model", cfg.LLMModel)
		return llm.Instrument(client, llm.ProviderOpenAI, obs), nil
	default:
		return nil, fmt.Errorf("invalid LLM_PROVIDER: %s (valid options: ollama, openai)", cfg.LLMProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger, analyzer *pipeline.Analyzer) (queue.Queue, func() error, error) {
	switch cfg.QueueProvider {
	case "local":
		q := queue.NewLocal()
		q.Handle(queue.TaskTypeAnalyze, analyzer.TaskHandler())
		log.Info("using in-process queue")
		return q, func() error { return nil }, nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL, nats.Name("clausewise"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		if limit := nc.MaxPayload(); cfg.MaxUploadSize > limit {
			log.Warn("uploads larger than the broker message limit will be rejected",
				"max_upload_size", cfg.MaxUploadSize, "max_payload", limit)
		}
		log.Info("using NATS queue", "url", cfg.QueueURL)
		return queue.NewNATS(log, nc), nc.Drain, nil
	default:
		return nil, nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: local, nats)", cfg.QueueProvider)
	}
}

// buildCache falls back to the no-op cache when Redis is not configured or
// unreachable.
func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	switch cfg.CacheProvider {
	case "redis":
		c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNoOpCache()
		}
		log.Info("using Redis cache", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		return c
	case "noop", "":
		return cache.NewNoOpCache()
	default:
		log.Warn("unknown CACHE_PROVIDER, caching disabled", "provider", cfg.CacheProvider)
		return cache.NewNoOpCache()
	}
}
