package config

import (
	"testing"
	"time"

	"clausewise/internal/llm"
)

func TestLoadDefaults(t *testing.T) {
	cfg := LoadFrom(map[string]string{})

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"MaxUploadSize", cfg.MaxUploadSize, int64(16 << 20)},
		{"QueueProvider", cfg.QueueProvider, "local"},
		{"QueueAttempts", cfg.QueueAttempts, 3},
		{"QueueBackoff", cfg.QueueBackoff, 200 * time.Millisecond},
		{"LLMProvider", cfg.LLMProvider, "ollama"},
		{"OllamaHost", cfg.OllamaHost, llm.DefaultHost},
		{"LLMModel", cfg.LLMModel, llm.DefaultModel},
		{"LLMMaxTokens", cfg.LLMMaxTokens, llm.DefaultMaxTokens},
		{"LLMTemperature", cfg.LLMTemperature, llm.DefaultTemperature},
		{"CacheProvider", cfg.CacheProvider, "noop"},
		{"CacheTTL", cfg.CacheTTL, 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	cfg := LoadFrom(map[string]string{
		"PORT":            "9090",
		"LOG_LEVEL":       "debug",
		"LLM_TEMPERATURE": "0",
		"CACHE_TTL":       "90m",
	})

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.LogLevel)
	}
	if cfg.LLMTemperature != 0 {
		t.Errorf("expected temperature 0, got %v", cfg.LLMTemperature)
	}
	if cfg.CacheTTL != 90*time.Minute {
		t.Errorf("expected cache ttl 90m, got %v", cfg.CacheTTL)
	}
}

func TestLoadProviderOverrides(t *testing.T) {
	cfg := LoadFrom(map[string]string{
		"LLM_PROVIDER":   "openai",
		"QUEUE_PROVIDER": "nats",
		"CACHE_PROVIDER": "redis",
	})

	if cfg.LLMProvider != "openai" {
		t.Errorf("expected LLM provider 'openai', got %s", cfg.LLMProvider)
	}
	if cfg.QueueProvider != "nats" {
		t.Errorf("expected queue provider 'nats', got %s", cfg.QueueProvider)
	}
	if cfg.CacheProvider != "redis" {
		t.Errorf("expected cache provider 'redis', got %s", cfg.CacheProvider)
	}
}

func TestSettings(t *testing.T) {
	cfg := Config{OllamaHost: "http://gpu:11434", LLMModel: "llama3", LLMMaxTokens: 0, LLMTemperature: 0.7}

	got := cfg.Settings()
	want := llm.Settings{Host: "http://gpu:11434", Model: "llama3", MaxTokens: llm.DefaultMaxTokens, Temperature: 0.7}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadUsesProcessEnvironment(t *testing.T) {
	t.Setenv("LLM_MODEL", "mistral:7b")

	if got := Load().LLMModel; got != "mistral:7b" {
		t.Errorf("expected model from environment, got %s", got)
	}
}

func TestLoadFromInvalidValueKeepsDefaults(t *testing.T) {
	cfg := LoadFrom(map[string]string{"PORT": "not-a-number"})

	if cfg.LogLevel != "info" {
		t.Errorf("expected defaults to survive a parse error, got log level %q", cfg.LogLevel)
	}
}
