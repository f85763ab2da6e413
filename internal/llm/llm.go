package llm

import (
	"context"
	"fmt"
	"time"
)

// Defaults for Settings.
const (
	DefaultHost        = "http://localhost:11434"
	DefaultModel       = "granite3.3:2b"
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.2

	// ChatTimeout bounds a single gateway call.
	ChatTimeout = 120 * time.Second
)

// Provider names used in failure markers and metrics labels.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Settings are the per-call generation options.
type Settings struct {
	Host        string  `json:"ollama_host"`
	Model       string  `json:"model_name"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// DefaultSettings returns the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		Host:        DefaultHost,
		Model:       DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
	}
}

// WithDefaults fills unset fields. Temperature is kept as is since zero is a
// meaningful value.
func (s Settings) WithDefaults() Settings {
	if s.Host == "" {
		s.Host = DefaultHost
	}
	if s.Model == "" {
		s.Model = DefaultModel
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultMaxTokens
	}
	return s
}

// Gateway sends one system/user prompt pair to a model. Implementations never
// return errors; failures are carried in the Result.
type Gateway interface {
	Chat(ctx context.Context, system, user string, s Settings) Result
}

// Result is either the model's text or the reason the call failed.
type Result struct {
	Text     string
	Err      error
	Provider string
}

// Success wraps model output.
func Success(provider, text string) Result {
	return Result{Text: text, Provider: provider}
}

// Failure wraps a gateway error.
func Failure(provider string, err error) Result {
	return Result{Err: err, Provider: provider}
}

// OK reports whether the model answered.
func (r Result) OK() bool { return r.Err == nil }

// String renders the result for display. Failures become a placeholder such
// as "[Ollama error] connection refused".
func (r Result) String() string {
	if r.Err == nil {
		return r.Text
	}
	return fmt.Sprintf("[%s error] %s", providerTitle(r.Provider), r.Err)
}

func providerTitle(p string) string {
	switch p {
	case ProviderOllama:
		return "Ollama"
	case ProviderOpenAI:
		return "OpenAI"
	default:
		return "LLM"
	}
}
