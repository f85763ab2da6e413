package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// OllamaClient talks to Ollama's native /api/chat endpoint.
type OllamaClient struct {
	client *http.Client
	log    *slog.Logger
}

// NewOllamaClient builds a client. A nil httpClient uses http.DefaultClient;
// the per-call deadline comes from ChatTimeout.
func NewOllamaClient(httpClient *http.Client, log *slog.Logger) *OllamaClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	return &OllamaClient{client: httpClient, log: log}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

// Chat implements Gateway.
func (c *OllamaClient) Chat(ctx context.Context, system, user string, s Settings) Result {
	s = s.WithDefaults()
	text, err := c.chat(ctx, system, user, s)
	if err != nil {
		c.log.Warn("ollama chat failed", "host", s.Host, "model", s.Model, "err", err)
		return Failure(ProviderOllama, err)
	}
	return Success(ProviderOllama, text)
}

func (c *OllamaClient) chat(ctx context.Context, system, user string, s Settings) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ChatTimeout)
	defer cancel()

	body, err := json.Marshal(ollamaChatRequest{
		Model: s.Model,
		Messages: []ollamaMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: false,
		Options: ollamaOptions{
			Temperature: s.Temperature,
			NumPredict:  s.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimSuffix(s.Host, "/") + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return strings.TrimSpace(messageContent(payload)), nil
}

// messageContent digs message.content out of a decoded response. Any other
// shape yields "".
func messageContent(payload any) string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	msg, ok := obj["message"].(map[string]any)
	if !ok {
		return ""
	}
	content, _ := msg["content"].(string)
	return content
}
