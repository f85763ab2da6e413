package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient serves the Gateway contract through the Chat Completions API,
// for OpenAI itself or any compatible endpoint. Settings.Host is ignored; the
// endpoint is fixed when the client is built.
type OpenAIClient struct {
	client *openai.Client
	log    *slog.Logger
}

// NewOpenAIClient builds a client. An empty baseURL targets api.openai.com.
func NewOpenAIClient(apiKey, baseURL string, log *slog.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if log == nil {
		log = slog.Default()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	cli := openai.NewClient(opts...)
	return &OpenAIClient{client: &cli, log: log}, nil
}

// Chat implements Gateway.
func (c *OpenAIClient) Chat(ctx context.Context, system, user string, s Settings) Result {
	if c == nil || c.client == nil {
		return Failure(ProviderOpenAI, errors.New("nil openai client"))
	}
	s = s.WithDefaults()

	reqCtx, cancel := context.WithTimeout(ctx, ChatTimeout)
	defer cancel()
	resp, err := c.client.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(s.Model),
		Messages:            buildMessages(system, user),
		Temperature:         openai.Float(s.Temperature),
		MaxCompletionTokens: openai.Int(int64(s.MaxTokens)),
	})
	if err != nil {
		c.log.Warn("openai chat failed", "model", s.Model, "err", err)
		return Failure(ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return Success(ProviderOpenAI, "")
	}
	return Success(ProviderOpenAI, strings.TrimSpace(resp.Choices[0].Message.Content))
}

func buildMessages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}
