package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"police-security-bot/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.Completer = (*OpenAICompleter)(nil)

type OpenAIOptions struct {
	APIKey  string
	BaseURL string // e.g. https://openrouter.ai/api/v1
	Model   string
	Referer string
	Title   string
	Timeout time.Duration

	HTTPClient *http.Client // optional, tests inject httptest clients
}

// OpenAICompleter talks to any OpenAI-compatible /chat/completions endpoint
// (OpenRouter by default). SDK retries are disabled; a failed call goes
// straight to the keyword fallback.
type OpenAICompleter struct {
	client openai.Client
	model  string
}

func NewOpenAICompleter(o OpenAIOptions) (*OpenAICompleter, error) {
	if o.APIKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if o.Model == "" {
		o.Model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(o.APIKey),
		option.WithMaxRetries(0),
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(o.BaseURL, "/")+"/"))
	}
	if o.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", o.Referer))
	}
	if o.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", o.Title))
	}
	if o.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(o.Timeout))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	return &OpenAICompleter{
		client: openai.NewClient(opts...),
		model:  o.Model,
	}, nil
}

func (o *OpenAICompleter) Provider() string { return "openai" }

func (o *OpenAICompleter) Complete(ctx context.Context, messages []adapter.Message, opts adapter.CompletionOptions) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("openai: no messages")
	}
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.JSONOutput {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("no choice content")
}

func toOpenAIMessages(msgs []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
