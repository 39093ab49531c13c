package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/loansight/loansight/common/httpx"
	"github.com/loansight/loansight/config"
)

// openaiProvider speaks any OpenAI-compatible chat-completions endpoint
// (OpenAI itself, Groq, or a local gateway via BaseURL).
type openaiProvider struct {
	client    openai.Client
	cfg       config.LLMConfig
	available bool
}

// NewProvider builds a completion provider from config. A missing API key is
// not an error: the provider is constructed unavailable and every Complete
// call returns ErrUnavailable so callers exercise their fallbacks.
func NewProvider(cfg config.LLMConfig) Provider {
	p := &openaiProvider{cfg: cfg}
	if cfg.APIKey == "" {
		return p
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpx.NewClient(httpx.Options{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		})),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	p.client = openai.NewClient(opts...)
	p.available = true
	return p
}

func (p *openaiProvider) GetProviderType() string { return "openai" }

func (p *openaiProvider) Complete(ctx context.Context, req Request) (string, error) {
	if !p.available {
		return "", ErrUnavailable
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.cfg.MaxTokens
	}
	// Temperature 0 is meaningful (deterministic); only negative values
	// defer to the configured default.
	temperature := req.Temperature
	if temperature < 0 {
		temperature = p.cfg.Temperature
	}
	system := req.System
	if system == "" {
		system = "You are a helpful AI assistant that generates precise code and analysis for data queries."
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(p.cfg.TimeoutMS)*time.Millisecond)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(req.Prompt),
		},
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
	}
	if req.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := p.client.Chat.Completions.New(callCtx, params)
	if err != nil {
		return "", fmt.Errorf("completion call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion call: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
