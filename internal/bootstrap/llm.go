package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Providers accepted by NewLLM.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Default models per provider.
const (
	DefaultOpenAIModel    = "gpt-4o"
	DefaultAnthropicModel = "claude-sonnet-4-0"
)

var (
	ErrUnknownProvider = errors.New("unknown LLM provider")
	ErrEmptyCompletion = errors.New("empty completion")
)

// Prompt is a single system+user exchange.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
	// JSON asks the provider for a JSON object when it supports that.
	JSON bool
}

// LLM completes a prompt and returns the trimmed reply text.
type LLM interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// LLMOptions configures NewLLM. BaseURL overrides the provider endpoint.
type LLMOptions struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// NewLLM builds the client for opts.Provider.
func NewLLM(opts LLMOptions) (LLM, error) {
	if opts.APIKey == "" {
		return nil, errors.New("LLM API key is required")
	}
	switch strings.ToLower(opts.Provider) {
	case ProviderOpenAI:
		ro := []openaioption.RequestOption{openaioption.WithAPIKey(opts.APIKey)}
		if opts.BaseURL != "" {
			ro = append(ro, openaioption.WithBaseURL(opts.BaseURL))
		}
		model := opts.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		return &openAI{client: openai.NewClient(ro...), model: model}, nil
	case ProviderAnthropic:
		ro := []anthropicoption.RequestOption{anthropicoption.WithAPIKey(opts.APIKey)}
		if opts.BaseURL != "" {
			ro = append(ro, anthropicoption.WithBaseURL(opts.BaseURL))
		}
		model := opts.Model
		if model == "" {
			model = DefaultAnthropicModel
		}
		return &claude{client: anthropic.NewClient(ro...), model: model}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}

type openAI struct {
	client openai.Client
	model  string
}

func (o *openAI) Complete(ctx context.Context, p Prompt) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(p.User),
		},
	}
	if p.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrEmptyCompletion)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type claude struct {
	client anthropic.Client
	model  string
}

func (c *claude) Complete(ctx context.Context, p Prompt) (string, error) {
	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		System:    []anthropic.TextBlockParam{{Text: p.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("anthropic: %w", ErrEmptyCompletion)
}
