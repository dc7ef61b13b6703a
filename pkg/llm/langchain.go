package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainProvider implements Provider on top of a langchaingo model
type LangChainProvider struct {
	id    string
	name  string
	model string
	llm   llms.Model
}

// NewProvider builds the adapter for a configured provider id. DeepSeek and
// Moonshot expose OpenAI-compatible APIs and reuse the OpenAI client with a
// custom base URL.
func NewProvider(id string, cfg config.ProviderConfig) (*LangChainProvider, error) {
	switch id {
	case "openai", "deepseek", "moonshot":
		opts := []openai.Option{openai.WithToken(cfg.APIKey)}
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", id, err)
		}
		return &LangChainProvider{id: id, name: cfg.Name, model: cfg.Model, llm: model}, nil

	case "anthropic":
		opts := []anthropic.Option{anthropic.WithToken(cfg.APIKey)}
		if cfg.Model != "" {
			opts = append(opts, anthropic.WithModel(cfg.Model))
		}
		model, err := anthropic.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic client: %w", err)
		}
		return &LangChainProvider{id: id, name: cfg.Name, model: cfg.Model, llm: model}, nil

	case "ollama":
		var opts []ollama.Option
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		if cfg.Model != "" {
			opts = append(opts, ollama.WithModel(cfg.Model))
		}
		model, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return &LangChainProvider{id: id, name: cfg.Name, model: cfg.Model, llm: model}, nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", id)
	}
}

func (p *LangChainProvider) ID() string    { return p.id }
func (p *LangChainProvider) Name() string  { return p.name }
func (p *LangChainProvider) Model() string { return p.model }

// Stream sends the conversation and forwards response chunks in arrival
// order. Error-role messages are local bookkeeping and are not sent upstream.
func (p *LangChainProvider) Stream(ctx context.Context, history []chat.Message, onFragment FragmentFunc) (Result, error) {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case chat.RoleSystem:
			messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, msg.Content))
		case chat.RoleAssistant:
			messages = append(messages, llms.TextParts(schema.ChatMessageTypeAI, msg.Content))
		case chat.RoleUser:
			messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, msg.Content))
		}
	}

	start := time.Now()
	resp, err := p.llm.GenerateContent(ctx, messages,
		llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			if len(chunk) > 0 && onFragment != nil {
				onFragment(string(chunk))
			}
			return nil
		}),
	)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return Result{LatencyMs: latency}, err
	}

	result := Result{LatencyMs: latency}
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		result.Content = choice.Content
		if n, ok := choice.GenerationInfo["PromptTokens"].(int); ok {
			result.PromptTokens = n
		}
		if n, ok := choice.GenerationInfo["CompletionTokens"].(int); ok {
			result.OutputTokens = n
		}
	}
	return result, nil
}
