package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/llm"
)

// DefaultModel used when no model is configured
const DefaultModel = openai.GPT4oMini

// LLM chat completion backend for OpenAI and OpenAI compatible servers (Ollama)
type LLM struct {
	*openai.Client

	llm.Options
}

var _ components.LLM = (*LLM)(nil)

func New(client *openai.Client, opts ...llm.Option) *LLM {
	return &LLM{
		Client:  client,
		Options: llm.NewOptions(llm.ProviderOpenAI, DefaultModel, opts...),
	}
}

// NewClient builds an api client, baseURL may point to an Ollama server ("http://localhost:11434/v1")
func NewClient(apiKey string, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func (p *LLM) Generate(ctx context.Context, prompt string, opts ...components.GenerateOption) (*components.LLMResponse, error) {
	params := p.Options.Generate(opts...)
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if params.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: params.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
	req := openai.ChatCompletionRequest{
		Model:     p.Model(),
		Messages:  messages,
		MaxTokens: params.MaxTokens,
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if timeout := p.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := p.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Provider(), err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%s: %w", p.Provider(), components.ErrEmptyCompletion)
	}
	return &components.LLMResponse{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: &components.LLMUsage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
		},
		Latency: time.Since(start),
	}, nil
}
