package anthropic

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/llm"
)

const DefaultModel = "claude-3-5-haiku-latest"

// LLM Claude messages backend
type LLM struct {
	*anthropic.Client

	llm.Options
}

var _ components.LLM = (*LLM)(nil)

func New(client *anthropic.Client, opts ...llm.Option) *LLM {
	return &LLM{
		Client:  client,
		Options: llm.NewOptions(llm.ProviderAnthropic, DefaultModel, opts...),
	}
}

// NewClient builds an api client, empty baseURL keeps the public endpoint
func NewClient(apiKey string, baseURL string) *anthropic.Client {
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return anthropic.NewClient(apiKey, opts...)
}

func (p *LLM) Generate(ctx context.Context, prompt string, opts ...components.GenerateOption) (*components.LLMResponse, error) {
	params := p.Options.Generate(opts...)
	req := anthropic.MessagesRequest{
		Model:       anthropic.Model(p.Model()),
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
		MaxTokens:   params.MaxTokens,
		System:      params.SystemPrompt,
		Temperature: params.Temperature,
	}
	if timeout := p.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := p.CreateMessages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Provider(), err)
	}
	text := resp.GetFirstContentText()
	if text == "" {
		return nil, fmt.Errorf("%s: %w", p.Provider(), components.ErrEmptyCompletion)
	}
	return &components.LLMResponse{
		Text:  text,
		Model: string(resp.Model),
		Usage: &components.LLMUsage{
			InputTokens:  int64(resp.Usage.InputTokens),
			OutputTokens: int64(resp.Usage.OutputTokens),
		},
		Latency: time.Since(start),
	}, nil
}
