package cohere

import (
	"context"
	"fmt"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/llm"
)

const DefaultModel = "command-r"

// LLM Cohere chat backend
type LLM struct {
	*cohereClient.Client

	llm.Options
}

var _ components.LLM = (*LLM)(nil)

func New(client *cohereClient.Client, opts ...llm.Option) *LLM {
	return &LLM{
		Client:  client,
		Options: llm.NewOptions(llm.ProviderCohere, DefaultModel, opts...),
	}
}

// NewClient builds an api client, empty baseURL keeps the public endpoint
func NewClient(apiKey string, baseURL string) *cohereClient.Client {
	opts := []option.RequestOption{option.WithToken(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return cohereClient.NewClient(opts...)
}

func (p *LLM) Generate(ctx context.Context, prompt string, opts ...components.GenerateOption) (*components.LLMResponse, error) {
	params := p.Options.Generate(opts...)
	model := p.Model()
	req := cohere.ChatRequest{
		Message: prompt,
		Model:   &model,
	}
	if params.SystemPrompt != "" {
		req.Preamble = &params.SystemPrompt
	}
	if params.Temperature != nil {
		temperature := float64(*params.Temperature)
		req.Temperature = &temperature
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = &params.MaxTokens
	}
	if timeout := p.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := p.Chat(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Provider(), err)
	}
	if resp.Text == "" {
		return nil, fmt.Errorf("%s: %w", p.Provider(), components.ErrEmptyCompletion)
	}
	ret := &components.LLMResponse{
		Text:    resp.Text,
		Model:   model,
		Latency: time.Since(start),
	}
	if resp.Meta != nil && resp.Meta.Tokens != nil {
		usage := new(components.LLMUsage)
		if v := resp.Meta.Tokens.InputTokens; v != nil {
			usage.InputTokens = int64(*v)
		}
		if v := resp.Meta.Tokens.OutputTokens; v != nil {
			usage.OutputTokens = int64(*v)
		}
		ret.Usage = usage
	} else {
		ret.Usage = components.EstimateUsage(prompt, resp.Text)
	}
	return ret, nil
}
