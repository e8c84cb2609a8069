package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	gemini "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/llm"
)

const DefaultModel = "gemini-1.5-flash"

// LLM Gemini generative model backend
type LLM struct {
	*gemini.Client

	llm.Options
}

var _ components.LLM = (*LLM)(nil)

func New(client *gemini.Client, opts ...llm.Option) *LLM {
	return &LLM{
		Client:  client,
		Options: llm.NewOptions(llm.ProviderGemini, DefaultModel, opts...),
	}
}

// NewClient builds an api client with an api key
func NewClient(ctx context.Context, apiKey string) (*gemini.Client, error) {
	return gemini.NewClient(ctx, option.WithAPIKey(apiKey))
}

func (p *LLM) Generate(ctx context.Context, prompt string, opts ...components.GenerateOption) (*components.LLMResponse, error) {
	params := p.Options.Generate(opts...)
	model := p.GenerativeModel(p.Model())
	if params.SystemPrompt != "" {
		model.SystemInstruction = &gemini.Content{
			Parts: []gemini.Part{gemini.Text(params.SystemPrompt)},
		}
	}
	if params.Temperature != nil {
		model.SetTemperature(*params.Temperature)
	}
	if params.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(params.MaxTokens))
	}
	if timeout := p.Timeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := model.GenerateContent(ctx, gemini.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Provider(), err)
	}
	text := candidateText(resp)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", p.Provider(), components.ErrEmptyCompletion)
	}
	ret := &components.LLMResponse{
		Text:    text,
		Model:   p.Model(),
		Latency: time.Since(start),
	}
	if meta := resp.UsageMetadata; meta != nil {
		ret.Usage = &components.LLMUsage{
			InputTokens:  int64(meta.PromptTokenCount),
			OutputTokens: int64(meta.CandidatesTokenCount),
		}
	} else {
		ret.Usage = components.EstimateUsage(prompt, text)
	}
	return ret, nil
}

func candidateText(resp *gemini.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(gemini.Text); ok {
			builder.WriteString(string(txt))
		}
	}
	return builder.String()
}
