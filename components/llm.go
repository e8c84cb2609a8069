package components

import (
	"context"
	"errors"
	"time"
)

// ErrEmptyCompletion is returned when a provider answers without any text
var ErrEmptyCompletion = errors.New("empty completion")

// LLM is the language backend shared by agents, synthesizer and fallback.
// Implementations must be safe for concurrent use.
type LLM interface {
	// Model returns the model name used for completions
	Model() string
	// Generate submits a prompt and returns the completion text with usage
	Generate(ctx context.Context, prompt string, opts ...GenerateOption) (*LLMResponse, error)
}

// LLMResponse language backend completion
type LLMResponse struct {
	Text    string        `json:"text,omitempty"`
	Model   string        `json:"model,omitempty"`
	Usage   *LLMUsage     `json:"usage,omitempty"`
	Latency time.Duration `json:"latency,omitempty"`
}

// LLMUsage token usage counters
type LLMUsage struct {
	InputTokens  int64 `json:"input_tokens,omitempty"`
	OutputTokens int64 `json:"output_tokens,omitempty"`
}

// Merge adds v to u
func (u *LLMUsage) Merge(v *LLMUsage) {
	if v == nil {
		return
	}
	u.InputTokens += v.InputTokens
	u.OutputTokens += v.OutputTokens
}

// Total returns input + output tokens
func (u LLMUsage) Total() int64 {
	return u.InputTokens + u.OutputTokens
}

// GenerateOptions per-call generation parameters
type GenerateOptions struct {
	// SystemPrompt optional system instruction
	SystemPrompt string
	// Temperature nil means provider default
	Temperature *float32
	// MaxTokens 0 means provider default
	MaxTokens int
}

// GenerateOption configures a single Generate call
type GenerateOption func(*GenerateOptions)

func WithSystemPrompt(prompt string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompt = prompt
	}
}

func WithTemperature(temperature float32) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = &temperature
	}
}

func WithMaxTokens(maxTokens int) GenerateOption {
	return func(o *GenerateOptions) {
		o.MaxTokens = maxTokens
	}
}

// NewGenerateOptions applies opts over the given defaults
func NewGenerateOptions(defaults GenerateOptions, opts ...GenerateOption) GenerateOptions {
	ret := defaults
	for _, opt := range opts {
		opt(&ret)
	}
	return ret
}
