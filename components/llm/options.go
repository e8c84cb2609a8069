package llm

import (
	"time"

	"github.com/bububa/omniquery/components"
)

type Provider = string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderCohere    Provider = "cohere"
	ProviderOllama    Provider = "ollama"
)

const (
	DefaultTemperature float32 = 0.3
	DefaultMaxTokens           = 1024
	DefaultTimeout             = 60 * time.Second
)

// Options holds the configuration shared by every language backend provider
type Options struct {
	provider    Provider
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// Option is a function type for configuring a provider
type Option func(*Options)

func WithProvider(provider Provider) Option {
	return func(o *Options) {
		o.provider = provider
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.model = model
	}
}

func WithTemperature(temperature float32) Option {
	return func(o *Options) {
		o.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.maxTokens = maxTokens
	}
}

// WithTimeout bounds a single completion call, 0 disables the bound
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.timeout = timeout
	}
}

// NewOptions returns Options with defaults applied
func NewOptions(provider Provider, model string, opts ...Option) Options {
	ret := Options{
		provider:    provider,
		model:       model,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		timeout:     DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&ret)
	}
	return ret
}

func (o Options) Provider() Provider {
	return o.provider
}

func (o Options) Model() string {
	return o.model
}

func (o Options) Timeout() time.Duration {
	return o.timeout
}

// Generate merges provider defaults with per-call options
func (o Options) Generate(opts ...components.GenerateOption) components.GenerateOptions {
	temperature := o.temperature
	return components.NewGenerateOptions(components.GenerateOptions{
		Temperature: &temperature,
		MaxTokens:   o.maxTokens,
	}, opts...)
}
