package app

import (
	"context"
	"fmt"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/embedder"
	embedders "github.com/bububa/omniquery/components/embedder/providers"
	"github.com/bububa/omniquery/components/llm"
	"github.com/bububa/omniquery/components/llm/providers"
	"github.com/bububa/omniquery/components/llm/providers/anthropic"
	"github.com/bububa/omniquery/components/llm/providers/cohere"
	"github.com/bububa/omniquery/components/llm/providers/gemini"
	"github.com/bububa/omniquery/components/llm/providers/openai"
	"github.com/bububa/omniquery/config"
)

const (
	// OllamaBaseURL OpenAI compatible endpoint of a local Ollama server
	OllamaBaseURL    = "http://localhost:11434/v1"
	OllamaModel      = "llama3.1"
	OllamaEmbedModel = "nomic-embed-text"
)

// NewLLM builds the language backend for cfg.Provider. The returned func
// releases provider resources.
func NewLLM(ctx context.Context, cfg config.LLMConfig) (components.LLM, func() error, error) {
	opts := []llm.Option{
		llm.WithTemperature(cfg.Temperature),
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTimeout(cfg.Timeout),
	}
	if cfg.Model != "" {
		opts = append(opts, llm.WithModel(cfg.Model))
	}
	noop := func() error { return nil }
	switch cfg.Provider {
	case llm.ProviderOpenAI:
		return providers.FromOpenAI(openai.NewClient(cfg.APIKey, cfg.BaseURL), opts...), noop, nil
	case llm.ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = OllamaBaseURL
		}
		opts = append(opts, llm.WithProvider(llm.ProviderOllama))
		if cfg.Model == "" {
			opts = append(opts, llm.WithModel(OllamaModel))
		}
		return providers.FromOpenAI(openai.NewClient("ollama", baseURL), opts...), noop, nil
	case llm.ProviderAnthropic:
		return providers.FromAnthropic(anthropic.NewClient(cfg.APIKey, cfg.BaseURL), opts...), noop, nil
	case llm.ProviderCohere:
		return providers.FromCohere(cohere.NewClient(cfg.APIKey, cfg.BaseURL), opts...), noop, nil
	case llm.ProviderGemini:
		clt, err := gemini.NewClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini client: %w", err)
		}
		return providers.FromGemini(clt, opts...), clt.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown provider %q", config.ErrNoProvider, cfg.Provider)
}

// NewEmbedder builds the embedding backend, the provider defaults to the language backend one
func NewEmbedder(ctx context.Context, cfg *config.Config) (embedder.Embedder, func() error, error) {
	var opts []embedder.Option
	if cfg.Embedding.Model != "" {
		opts = append(opts, embedder.WithModel(cfg.Embedding.Model))
	}
	baseURL := cfg.Embedding.BaseURL
	noop := func() error { return nil }
	switch provider := cfg.EmbeddingProvider(); provider {
	case embedder.ProviderOpenAI:
		return embedders.FromOpenAI(openai.NewClient(cfg.Embedding.APIKey, baseURL), opts...), noop, nil
	case embedder.ProviderOllama:
		if baseURL == "" {
			baseURL = OllamaBaseURL
		}
		opts = append(opts, embedder.WithProvider(embedder.ProviderOllama))
		if cfg.Embedding.Model == "" {
			opts = append(opts, embedder.WithModel(OllamaEmbedModel))
		}
		return embedders.FromOpenAI(openai.NewClient("ollama", baseURL), opts...), noop, nil
	case embedder.ProviderCohere:
		return embedders.FromCohere(cohere.NewClient(cfg.Embedding.APIKey, baseURL), opts...), noop, nil
	case embedder.ProviderGemini:
		clt, err := gemini.NewClient(ctx, cfg.Embedding.APIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini client: %w", err)
		}
		return embedders.FromGemini(clt, opts...), clt.Close, nil
	default:
		return nil, nil, fmt.Errorf("no embedding api for provider %q", provider)
	}
}
