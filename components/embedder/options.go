package embedder

// Options holds the configuration for creating an Embedder instance.
type Options struct {
	// provider specifies the embedding service to use (e.g., "openai", "cohere")
	provider Provider
	// model specifies the model to use
	model string
}

// Option is a function type for configuring the embedder Options.
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

// NewOptions returns Options for provider with model as default
func NewOptions(provider Provider, model string, opts ...Option) Options {
	ret := Options{
		provider: provider,
		model:    model,
	}
	for _, opt := range opts {
		opt(&ret)
	}
	return ret
}

func (i Options) Provider() Provider {
	return i.provider
}

func (i Options) Model() string {
	return i.model
}
