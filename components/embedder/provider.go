package embedder

type Provider = string

const (
	ProviderOpenAI Provider = "openai"
	ProviderCohere Provider = "cohere"
	ProviderGemini Provider = "gemini"
	ProviderOllama Provider = "ollama"
)
