package providers

import (
	"github.com/bububa/omniquery/components/embedder/providers/cohere"
	"github.com/bububa/omniquery/components/embedder/providers/gemini"
	"github.com/bububa/omniquery/components/embedder/providers/openai"
)

var (
	FromOpenAI = openai.New
	FromCohere = cohere.New
	FromGemini = gemini.New
)
