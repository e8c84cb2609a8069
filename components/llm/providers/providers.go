package providers

import (
	"github.com/bububa/omniquery/components/llm/providers/anthropic"
	"github.com/bububa/omniquery/components/llm/providers/cohere"
	"github.com/bububa/omniquery/components/llm/providers/gemini"
	"github.com/bububa/omniquery/components/llm/providers/openai"
)

var (
	FromOpenAI    = openai.New
	FromAnthropic = anthropic.New
	FromGemini    = gemini.New
	FromCohere    = cohere.New
)
