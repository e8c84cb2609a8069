package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/schema"
)

const (
	// FallbackAgent name reported in agents used and citations
	FallbackAgent      = "Fallback"
	FallbackConfidence = 0.2
	// FallbackDisclaimer prefixes every general knowledge answer
	FallbackDisclaimer = "ℹ️ This answer is from general knowledge. No matching data was found in documents, databases, or configured sources.\n\n"
	// Unavailable is returned when the fallback itself fails
	Unavailable = "I was unable to process your question. Please try again."
)

// FallbackSource is the single citation of a general knowledge answer
var FallbackSource = schema.Source{
	AgentName:        FallbackAgent,
	SourceType:       schema.SourceGeneralKnowledge,
	SourceIdentifier: "LLM General Knowledge",
	RelevanceScore:   FallbackConfidence,
}

// Fallback answers from the language backend alone
type Fallback struct {
	llm components.LLM
}

func NewFallback(llm components.LLM) *Fallback {
	return &Fallback{llm: llm}
}

// Answer never fails, a backend failure yields the Unavailable message with Err set
func (f *Fallback) Answer(ctx context.Context, query string) Outcome {
	prompt := fmt.Sprintf("You are a helpful assistant. Answer this question using your general knowledge.\n\nQuestion: %s\n\nAnswer concisely and accurately.", query)
	resp, err := f.generate(ctx, prompt)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("fallback failed")
		return Outcome{Answer: Unavailable, Err: err}
	}
	ret := Outcome{
		Answer:     FallbackDisclaimer + resp.Text,
		Confidence: FallbackConfidence,
		Sources:    []schema.Source{FallbackSource},
	}
	ret.Usage.Merge(resp.Usage)
	return ret
}

func (f *Fallback) generate(ctx context.Context, prompt string) (resp *components.LLMResponse, err error) {
	if f.llm == nil {
		return nil, errors.New("no language backend")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return f.llm.Generate(ctx, prompt)
}
