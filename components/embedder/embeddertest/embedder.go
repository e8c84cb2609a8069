// Package embeddertest provides a deterministic embedder for tests
package embeddertest

import (
	"context"
	"strings"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/embedder"
)

// Embedder maps text onto one dimension per vocabulary term. A dimension is
// 1 when the lower cased text contains the term. Text without any term gets
// a trailing "unknown" dimension so that vectors are never zero.
type Embedder struct {
	Vocabulary []string
	Err        error
}

var _ embedder.Embedder = (*Embedder)(nil)

func New(vocabulary ...string) *Embedder {
	return &Embedder{Vocabulary: vocabulary}
}

func (e *Embedder) Provider() embedder.Provider {
	return "test"
}

func (e *Embedder) Model() string {
	return "bag-of-terms"
}

// Vector returns the embedding of txt
func (e *Embedder) Vector(txt string) []float32 {
	txt = strings.ToLower(txt)
	ret := make([]float32, len(e.Vocabulary)+1)
	var hit bool
	for i, term := range e.Vocabulary {
		if strings.Contains(txt, term) {
			ret[i] = 1
			hit = true
		}
	}
	if !hit {
		ret[len(e.Vocabulary)] = 1
	}
	return ret
}

func (e *Embedder) Embed(ctx context.Context, txt string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	if e.Err != nil {
		return e.Err
	}
	embedding.Object = txt
	embedding.Embedding = e.Vector(txt)
	if usage != nil {
		usage.InputTokens += int64(components.CountTokens(txt))
	}
	return nil
}

func (e *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	ret := make([]embedder.Embedding, 0, len(parts))
	for idx, part := range parts {
		var embedding embedder.Embedding
		if err := e.Embed(ctx, part, &embedding, usage); err != nil {
			return nil, err
		}
		embedding.Index = idx
		ret = append(ret, embedding)
	}
	return ret, nil
}
