package embedder

import (
	"context"
	"errors"
	"math"

	"github.com/bububa/omniquery/components"
)

// ErrNoEmbedding is returned when a provider answers without vectors
var ErrNoEmbedding = errors.New("no embedding returned")

type Embedder interface {
	Provider() Provider
	Model() string
	Embed(context.Context, string, *Embedding, *components.LLMUsage) error
	BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]Embedding, error)
}

// EmbedChunks embeds a slice of text chunks with a single batch call.
func EmbedChunks(ctx context.Context, embedder Embedder, chunks []Chunk, usage *components.LLMUsage) ([]EmbeddedChunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		parts = append(parts, chunk.Text)
	}

	ret, err := embedder.BatchEmbed(ctx, parts, usage)
	if err != nil {
		return nil, err
	}
	embeddedChunks := make([]EmbeddedChunk, 0, len(ret))
	for _, v := range ret {
		if v.Index < 0 || v.Index >= len(chunks) {
			continue
		}
		embeddedChunks = append(embeddedChunks, EmbeddedChunk{
			Embedding: v,
			Chunk:     &chunks[v.Index],
		})
	}
	return embeddedChunks, nil
}

// CosineSimilarity of two vectors, 0 when lengths differ or a vector is zero
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Normalize scales v to unit length in place
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return v
}
