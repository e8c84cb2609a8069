package gemini

import (
	"context"

	gemini "github.com/google/generative-ai-go/genai"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/embedder"
)

const DefaultModel = "text-embedding-004"

type Embedder struct {
	*gemini.Client

	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func (p *Embedder) SetClient(clt *gemini.Client) {
	p.Client = clt
}

func New(client *gemini.Client, opts ...embedder.Option) *Embedder {
	return &Embedder{
		Client:  client,
		Options: embedder.NewOptions(embedder.ProviderGemini, DefaultModel, opts...),
	}
}

func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	model := p.EmbeddingModel(p.Model())
	resp, err := model.EmbedContent(ctx, gemini.Text(text))
	if err != nil {
		return err
	}
	if resp.Embedding == nil {
		return embedder.ErrNoEmbedding
	}
	if usage != nil {
		usage.InputTokens += int64(components.CountTokens(text))
	}
	embedding.Object = text
	embedding.Embedding = resp.Embedding.Values
	embedding.Index = 0
	return nil
}

func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	model := p.EmbeddingModel(p.Model())
	batch := model.NewBatch()
	for _, part := range parts {
		batch.AddContent(gemini.Text(part))
	}
	resp, err := model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}
	ret := make([]embedder.Embedding, 0, len(resp.Embeddings))
	for idx, v := range resp.Embeddings {
		if idx >= len(parts) {
			break
		}
		if usage != nil {
			usage.InputTokens += int64(components.CountTokens(parts[idx]))
		}
		ret = append(ret, embedder.Embedding{
			Object:    parts[idx],
			Embedding: v.Values,
			Index:     idx,
		})
	}
	return ret, nil
}
