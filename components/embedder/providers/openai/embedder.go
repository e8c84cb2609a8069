package openai

import (
	"context"

	"github.com/sashabaranov/go-openai"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/embedder"
)

const DefaultModel = string(openai.SmallEmbedding3)

type Embedder struct {
	*openai.Client

	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func (p *Embedder) SetClient(clt *openai.Client) {
	p.Client = clt
}

func New(client *openai.Client, opts ...embedder.Option) *Embedder {
	return &Embedder{
		Client:  client,
		Options: embedder.NewOptions(embedder.ProviderOpenAI, DefaultModel, opts...),
	}
}

func (p *Embedder) Embed(ctx context.Context, text string, embedding *embedder.Embedding, usage *components.LLMUsage) error {
	ret, err := p.BatchEmbed(ctx, []string{text}, usage)
	if err != nil {
		return err
	}
	if len(ret) == 0 {
		return embedder.ErrNoEmbedding
	}
	*embedding = ret[0]
	return nil
}

func (p *Embedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]embedder.Embedding, error) {
	req := openai.EmbeddingRequest{
		Input: parts,
		Model: openai.EmbeddingModel(p.Model()),
	}
	resp, err := p.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}
	if usage != nil {
		usage.InputTokens += int64(resp.Usage.PromptTokens)
	}
	ret := make([]embedder.Embedding, 0, len(resp.Data))
	for _, v := range resp.Data {
		if v.Index < 0 || v.Index >= len(parts) {
			continue
		}
		ret = append(ret, embedder.Embedding{
			Object:    parts[v.Index],
			Embedding: v.Embedding,
			Index:     v.Index,
		})
	}
	return ret, nil
}
