package cohere

import (
	"context"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereClient "github.com/cohere-ai/cohere-go/v2/client"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/embedder"
)

const DefaultModel = "embed-english-v3.0"

type Embedder struct {
	*cohereClient.Client

	embedder.Options
}

var _ embedder.Embedder = (*Embedder)(nil)

func (p *Embedder) SetClient(clt *cohereClient.Client) {
	p.Client = clt
}

func New(client *cohereClient.Client, opts ...embedder.Option) *Embedder {
	return &Embedder{
		Client:  client,
		Options: embedder.NewOptions(embedder.ProviderCohere, DefaultModel, opts...),
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
	model := p.Model()
	req := cohere.EmbedRequest{
		Texts: parts,
		Model: &model,
	}
	resp, err := p.Client.Embed(ctx, &req)
	if err != nil {
		return nil, err
	}
	respV := resp.GetEmbeddingsFloats()
	if respV == nil {
		return nil, embedder.ErrNoEmbedding
	}
	if usage != nil && respV.Meta != nil && respV.Meta.Tokens != nil {
		if v := respV.Meta.Tokens.InputTokens; v != nil {
			usage.InputTokens += int64(*v)
		}
	}
	ret := make([]embedder.Embedding, 0, len(respV.Embeddings))
	for idx, values := range respV.Embeddings {
		if idx >= len(parts) {
			break
		}
		vec := make([]float32, 0, len(values))
		for _, v := range values {
			vec = append(vec, float32(v))
		}
		ret = append(ret, embedder.Embedding{
			Object:    parts[idx],
			Embedding: vec,
			Index:     idx,
		})
	}
	return ret, nil
}
