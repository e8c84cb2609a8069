package vectordb

import "github.com/bububa/omniquery/components/embedder"

const DefaultTopK = 3

type SearchOptions struct {
	Collection string
	TopK       int
	MinScore   float64
	Meta       map[string]string
	Include    string
	Exclude    string
}

type SearchOption func(*SearchOptions)

func SearchWithCollection(name string) SearchOption {
	return func(r *SearchOptions) {
		r.Collection = name
	}
}

func SearchWithTopK(topK int) SearchOption {
	return func(r *SearchOptions) {
		r.TopK = topK
	}
}

func SearchWithMinScore(score float64) SearchOption {
	return func(r *SearchOptions) {
		r.MinScore = score
	}
}

func SearchWithMeta(meta map[string]string) SearchOption {
	return func(r *SearchOptions) {
		r.Meta = meta
	}
}

func SearchWithInclude(v string) SearchOption {
	return func(r *SearchOptions) {
		r.Include = v
	}
}

func SearchWithExclude(v string) SearchOption {
	return func(r *SearchOptions) {
		r.Exclude = v
	}
}

// NewSearchOptions applies opts over engine defaults
func NewSearchOptions(defaults Options, opts ...SearchOption) SearchOptions {
	ret := SearchOptions{
		Collection: DefaultCollection,
		TopK:       defaults.TopK,
		MinScore:   defaults.MinScore,
	}
	for _, opt := range opts {
		opt(&ret)
	}
	if ret.TopK <= 0 {
		ret.TopK = DefaultTopK
	}
	if ret.Collection == "" {
		ret.Collection = DefaultCollection
	}
	return ret
}

// Record represents a single result from a vector similarity search.
type Record struct {
	// ID is the identifier for the result
	ID string
	// Score is the cosine similarity for the result
	Score float64
	// Embedding embeddings for doc
	Embedding embedder.Embedding
}

// RecordsFromChunks builds records from embedded chunks sharing meta
func RecordsFromChunks(chunks []embedder.EmbeddedChunk, meta map[string]string) []Record {
	ret := make([]Record, 0, len(chunks))
	for _, chunk := range chunks {
		emb := chunk.Embedding
		if len(meta) > 0 {
			m := make(map[string]string, len(meta)+len(emb.Meta))
			for k, v := range meta {
				m[k] = v
			}
			for k, v := range emb.Meta {
				m[k] = v
			}
			emb.Meta = m
		}
		ret = append(ret, Record{Embedding: emb})
	}
	return ret
}
