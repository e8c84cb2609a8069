package rag

import (
	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/components/embedder"
	"github.com/bububa/omniquery/components/vectordb"
)

const (
	DefaultName        = "DocAgent"
	DefaultDescription = "Retrieves and answers questions from indexed company documents (PDF, DOCX, XLSX, HTML, Markdown, text)."
	DefaultTopK        = 3
	// DefaultRelevanceThreshold minimum similarity of a retrieved chunk
	DefaultRelevanceThreshold = 0.35
	// ExcerptLength runes of chunk text quoted in citations
	ExcerptLength = 200
)

// Keywords scoring keywords of the document agent
var Keywords = []string{
	"document", "report", "file", "pdf", "policy", "manual",
	"guideline", "procedure", "handbook", "standard", "leave",
	"expense", "onboarding", "company", "rules", "internal",
}

// DefaultScoreTable any keyword adds the same boost
var DefaultScoreTable = agents.ScoreTable{
	Baseline:    0.5,
	Keywords:    Keywords,
	OneMatch:    0.2,
	MultiMatch:  0.2,
	Intents:     []agents.Intent{agents.IntentSummarization, agents.IntentDocumentSearch},
	IntentBoost: 0.2,
}

type Options struct {
	embedder         embedder.Embedder
	chunker          embedder.Chunker
	vectordb         vectordb.Engine
	collection       string
	topK             int
	threshold        float64
	refineQuery      bool
	contextGenerator func([]vectordb.Record) string
	searchOptions    []vectordb.SearchOption
	agentOpts        []agents.Option
}

type Option func(*Options)

func WithChunker(chunker embedder.Chunker) Option {
	return func(r *Options) {
		r.chunker = chunker
	}
}

func WithEmbedder(e embedder.Embedder) Option {
	return func(r *Options) {
		r.embedder = e
	}
}

func WithVectorDB(v vectordb.Engine) Option {
	return func(r *Options) {
		r.vectordb = v
	}
}

func WithCollection(name string) Option {
	return func(r *Options) {
		r.collection = name
	}
}

func WithTopK(k int) Option {
	return func(r *Options) {
		r.topK = k
	}
}

func WithRelevanceThreshold(v float64) Option {
	return func(r *Options) {
		r.threshold = v
	}
}

// WithRefineQuery asks the language backend to fix spelling before retrieval
func WithRefineQuery(v bool) Option {
	return func(r *Options) {
		r.refineQuery = v
	}
}

// WithContextGenerator replaces how retrieved chunks are rendered into the prompt
func WithContextGenerator(fn func([]vectordb.Record) string) Option {
	return func(r *Options) {
		r.contextGenerator = fn
	}
}

func WithSearchOptions(opts ...vectordb.SearchOption) Option {
	return func(r *Options) {
		r.searchOptions = opts
	}
}

func WithAgentOptions(opts ...agents.Option) Option {
	return func(r *Options) {
		r.agentOpts = append(r.agentOpts, opts...)
	}
}
