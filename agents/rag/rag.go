// Package rag answers questions from documents indexed in a vector store
package rag

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/document"
	"github.com/bububa/omniquery/components/embedder"
	"github.com/bububa/omniquery/components/vectordb"
	"github.com/bububa/omniquery/schema"
)

// ErrNoRelevantDocuments is reported when no chunk passes the relevance threshold
var ErrNoRelevantDocuments = fmt.Errorf("%w: no relevant documents found", agents.ErrNoResults)

// Agent is the document retrieval agent
type Agent struct {
	*agents.Base
	Options
}

var (
	_ agents.Agent        = (*Agent)(nil)
	_ agents.StatusSetter = (*Agent)(nil)
)

func New(opts ...Option) *Agent {
	ret := new(Agent)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	if ret.collection == "" {
		ret.collection = vectordb.DefaultCollection
	}
	if ret.topK <= 0 {
		ret.topK = DefaultTopK
	}
	if ret.threshold <= 0 {
		ret.threshold = DefaultRelevanceThreshold
	}
	if ret.contextGenerator == nil {
		ret.contextGenerator = defaultContextGenerator
	}
	base := []agents.Option{
		agents.WithName(DefaultName),
		agents.WithDescription(DefaultDescription),
		agents.WithIntents(agents.IntentSummarization, agents.IntentDocumentSearch, agents.IntentGeneral),
		agents.WithScoreTable(DefaultScoreTable),
	}
	ret.Base = agents.NewBase(append(base, ret.agentOpts...)...)
	return ret
}

// Initialize checks the retrieval pipeline is wired, an empty index is not an error
func (r *Agent) Initialize(ctx context.Context) error {
	if r.Status() == agents.StatusDisabled {
		return nil
	}
	if r.embedder == nil || r.vectordb == nil {
		err := errors.New("document agent requires an embedder and a vector store")
		r.SetStatus(agents.StatusError, err.Error())
		return err
	}
	count, err := r.vectordb.Count(ctx, r.collection)
	if err != nil {
		r.SetStatus(agents.StatusError, err.Error())
		return fmt.Errorf("open collection %s: %w", r.collection, err)
	}
	zerolog.Ctx(ctx).Info().Str("agent", r.Name()).Str("collection", r.collection).Int("chunks", count).Msg("vector store ready")
	return r.Base.Initialize(ctx)
}

// AddDocuments chunks, embeds and stores docs, returning the number of chunks stored
func (r *Agent) AddDocuments(ctx context.Context, docs ...document.Document) (int, *components.LLMUsage, error) {
	if r.embedder == nil || r.vectordb == nil {
		return 0, nil, errors.New("document agent requires an embedder and a vector store")
	}
	totalUsage := new(components.LLMUsage)
	var stored int
	for _, doc := range docs {
		var chunks []embedder.Chunk
		if splitter, ok := r.chunker.(interface {
			Split(string) []embedder.Chunk
		}); ok {
			chunks = splitter.Split(doc.Content)
		} else if r.chunker != nil {
			for _, txt := range r.chunker.SplitText(doc.Content) {
				chunks = append(chunks, embedder.Chunk{Text: txt})
			}
		} else if doc.Content != "" {
			chunks = []embedder.Chunk{{Text: doc.Content}}
		}
		if len(chunks) == 0 {
			continue
		}
		usage := new(components.LLMUsage)
		embedded, err := embedder.EmbedChunks(ctx, r.embedder, chunks, usage)
		totalUsage.Merge(usage)
		if err != nil {
			return stored, totalUsage, fmt.Errorf("embed %s: %w", doc.Name, err)
		}
		for idx := range embedded {
			embedded[idx].Meta = map[string]string{"chunk": strconv.Itoa(embedded[idx].Index)}
		}
		records := vectordb.RecordsFromChunks(embedded, doc.Meta)
		if err := r.vectordb.Insert(ctx, r.collection, records...); err != nil {
			return stored, totalUsage, fmt.Errorf("insert %s: %w", doc.Name, err)
		}
		stored += len(records)
		zerolog.Ctx(ctx).Debug().Str("document", doc.Name).Int("chunks", len(records)).Msg("document indexed")
	}
	return stored, totalUsage, nil
}

// Search embeds query and returns the closest chunks above the relevance threshold
func (r *Agent) Search(ctx context.Context, query string, opts ...vectordb.SearchOption) ([]vectordb.Record, *components.LLMUsage, error) {
	embedding := new(embedder.Embedding)
	usage := new(components.LLMUsage)
	if err := r.embedder.Embed(ctx, query, embedding, usage); err != nil {
		return nil, usage, fmt.Errorf("embed query: %w", err)
	}
	searchOpts := []vectordb.SearchOption{
		vectordb.SearchWithCollection(r.collection),
		vectordb.SearchWithTopK(r.topK),
		vectordb.SearchWithMinScore(r.threshold),
	}
	searchOpts = append(searchOpts, r.searchOptions...)
	records, err := r.vectordb.Search(ctx, embedding.Embedding, append(searchOpts, opts...)...)
	if err != nil {
		return nil, usage, err
	}
	kept := records[:0]
	for _, record := range records {
		if record.Score >= r.threshold {
			kept = append(kept, record)
		}
	}
	return kept, usage, nil
}

func (r *Agent) Execute(ctx context.Context, qc agents.Context) *agents.Result {
	start := time.Now()
	if !r.Ready() {
		return r.Failure(agents.ErrNotReady, time.Since(start))
	}
	defer r.Begin()()

	usage := new(components.LLMUsage)
	query := r.refine(ctx, qc.Query, usage)
	records, searchUsage, err := r.Search(ctx, query)
	usage.Merge(searchUsage)
	if err != nil {
		return r.failure(err, usage, start)
	}
	if len(records) == 0 {
		return r.failure(ErrNoRelevantDocuments, usage, start)
	}
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant answering questions based on company documents.\n\n")
	fmt.Fprintf(&sb, "Context:\n%s\n\n", r.contextGenerator(records))
	fmt.Fprintf(&sb, "Question: %s\n\n", qc.Query)
	sb.WriteString("Answer clearly and concisely based on the documents above.")
	resp, err := r.Generate(ctx, sb.String())
	if err != nil {
		return r.failure(fmt.Errorf("generate answer: %w", err), usage, start)
	}
	usage.Merge(resp.Usage)

	var total float64
	sources := make([]schema.Source, 0, len(records))
	for _, record := range records {
		total += record.Score
		identifier := record.Embedding.Meta["source"]
		if identifier == "" {
			identifier = "Unknown"
		}
		sources = append(sources, schema.Source{
			AgentName:        r.Name(),
			SourceType:       schema.SourceDocument,
			SourceIdentifier: identifier,
			RelevanceScore:   round3(record.Score),
			Excerpt:          Excerpt(record.Embedding.Object, ExcerptLength),
		})
	}
	ret := r.Success(resp.Text, agents.Clamp(round3(total/float64(len(records)))), time.Since(start))
	ret.Sources = sources
	ret.Usage = *usage
	ret.Metadata = map[string]any{"chunks": len(records)}
	return ret
}

func (r *Agent) failure(err error, usage *components.LLMUsage, start time.Time) *agents.Result {
	ret := r.Failure(err, time.Since(start))
	ret.Usage = *usage
	return ret
}

// refine rewrites query through the language backend, the original is kept on failure
func (r *Agent) refine(ctx context.Context, query string, usage *components.LLMUsage) string {
	if !r.refineQuery {
		return query
	}
	prompt := fmt.Sprintf(`You are a Query Refiner. Your goal is to optimize the user's search query for a retrieval system.
1. Correct any spelling mistakes.
2. Do NOT change the intent of the question.
3. Output ONLY the refined query string. No preamble or explanations.

Original Query: %s
Refined Query:`, query)
	resp, err := r.Generate(ctx, prompt)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("agent", r.Name()).Msg("query refinement failed")
		return query
	}
	usage.Merge(resp.Usage)
	if refined := strings.TrimSpace(resp.Text); refined != "" {
		return refined
	}
	return query
}

func defaultContextGenerator(records []vectordb.Record) string {
	parts := make([]string, 0, len(records))
	for _, record := range records {
		parts = append(parts, record.Embedding.Object)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// Excerpt returns the first n runes of txt followed by an ellipsis when cut
func Excerpt(txt string, n int) string {
	runes := []rune(strings.TrimSpace(txt))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
