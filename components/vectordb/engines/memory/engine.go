package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bububa/omniquery/components/embedder"
	"github.com/bububa/omniquery/components/vectordb"
)

// Engine implements the vectordb.Engine interface using in-memory storage.
type Engine struct {
	// collections stores all vector collections in memory
	collections *sync.Map
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

// Collection is a named set of records
type Collection struct {
	records []vectordb.Record
	index   map[string]int
	mu      sync.RWMutex
}

// Upsert adds records, replacing records with the same id
func (c *Collection) Upsert(records ...vectordb.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.index == nil {
		c.index = make(map[string]int)
	}
	for _, record := range records {
		if idx, ok := c.index[record.ID]; ok {
			c.records[idx] = record
			continue
		}
		c.index[record.ID] = len(c.records)
		c.records = append(c.records, record)
	}
}

// Records returns a copy of the stored records
func (c *Collection) Records() []vectordb.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]vectordb.Record(nil), c.records...)
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// New creates a new in-memory vector database instance.
func New(opts ...vectordb.Option) *Engine {
	ret := &Engine{
		collections: new(sync.Map),
		Options: vectordb.Options{
			EngineType: vectordb.Memory,
		},
	}
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret
}

// HasCollection checks if a collection with the given name exists in the database.
func (e *Engine) HasCollection(name string) bool {
	_, exists := e.collections.Load(name)
	return exists
}

// DropCollection removes a collection and all its data from the database.
func (e *Engine) DropCollection(name string) {
	e.collections.Delete(name)
}

// Collection returns the named collection, creating it when missing
func (e *Engine) Collection(_ context.Context, name string) *Collection {
	if name == "" {
		name = vectordb.DefaultCollection
	}
	col, _ := e.collections.LoadOrStore(name, new(Collection))
	return col.(*Collection)
}

func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	docs := make([]vectordb.Record, 0, len(records))
	for _, record := range records {
		if record.ID == "" {
			record.ID = record.Embedding.UUID()
		}
		docs = append(docs, record)
	}
	e.Collection(ctx, collectionName).Upsert(docs...)
	return nil
}

func (e *Engine) Count(ctx context.Context, collectionName string) (int, error) {
	return e.Collection(ctx, collectionName).Len(), nil
}

// Search ranks records by cosine similarity, best first
func (e *Engine) Search(ctx context.Context, vector []float32, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	option := vectordb.NewSearchOptions(e.Options, opts...)
	all := e.Collection(ctx, option.Collection).Records()
	records := make([]vectordb.Record, 0, len(all))
	for _, record := range all {
		if !recordMatchesFilters(&record, &option) {
			continue
		}
		record.Score = embedder.CosineSimilarity(vector, record.Embedding.Embedding)
		if record.Score < option.MinScore {
			continue
		}
		records = append(records, record)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
	topK := min(option.TopK, len(records))
	return records[:topK], nil
}

// recordMatchesFilters checks if a record matches the metadata and content filters.
func recordMatchesFilters(record *vectordb.Record, opts *vectordb.SearchOptions) bool {
	// A record's metadata must have *all* the fields in the where clause.
	for k, v := range opts.Meta {
		if record.Embedding.Meta[k] != v {
			return false
		}
	}
	if opts.Include != "" && !strings.Contains(record.Embedding.Object, opts.Include) {
		return false
	}
	if opts.Exclude != "" && strings.Contains(record.Embedding.Object, opts.Exclude) {
		return false
	}
	return true
}
