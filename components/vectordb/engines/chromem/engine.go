package chromem

import (
	"context"

	"github.com/philippgille/chromem-go"

	"github.com/bububa/omniquery/components/vectordb"
)

type Engine struct {
	db *chromem.DB
	vectordb.Options
}

var _ vectordb.Engine = (*Engine)(nil)

func New(db *chromem.DB, opts ...vectordb.Option) *Engine {
	ret := &Engine{
		db: db,
		Options: vectordb.Options{
			EngineType: vectordb.Chromem,
		},
	}
	for _, opt := range opts {
		opt(&ret.Options)
	}
	return ret
}

// Open returns a persistent database at path, or an in-memory one when path is empty
func Open(path string, compress bool) (*chromem.DB, error) {
	if path == "" {
		return chromem.NewDB(), nil
	}
	return chromem.NewPersistentDB(path, compress)
}

func (e *Engine) Collection(_ context.Context, name string) (*chromem.Collection, error) {
	if name == "" {
		name = vectordb.DefaultCollection
	}
	// embeddings are always provided by the caller, the func is never invoked
	return e.db.GetOrCreateCollection(name, nil, nil)
}

func (e *Engine) Insert(ctx context.Context, collectionName string, records ...vectordb.Record) error {
	col, err := e.Collection(ctx, collectionName)
	if err != nil {
		return err
	}
	for _, record := range records {
		var doc chromem.Document
		recordToDocument(&record, &doc)
		if err := col.AddDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) Count(ctx context.Context, collectionName string) (int, error) {
	col, err := e.Collection(ctx, collectionName)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

// Search performs vector similarity search on a collection.
func (e *Engine) Search(ctx context.Context, vector []float32, opts ...vectordb.SearchOption) ([]vectordb.Record, error) {
	option := vectordb.NewSearchOptions(e.Options, opts...)
	col, err := e.Collection(ctx, option.Collection)
	if err != nil {
		return nil, err
	}
	// chromem rejects nResults above the collection size
	topK := min(option.TopK, col.Count())
	if topK == 0 {
		return nil, nil
	}
	var whereDocument map[string]string
	if option.Include != "" || option.Exclude != "" {
		whereDocument = make(map[string]string, 2)
		if option.Include != "" {
			whereDocument["$contains"] = option.Include
		}
		if option.Exclude != "" {
			whereDocument["$not_contains"] = option.Exclude
		}
	}
	results, err := col.QueryEmbedding(ctx, vector, topK, option.Meta, whereDocument)
	if err != nil {
		return nil, err
	}
	records := make([]vectordb.Record, 0, len(results))
	for _, result := range results {
		var rec vectordb.Record
		resultToRecord(&result, &rec)
		if rec.Score < option.MinScore {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func resultToRecord(res *chromem.Result, record *vectordb.Record) {
	record.ID = res.ID
	record.Score = float64(res.Similarity)
	record.Embedding.Object = res.Content
	record.Embedding.Meta = res.Metadata
	record.Embedding.Embedding = res.Embedding
}

func recordToDocument(record *vectordb.Record, doc *chromem.Document) {
	if record.ID == "" {
		record.ID = record.Embedding.UUID()
	}
	doc.ID = record.ID
	doc.Content = record.Embedding.Object
	doc.Metadata = record.Embedding.Meta
	doc.Embedding = record.Embedding.Embedding
}
