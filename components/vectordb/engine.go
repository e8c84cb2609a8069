package vectordb

import (
	"context"
)

type EngineType string

const (
	Memory  EngineType = "memory"
	Chromem EngineType = "chromem"
)

// DefaultCollection used when no collection is given
const DefaultCollection = "documents"

type Engine interface {
	// Insert adds records to a collection, records without id get a content derived one
	Insert(ctx context.Context, collection string, records ...Record) error
	// Search returns the records most similar to vector, best first
	Search(ctx context.Context, vector []float32, opts ...SearchOption) ([]Record, error)
	// Count returns the number of records stored in a collection
	Count(ctx context.Context, collection string) (int, error)
}
