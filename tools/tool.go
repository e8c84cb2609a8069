package tools

import (
	"context"
)

// Tool is a typed capability an agent can invoke
type Tool[I any, O any] interface {
	Title() string
	Description() string
	Run(context.Context, *I) (*O, error)
}

// SearchResult is one hit returned by a web search backend
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content,omitempty"`
}

// Searcher is implemented by web search tools, it returns at most max results
type Searcher interface {
	Title() string
	Search(ctx context.Context, query string, max int) ([]SearchResult, error)
}
