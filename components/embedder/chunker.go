package embedder

// Chunker splits text into embeddable parts
type Chunker interface {
	SplitText(string) []string
	TokenCount(txt string) int
}
