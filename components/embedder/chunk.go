package embedder

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
)

// Embedding is the vector representation of a piece of text
type Embedding struct {
	Object    string            `json:"object"`
	Embedding []float32         `json:"embedding"`
	Index     int               `json:"index"`
	Meta      map[string]string `json:"meta,omitempty"`
}

// UUID returns a content derived id, stable for identical object and metadata
func (e Embedding) UUID() string {
	keys := make([]string, 0, len(e.Meta))
	for k := range e.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sb := new(bytes.Buffer)
	sb.WriteString(e.Object)
	for _, k := range keys {
		sb.WriteByte('\n')
		sb.WriteString(k + ":" + e.Meta[k])
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, sb.Bytes()).String()
}

// EmbeddedChunk represents a chunk of text along with its vector embedding
type EmbeddedChunk struct {
	Embedding
	// Chunk is the original chunk content that was embedded
	Chunk *Chunk `json:"text"`
}

// Chunk represents a piece of text with its position within the original document.
type Chunk struct {
	// Text contains the actual content of the chunk
	Text string
	// TokenSize represents the number of tokens in this chunk
	TokenSize int
	// StartSentence is the index of the first sentence in this chunk
	StartSentence int
	// EndSentence is the index of the last sentence in this chunk (exclusive)
	EndSentence int
}
