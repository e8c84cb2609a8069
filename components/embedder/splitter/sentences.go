package splitter

import (
	"bytes"
	"strings"

	"github.com/clipperhouse/uax29/sentences"

	"github.com/bububa/omniquery/components/embedder"
)

// Sentences packs UAX#29 sentences into chunks of at most chunkSize tokens.
// A single sentence longer than chunkSize becomes its own chunk.
type Sentences struct {
	Options
}

var _ embedder.Chunker = (*Sentences)(nil)

func NewSentences(opts ...Option) *Sentences {
	return &Sentences{
		Options: newOptions(opts...),
	}
}

// Split returns chunks with their sentence span
func (s *Sentences) Split(txt string) []embedder.Chunk {
	var (
		parts  []string
		counts []int
	)
	for _, seg := range sentences.SegmentAll([]byte(txt)) {
		seg = bytes.TrimSpace(seg)
		if len(seg) == 0 {
			continue
		}
		parts = append(parts, string(seg))
		counts = append(counts, s.tokenCounter.Count(seg))
	}
	var (
		chunks []embedder.Chunk
		start  int
		tokens int
	)
	flush := func(end int) {
		chunks = append(chunks, embedder.Chunk{
			Text:          strings.Join(parts[start:end], " "),
			TokenSize:     tokens,
			StartSentence: start,
			EndSentence:   end,
		})
	}
	for i, count := range counts {
		if tokens > 0 && tokens+count > s.chunkSize {
			flush(i)
			next := i
			var overlap int
			for next > start && overlap < s.overlap {
				next--
				overlap += counts[next]
			}
			start, tokens = next, overlap
		}
		tokens += count
	}
	if tokens > 0 {
		flush(len(parts))
	}
	return chunks
}

// SplitText returns chunk texts only
func (s *Sentences) SplitText(txt string) []string {
	chunks := s.Split(txt)
	if len(chunks) == 0 {
		return nil
	}
	ret := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		ret = append(ret, chunk.Text)
	}
	return ret
}
