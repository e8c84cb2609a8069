package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/bububa/omniquery/components"
)

type fakeEmbedder struct {
	Options
}

func (f *fakeEmbedder) Embed(ctx context.Context, txt string, embedding *Embedding, usage *components.LLMUsage) error {
	embedding.Object = txt
	embedding.Embedding = []float32{float32(len(txt)), 1}
	return nil
}

func (f *fakeEmbedder) BatchEmbed(ctx context.Context, parts []string, usage *components.LLMUsage) ([]Embedding, error) {
	ret := make([]Embedding, 0, len(parts))
	for i := len(parts) - 1; i >= 0; i-- {
		ret = append(ret, Embedding{Object: parts[i], Embedding: []float32{float32(i)}, Index: i})
	}
	return ret, nil
}

func TestEmbedChunks(t *testing.T) {
	chunks := []Chunk{{Text: "a"}, {Text: "b"}}
	got, err := EmbedChunks(context.Background(), &fakeEmbedder{Options: NewOptions("fake", "m")}, chunks, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expect 2 embedded chunks, got %d", len(got))
	}
	for _, v := range got {
		if v.Chunk.Text != v.Object {
			t.Errorf("chunk %q paired with embedding of %q", v.Chunk.Text, v.Object)
		}
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "same", a: []float32{1, 0}, b: []float32{2, 0}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
		{name: "mismatch", a: []float32{1}, b: []float32{1, 0}, want: 0},
		{name: "zero", a: []float32{0, 0}, b: []float32{1, 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CosineSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expect %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEmbeddingUUID(t *testing.T) {
	a := Embedding{Object: "text", Meta: map[string]string{"source": "a.md", "chunk": "1"}}
	b := Embedding{Object: "text", Meta: map[string]string{"chunk": "1", "source": "a.md"}}
	if a.UUID() != b.UUID() {
		t.Error("uuid must not depend on map order")
	}
	c := Embedding{Object: "text", Meta: map[string]string{"source": "b.md", "chunk": "1"}}
	if a.UUID() == c.UUID() {
		t.Error("uuid must depend on metadata")
	}
}
