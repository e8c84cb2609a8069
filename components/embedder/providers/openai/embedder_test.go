package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/embedder"
)

func TestBatchEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		if req.Model != "nomic-embed-text" {
			t.Errorf("unexpected model %s", req.Model)
		}
		resp := openai.EmbeddingResponse{Usage: openai.Usage{PromptTokens: 7}}
		for i := range req.Input {
			resp.Data = append(resp.Data, openai.Embedding{Index: i, Embedding: []float32{float32(i), 1}})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()
	cfg := openai.DefaultConfig("test")
	cfg.BaseURL = srv.URL
	p := New(openai.NewClientWithConfig(cfg), embedder.WithModel("nomic-embed-text"), embedder.WithProvider(embedder.ProviderOllama))
	if p.Provider() != embedder.ProviderOllama {
		t.Errorf("unexpected provider %s", p.Provider())
	}
	var usage components.LLMUsage
	ret, err := p.BatchEmbed(context.Background(), []string{"a", "b"}, &usage)
	if err != nil {
		t.Fatal(err)
	}
	if len(ret) != 2 || ret[1].Object != "b" || ret[1].Embedding[0] != 1 {
		t.Errorf("unexpected embeddings %+v", ret)
	}
	if usage.InputTokens != 7 {
		t.Errorf("expect 7 input tokens, got %d", usage.InputTokens)
	}
	var one embedder.Embedding
	if err := p.Embed(context.Background(), "c", &one, nil); err != nil {
		t.Fatal(err)
	}
	if one.Object != "c" {
		t.Errorf("unexpected object %q", one.Object)
	}
}
