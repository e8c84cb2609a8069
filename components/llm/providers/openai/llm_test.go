package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/llm"
)

func newTestServer(t *testing.T, content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
			t.Errorf("expect system + user messages, got %+v", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
			Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 3},
		})
	}))
}

func TestGenerate(t *testing.T) {
	srv := newTestServer(t, "Paris")
	defer srv.Close()
	p := New(NewClient("test", srv.URL), llm.WithModel("llama3"), llm.WithProvider(llm.ProviderOllama))
	resp, err := p.Generate(context.Background(), "capital of France?", components.WithSystemPrompt("be brief"))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if resp.Text != "Paris" {
		t.Errorf("expect Paris, got %q", resp.Text)
	}
	if resp.Model != "llama3" {
		t.Errorf("expect model llama3, got %q", resp.Model)
	}
	if resp.Usage.InputTokens != 12 || resp.Usage.OutputTokens != 3 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
}

func TestGenerateEmpty(t *testing.T) {
	srv := newTestServer(t, "")
	defer srv.Close()
	p := New(NewClient("test", srv.URL))
	_, err := p.Generate(context.Background(), "hi", components.WithSystemPrompt("sys"))
	if !errors.Is(err, components.ErrEmptyCompletion) {
		t.Fatalf("expect ErrEmptyCompletion, got %v", err)
	}
}
