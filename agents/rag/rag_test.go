package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/components/document"
	"github.com/bububa/omniquery/components/embedder/embeddertest"
	"github.com/bububa/omniquery/components/embedder/splitter"
	"github.com/bububa/omniquery/components/llmtest"
	"github.com/bububa/omniquery/components/vectordb/engines/memory"
	"github.com/bububa/omniquery/schema"
)

var testDocs = []document.Document{
	{
		Name:    "leave.md",
		Content: "Annual leave policy. Employees get 25 days of paid leave per year.",
		Meta:    map[string]string{"source": "leave.md"},
	},
	{
		Name:    "expense.md",
		Content: "Expense policy. Submit receipts within 30 days.",
		Meta:    map[string]string{"source": "expense.md"},
	},
}

func newTestAgent(t *testing.T, llm *llmtest.LLM, opts ...Option) *Agent {
	t.Helper()
	opts = append([]Option{
		WithEmbedder(embeddertest.New("leave", "expense", "onboarding")),
		WithVectorDB(memory.New()),
		WithChunker(splitter.NewSentences(splitter.WithChunkSize(50))),
		WithAgentOptions(agents.WithLLM(llm)),
	}, opts...)
	agent := New(opts...)
	if err := agent.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, _, err := agent.AddDocuments(context.Background(), testDocs...); err != nil {
		t.Fatalf("add documents: %v", err)
	}
	return agent
}

func TestExecute(t *testing.T) {
	llm := llmtest.New("You get 25 days of annual leave.")
	agent := newTestAgent(t, llm)
	ret := agent.Execute(context.Background(), agents.NewContext("How much leave do I get?", ""))
	if ret.Failed() {
		t.Fatalf("execute failed: %s", ret.Error)
	}
	if ret.Answer != "You get 25 days of annual leave." {
		t.Errorf("unexpected answer %q", ret.Answer)
	}
	if ret.Confidence != 1 {
		t.Errorf("expect confidence 1 for an exact match, got %v", ret.Confidence)
	}
	if len(ret.Sources) != 1 {
		t.Fatalf("expect only the leave document to be cited, got %+v", ret.Sources)
	}
	src := ret.Sources[0]
	if src.SourceType != schema.SourceDocument || src.SourceIdentifier != "leave.md" || src.AgentName != DefaultName {
		t.Errorf("unexpected source %+v", src)
	}
	prompt := llm.LastPrompt()
	if !strings.Contains(prompt, "25 days of paid leave") || strings.Contains(prompt, "receipts") {
		t.Errorf("prompt must carry only relevant context:\n%s", prompt)
	}
}

func TestExecuteNoRelevantDocuments(t *testing.T) {
	llm := llmtest.New("unused")
	agent := newTestAgent(t, llm)
	ret := agent.Execute(context.Background(), agents.NewContext("What is the capital of France?", ""))
	if !ret.Failed() {
		t.Fatalf("expect failure, got %+v", ret)
	}
	if ret.Error != ErrNoRelevantDocuments.Error() {
		t.Errorf("unexpected error %q", ret.Error)
	}
	if llm.Calls() != 0 {
		t.Errorf("expect no completion without context, got %d calls", llm.Calls())
	}
}

func TestExecuteRefineQuery(t *testing.T) {
	llm := llmtest.New("Receipts are due within 30 days.").On("Query Refiner", "expense deadline")
	agent := newTestAgent(t, llm, WithRefineQuery(true))
	ret := agent.Execute(context.Background(), agents.NewContext("when are recepits due", ""))
	if ret.Failed() {
		t.Fatalf("execute failed: %s", ret.Error)
	}
	if len(ret.Sources) != 1 || ret.Sources[0].SourceIdentifier != "expense.md" {
		t.Errorf("expect the refined query to retrieve expense.md, got %+v", ret.Sources)
	}
	if llm.Calls() != 2 {
		t.Errorf("expect refine and answer completions, got %d", llm.Calls())
	}
}

func TestExecuteBackendFailure(t *testing.T) {
	agent := newTestAgent(t, llmtest.Failing(errors.New("backend down")))
	ret := agent.Execute(context.Background(), agents.NewContext("leave days", ""))
	if !ret.Failed() || !strings.Contains(ret.Error, "backend down") {
		t.Errorf("expect backend failure, got %+v", ret)
	}
}

func TestInitializeRequiresPipeline(t *testing.T) {
	agent := New()
	if err := agent.Initialize(context.Background()); err == nil {
		t.Fatal("expect error without embedder and vector store")
	}
	if agent.Status() != agents.StatusError {
		t.Errorf("expect error status, got %s", agent.Status())
	}
}

func TestCanHandle(t *testing.T) {
	agent := newTestAgent(t, llmtest.New("x"))
	tests := []struct {
		query  string
		intent agents.Intent
		expect float64
	}{
		{query: "hello there", intent: agents.IntentGeneral, expect: 0.5},
		{query: "what is the leave policy", intent: agents.IntentGeneral, expect: 0.7},
		{query: "summarize the expense policy document", intent: agents.IntentSummarization, expect: 0.9},
	}
	for _, tt := range tests {
		got, _ := agent.CanHandle(context.Background(), agents.NewContext(tt.query, "").WithIntent(tt.intent))
		if diff := got - tt.expect; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("CanHandle(%q) = %v, expect %v", tt.query, got, tt.expect)
		}
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("short", 10); got != "short" {
		t.Errorf("unexpected excerpt %q", got)
	}
	if got := Excerpt("ééééé", 3); got != "ééé..." {
		t.Errorf("unexpected excerpt %q", got)
	}
}
