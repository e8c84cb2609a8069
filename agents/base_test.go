package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/bububa/omniquery/components/llmtest"
	"github.com/bububa/omniquery/components/systemprompt/simple"
)

func TestBaseLifecycle(t *testing.T) {
	ctx := context.Background()
	b := NewBase(WithName("test"), WithScoreTable(ScoreTable{Baseline: 0.4}))
	if b.Status() != StatusInitializing {
		t.Fatalf("expect initializing, got %s", b.Status())
	}
	if score, _ := b.CanHandle(ctx, NewContext("q", "")); score != 0 {
		t.Errorf("expect 0 before initialize, got %v", score)
	}
	if err := b.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if score, _ := b.CanHandle(ctx, NewContext("q", "")); score != 0.4 {
		t.Errorf("expect 0.4 once ready, got %v", score)
	}

	done := b.Begin()
	if b.Status() != StatusBusy {
		t.Errorf("expect busy during execution, got %s", b.Status())
	}
	if score, _ := b.CanHandle(ctx, NewContext("q", "")); score != 0.4 {
		t.Errorf("busy agent keeps scoring, got %v", score)
	}
	done()
	if b.Status() != StatusReady {
		t.Errorf("expect ready after execution, got %s", b.Status())
	}

	if err := b.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if b.Status() != StatusDisabled {
		t.Errorf("expect disabled after shutdown, got %s", b.Status())
	}
}

func TestBaseDisabled(t *testing.T) {
	b := NewBase(WithName("off"), WithDisabled(true))
	b.SetStatus(StatusReady, "")
	if b.Status() != StatusDisabled {
		t.Errorf("configured disabled agent must stay disabled, got %s", b.Status())
	}
	if h := b.Health(context.Background()); h.Name != "off" || h.Status != StatusDisabled || h.LastCheck.IsZero() {
		t.Errorf("unexpected health %+v", h)
	}
}

func TestBaseGenerate(t *testing.T) {
	ctx := context.Background()
	if _, err := NewBase().Generate(ctx, "q"); !errors.Is(err, ErrNoLLM) {
		t.Errorf("expect ErrNoLLM, got %v", err)
	}
	llm := llmtest.New("answer")
	b := NewBase(WithLLM(llm), WithSystemPromptGenerator(simple.New("be brief")), WithTemperature(0.1))
	resp, err := b.Generate(ctx, "question")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Text != "answer" {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if sys := llm.LastSystemPrompt(); sys == "" {
		t.Error("expect system prompt to be forwarded")
	}
}

func TestContext(t *testing.T) {
	qc := NewContext("  how many employees?  ", "s1")
	if qc.Query != "how many employees?" || qc.OriginalQuery != "  how many employees?  " {
		t.Errorf("unexpected query fields %+v", qc)
	}
	if qc.Intent != IntentGeneral || qc.MaxResults != DefaultMaxResults {
		t.Errorf("unexpected defaults %+v", qc)
	}
	derived := qc.WithIntent(IntentDataQuery).WithMaxResults(0)
	if qc.Intent != IntentGeneral {
		t.Error("WithIntent must not mutate the receiver")
	}
	if derived.Intent != IntentDataQuery || derived.MaxResults != DefaultMaxResults {
		t.Errorf("unexpected derived context %+v", derived)
	}
}
