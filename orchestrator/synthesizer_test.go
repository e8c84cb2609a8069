package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/components/llmtest"
	"github.com/bububa/omniquery/schema"
)

var (
	dbSource  = schema.Source{AgentName: "DBAgent", SourceType: schema.SourceDatabase, SourceIdentifier: "employees", RelevanceScore: 0.85}
	docSource = schema.Source{AgentName: "DocAgent", SourceType: schema.SourceDocument, SourceIdentifier: "handbook.md", RelevanceScore: 0.6}
)

func TestSynthesizeNoResults(t *testing.T) {
	llm := llmtest.New("merged")
	got := NewSynthesizer(llm).Synthesize(context.Background(), nil)
	if got.Answer != NoAnswer || got.Confidence != 0 {
		t.Errorf("unexpected outcome %+v", got)
	}
	if llm.Calls() != 0 {
		t.Errorf("expect no backend call, got %d", llm.Calls())
	}
}

func TestSynthesizePassThrough(t *testing.T) {
	llm := llmtest.New("merged")
	res := &agents.Result{Agent: "DBAgent", Success: true, Answer: "42 employees", Confidence: 0.9, Sources: []schema.Source{dbSource}}
	got := NewSynthesizer(llm).Synthesize(context.Background(), []*agents.Result{res})
	want := Outcome{Answer: "42 employees", Confidence: 0.9, Sources: []schema.Source{dbSource}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Synthesize() mismatch (-want +got):\n%s", diff)
	}
	if llm.Calls() != 0 {
		t.Errorf("single result must not call the backend, got %d calls", llm.Calls())
	}
}

func TestSynthesizeMerge(t *testing.T) {
	llm := llmtest.New("There are 42 employees, see the handbook for the policy.")
	results := []*agents.Result{
		{Agent: "DocAgent", Success: true, Answer: "The handbook describes the policy.", Confidence: 0.6, Sources: []schema.Source{docSource}},
		{Agent: "DBAgent", Success: true, Answer: "42 employees", Confidence: 0.8, Sources: []schema.Source{dbSource, docSource}},
	}
	got := NewSynthesizer(llm).Synthesize(context.Background(), results)
	if got.Err != nil {
		t.Fatalf("unexpected error %v", got.Err)
	}
	if got.Answer != "There are 42 employees, see the handbook for the policy." {
		t.Errorf("unexpected answer %q", got.Answer)
	}
	if got.Confidence != 0.8 {
		t.Errorf("expect max confidence 0.8, got %v", got.Confidence)
	}
	if diff := cmp.Diff([]schema.Source{docSource, dbSource}, got.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
	prompt := llm.LastPrompt()
	for _, part := range []string{"[From DocAgent]: The handbook describes the policy.", "[From DBAgent]: 42 employees", "\n\n---\n\n", "present both perspectives"} {
		if !strings.Contains(prompt, part) {
			t.Errorf("prompt misses %q:\n%s", part, prompt)
		}
	}
	if got.Usage.Total() == 0 {
		t.Error("expect merge usage to be reported")
	}
}

func TestSynthesizeMergeFailure(t *testing.T) {
	cause := errors.New("rate limited")
	results := []*agents.Result{
		{Agent: "A", Success: true, Answer: "first", Confidence: 0.6, Sources: []schema.Source{docSource}},
		{Agent: "B", Success: true, Answer: "second", Confidence: 0.8, Sources: []schema.Source{dbSource}},
	}
	for name, syn := range map[string]*Synthesizer{
		"backend error": NewSynthesizer(llmtest.Failing(cause)),
		"no backend":    NewSynthesizer(nil),
	} {
		t.Run(name, func(t *testing.T) {
			got := syn.Synthesize(context.Background(), results)
			if got.Answer != "first\n\nsecond" {
				t.Errorf("expect concatenated answers, got %q", got.Answer)
			}
			if got.Confidence != 0 || len(got.Sources) != 0 {
				t.Errorf("degraded outcome must have no confidence nor sources, got %+v", got)
			}
			if got.Err == nil {
				t.Error("expect merge error to be reported")
			}
		})
	}
}

func TestFallbackAnswer(t *testing.T) {
	llm := llmtest.New("Paris is the capital of France.")
	got := NewFallback(llm).Answer(context.Background(), "What is the capital of France?")
	want := Outcome{
		Answer:     FallbackDisclaimer + "Paris is the capital of France.",
		Confidence: FallbackConfidence,
		Sources:    []schema.Source{FallbackSource},
		Usage:      got.Usage,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Answer() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(llm.LastPrompt(), "Question: What is the capital of France?") {
		t.Errorf("unexpected prompt %q", llm.LastPrompt())
	}
}

func TestFallbackFailure(t *testing.T) {
	cause := errors.New("backend down")
	got := NewFallback(llmtest.Failing(cause)).Answer(context.Background(), "anything")
	if got.Answer != Unavailable || got.Confidence != 0 || len(got.Sources) != 0 {
		t.Errorf("unexpected outcome %+v", got)
	}
	if !errors.Is(got.Err, cause) {
		t.Errorf("expect %v, got %v", cause, got.Err)
	}
}
