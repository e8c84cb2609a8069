package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/schema"
)

// NoAnswer is returned when synthesis is reached without any result
const NoAnswer = "I couldn't find a good answer from any of my data sources. Please try rephrasing your question."

// Outcome is the answer produced by synthesis or fallback
type Outcome struct {
	Answer     string
	Confidence float64
	Sources    []schema.Source
	Usage      components.LLMUsage
	// Err degraded path cause, the outcome is still usable
	Err error
}

// Synthesizer merges successful agent results into one answer
type Synthesizer struct {
	llm components.LLM
}

func NewSynthesizer(llm components.LLM) *Synthesizer {
	return &Synthesizer{llm: llm}
}

// Synthesize passes a single result through and merges several through the
// language backend. Confidence is the maximum of the inputs. A failed merge
// degrades to the concatenated answers with confidence 0 and no sources.
func (s *Synthesizer) Synthesize(ctx context.Context, results []*agents.Result) Outcome {
	switch len(results) {
	case 0:
		return Outcome{Answer: NoAnswer}
	case 1:
		r := results[0]
		return Outcome{
			Answer:     r.Answer,
			Confidence: r.Confidence,
			Sources:    r.Sources,
		}
	}
	var (
		sections   []string
		answers    []string
		confidence float64
		sources    [][]schema.Source
	)
	for _, r := range results {
		if r.Answer == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("[From %s]: %s", r.Agent, r.Answer))
		answers = append(answers, r.Answer)
		confidence = max(confidence, r.Confidence)
		sources = append(sources, r.Sources)
	}
	prompt := fmt.Sprintf("You have received answers from multiple data sources. Synthesize them into a single, coherent, comprehensive answer.\n\nANSWERS:\n%s\n\nProvide a unified answer. If the answers complement each other, combine the information. If they conflict, present both perspectives.",
		strings.Join(sections, "\n\n---\n\n"))
	resp, err := s.merge(ctx, prompt)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("synthesis failed, concatenating answers")
		return Outcome{
			Answer: strings.Join(answers, "\n\n"),
			Err:    err,
		}
	}
	ret := Outcome{
		Answer:     resp.Text,
		Confidence: confidence,
		Sources:    schema.MergeSources(sources...),
	}
	ret.Usage.Merge(resp.Usage)
	return ret
}

func (s *Synthesizer) merge(ctx context.Context, prompt string) (resp *components.LLMResponse, err error) {
	if s.llm == nil {
		return nil, errors.New("no language backend")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return s.llm.Generate(ctx, prompt)
}
