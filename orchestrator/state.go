package orchestrator

import (
	"time"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/components"
)

// Step dispatch state machine step
type Step string

const (
	StepStart      Step = "start"
	StepClassify   Step = "classify"
	StepExecute    Step = "execute"
	StepSynthesize Step = "synthesize"
	StepFallback   Step = "fallback"
	StepFormat     Step = "format"
	StepDone       Step = "done"
)

// State is owned by a single Process call and never shared across queries
type State struct {
	QueryID   string
	Request   string
	Context   agents.Context
	Plan      Plan
	Cursor    int
	Results   []*agents.Result
	Failures  []string
	// AgentsUsed agents which answered, plus FallbackAgent when the fallback ran
	AgentsUsed []string
	Outcome    Outcome
	Formatted  string
	Usage      components.LLMUsage
	// Steps visited, in order
	Steps []Step
	// Abandoned plan entries skipped because the query timed out
	Abandoned []string
	Started   time.Time
}

func newState(queryID string, query string, sessionID string) *State {
	return &State{
		QueryID:    queryID,
		Request:    query,
		Context:    agents.Context{OriginalQuery: query, SessionID: sessionID},
		AgentsUsed: []string{},
		Started:    time.Now(),
	}
}

// next is the post execute decision
func (s *State) next() Step {
	switch {
	case len(s.Results) > 0:
		return StepSynthesize
	case s.Cursor < len(s.Plan):
		return StepExecute
	}
	return StepFallback
}

// abandon drops the rest of the plan and picks the finalizing step
func (s *State) abandon() Step {
	if s.Cursor < len(s.Plan) {
		s.Abandoned = append(s.Abandoned, s.Plan[s.Cursor:].Names()...)
		s.Cursor = len(s.Plan)
	}
	if len(s.Results) > 0 {
		return StepSynthesize
	}
	return StepFallback
}

// Visited reports whether step ran
func (s *State) Visited(step Step) bool {
	for _, v := range s.Steps {
		if v == step {
			return true
		}
	}
	return false
}
