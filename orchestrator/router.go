package orchestrator

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bububa/omniquery/agents"
)

// Router scores enabled agents concurrently and builds the execution plan
type Router struct {
	Options
	registry *agents.Registry
}

func NewRouter(registry *agents.Registry, opts ...Option) *Router {
	return &Router{
		Options:  newOptions(opts...),
		registry: registry,
	}
}

// Route returns the plan for qc. When only is given, agents outside it are not considered.
// An empty plan means no agent is confident enough.
func (r *Router) Route(ctx context.Context, qc agents.Context, only ...string) Plan {
	candidates := r.registry.Enabled()
	if len(only) > 0 {
		candidates = slices.DeleteFunc(candidates, func(agent agents.Agent) bool {
			return !slices.Contains(only, agent.Name())
		})
	}
	if len(candidates) == 0 {
		return Plan{}
	}
	scores := make([]float64, len(candidates))
	var g errgroup.Group
	if r.scoreConcurrency > 0 {
		g.SetLimit(r.scoreConcurrency)
	}
	for idx, agent := range candidates {
		g.Go(func() error {
			scores[idx] = r.score(ctx, agent, qc)
			return nil
		})
	}
	g.Wait()

	plan := make(Plan, 0, len(candidates))
	for idx, agent := range candidates {
		if scores[idx] >= r.minConfidence {
			plan = append(plan, PlanEntry{Agent: agent.Name(), Confidence: scores[idx]})
		}
	}
	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].Confidence > plan[j].Confidence
	})
	if len(plan) > r.maxAgents {
		plan = plan[:r.maxAgents]
	}
	for idx := range plan {
		plan[idx].Rank = idx + 1
	}
	zerolog.Ctx(ctx).Debug().Str("intent", string(qc.Intent)).Strs("plan", plan.Names()).Msg("route")
	return plan
}

type scoreResult struct {
	score float64
	err   error
}

// score runs CanHandle under the score timeout. Errors, panics, timeouts and
// out of range values count as 0.
func (r *Router) score(ctx context.Context, agent agents.Agent, qc agents.Context) float64 {
	ctx, cancel := context.WithTimeout(ctx, r.scoreTimeout)
	defer cancel()
	ch := make(chan scoreResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- scoreResult{err: fmt.Errorf("panic: %v", rec)}
			}
		}()
		score, err := agent.CanHandle(ctx, qc)
		ch <- scoreResult{score: score, err: err}
	}()
	var res scoreResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	logger := zerolog.Ctx(ctx)
	if res.err != nil {
		logger.Warn().Err(res.err).Str("agent", agent.Name()).Msg("scoring failed")
		return 0
	}
	if math.IsNaN(res.score) {
		logger.Warn().Str("agent", agent.Name()).Msg("scoring returned NaN")
		return 0
	}
	score := agents.Clamp(res.score)
	logger.Debug().Str("agent", agent.Name()).Float64("score", score).Msg("agent scored")
	return score
}
