// Package orchestrator routes a query to the most confident agents, runs them
// one after the other and merges their answers into a single response.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/schema"
)

// Orchestrator runs the dispatch state machine
type Orchestrator struct {
	Options
	registry    *agents.Registry
	router      *Router
	synthesizer *Synthesizer
	fallback    *Fallback
}

// New returns an Orchestrator over registry. llm is shared by synthesis and fallback.
func New(registry *agents.Registry, llm components.LLM, opts ...Option) *Orchestrator {
	options := newOptions(opts...)
	return &Orchestrator{
		Options:     options,
		registry:    registry,
		router:      &Router{Options: options, registry: registry},
		synthesizer: NewSynthesizer(llm),
		fallback:    NewFallback(llm),
	}
}

func (o *Orchestrator) Registry() *agents.Registry {
	return o.registry
}

func (o *Orchestrator) Router() *Router {
	return o.router
}

// Ask processes query with default request options
func (o *Orchestrator) Ask(ctx context.Context, query string, sessionID string) *schema.QueryResponse {
	return o.Process(ctx, &schema.QueryRequest{Query: query, SessionID: sessionID})
}

// Process answers req. It never returns nil: every failure ends up in a
// degraded response with confidence and sources reflecting what succeeded.
func (o *Orchestrator) Process(ctx context.Context, req *schema.QueryRequest) (resp *schema.QueryResponse) {
	started := time.Now()
	var r schema.QueryRequest
	if req != nil {
		r = *req
	}
	r.Normalize()
	if r.SessionID == "" {
		r.SessionID = uuid.NewString()
	}
	queryID := xid.New().String()
	logger := zerolog.Ctx(ctx).With().Str("query_id", queryID).Str("session_id", r.SessionID).Logger()
	ctx = logger.WithContext(ctx)

	resp = &schema.QueryResponse{
		QueryID:    queryID,
		Answer:     Unavailable,
		Sources:    []schema.Source{},
		AgentsUsed: []string{},
		Timestamp:  started.UTC(),
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("query processing panicked")
			resp.Answer = Unavailable
			resp.Confidence = 0
			resp.Sources = []schema.Source{}
			resp.Error = fmt.Sprintf("internal error: %v", rec)
		}
		resp.ExecutionTimeMS = time.Since(started).Milliseconds()
	}()
	if err := r.Validate(); err != nil {
		logger.Warn().Err(err).Msg("invalid query")
		resp.Error = err.Error()
		return resp
	}

	state := o.Run(ctx, newState(queryID, r.Query, r.SessionID), &r)
	resp.Answer = state.Formatted
	resp.Confidence = state.Outcome.Confidence
	if sources := state.Outcome.Sources; len(sources) > 0 {
		resp.Sources = sources[:min(len(sources), r.MaxSources)]
	}
	resp.AgentsUsed = append(resp.AgentsUsed, state.AgentsUsed...)
	if state.Visited(StepFallback) && state.Outcome.Err != nil {
		resp.Error = state.Outcome.Err.Error()
	}
	logger.Info().
		Strs("agents_used", resp.AgentsUsed).
		Strs("failed", state.Failures).
		Float64("confidence", resp.Confidence).
		Int64("tokens", state.Usage.Total()).
		Dur("elapsed", time.Since(started)).
		Msg("query processed")
	return resp
}

// Run drives state from StepStart to StepDone. Routing and execution are
// bounded by the query timeout, synthesis and fallback by the finalize timeout.
func (o *Orchestrator) Run(ctx context.Context, state *State, req *schema.QueryRequest) *State {
	qctx, cancel := context.WithTimeout(ctx, o.queryTimeout)
	defer cancel()
	logger := zerolog.Ctx(ctx)
	step := StepStart
	for step != StepDone {
		switch step {
		case StepStart, StepClassify, StepExecute:
			if err := qctx.Err(); err != nil {
				step = state.abandon()
				logger.Warn().Err(err).Strs("abandoned", state.Abandoned).Msg("query timed out")
			}
		}
		state.Steps = append(state.Steps, step)
		switch step {
		case StepStart:
			state.Context = agents.NewContext(state.Request, state.Context.SessionID).WithMaxResults(req.MaxSources)
			step = StepClassify
		case StepClassify:
			qc := state.Context.WithIntent(Classify(state.Context.Query))
			if deadline, ok := qctx.Deadline(); ok {
				qc = qc.WithTimeout(time.Until(deadline))
			}
			state.Context = qc
			state.Plan = o.router.Route(qctx, qc, req.TargetAgents...)
			state.Cursor = 0
			logger.Info().Str("intent", string(qc.Intent)).Interface("plan", state.Plan).Msg("query routed")
			step = StepExecute
		case StepExecute:
			step = o.execute(qctx, state)
		case StepSynthesize:
			state.Outcome = o.finalize(ctx, func(fctx context.Context) Outcome {
				return o.synthesizer.Synthesize(fctx, state.Results)
			})
			step = StepFormat
		case StepFallback:
			state.Outcome = o.finalize(ctx, func(fctx context.Context) Outcome {
				return o.fallback.Answer(fctx, strings.TrimSpace(state.Request))
			})
			if state.Outcome.Err == nil {
				state.AgentsUsed = append(state.AgentsUsed, FallbackAgent)
			}
			step = StepFormat
		case StepFormat:
			state.Usage.Merge(&state.Outcome.Usage)
			formatted, err := Format(state.Outcome.Answer, req.OutputFormat)
			if err != nil {
				logger.Warn().Err(err).Str("format", string(req.OutputFormat)).Msg("format failed, returning markdown")
				formatted = state.Outcome.Answer
			}
			state.Formatted = formatted
			step = StepDone
		default:
			step = StepDone
		}
	}
	state.Steps = append(state.Steps, StepDone)
	return state
}

// execute runs the plan entry under the cursor and decides the next step
func (o *Orchestrator) execute(ctx context.Context, state *State) Step {
	if state.Cursor >= len(state.Plan) {
		return state.next()
	}
	entry := state.Plan[state.Cursor]
	state.Cursor++
	logger := zerolog.Ctx(ctx).With().Str("agent", entry.Agent).Int("rank", entry.Rank).Logger()
	agent, ok := o.registry.Get(entry.Agent)
	if !ok {
		logger.Warn().Msg("planned agent not registered")
		state.Failures = append(state.Failures, entry.Agent)
		return state.next()
	}
	qc := state.Context
	if deadline, ok := ctx.Deadline(); ok {
		qc = qc.WithTimeout(time.Until(deadline))
	}
	res := invoke(ctx, agent, qc)
	state.Usage.Merge(&res.Usage)
	if res.Failed() {
		logger.Warn().Str("error", res.Error).Dur("latency", res.Latency).Msg("agent failed")
		state.Failures = append(state.Failures, entry.Agent)
		return state.next()
	}
	if res.Agent == "" {
		res.Agent = agent.Name()
	}
	logger.Info().Float64("confidence", res.Confidence).Dur("latency", res.Latency).Msg("agent answered")
	state.Results = append(state.Results, res)
	if !slices.Contains(state.AgentsUsed, res.Agent) {
		state.AgentsUsed = append(state.AgentsUsed, res.Agent)
	}
	return state.next()
}

// invoke converts panics and nil results into failures. It stops waiting once
// ctx is done, a result delivered after that is dropped.
func invoke(ctx context.Context, agent agents.Agent, qc agents.Context) *agents.Result {
	started := time.Now()
	ch := make(chan *agents.Result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- agents.NewFailure(agent.Name(), fmt.Errorf("panic: %v", rec), time.Since(started))
			}
		}()
		ch <- agent.Execute(ctx, qc)
	}()
	var res *agents.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return agents.NewFailure(agent.Name(), ctx.Err(), time.Since(started))
	}
	if res == nil {
		res = agents.NewFailure(agent.Name(), errors.New("nil result"), time.Since(started))
	}
	return res
}

// finalize runs fn detached from the caller cancellation and bounded by the finalize timeout
func (o *Orchestrator) finalize(ctx context.Context, fn func(context.Context) Outcome) Outcome {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.finalizeTimeout)
	defer cancel()
	return fn(fctx)
}

// Agents lists registered agents with their current status
func (o *Orchestrator) Agents(ctx context.Context) []schema.AgentInfo {
	list := o.registry.All()
	ret := make([]schema.AgentInfo, 0, len(list))
	for _, agent := range list {
		health := agent.Health(ctx)
		intents := agent.SupportedIntents()
		info := schema.AgentInfo{
			Name:             agent.Name(),
			Description:      agent.Description(),
			Status:           string(health.Status),
			SupportedIntents: make([]string, 0, len(intents)),
			Message:          health.Message,
		}
		for _, intent := range intents {
			info.SupportedIntents = append(info.SupportedIntents, string(intent))
		}
		ret = append(ret, info)
	}
	return ret
}
