// Package agenttest provides a scriptable agents.Agent for tests
package agenttest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/schema"
)

// Agent returns fixed scores and results.
type Agent struct {
	*agents.Base

	// Score returned by CanHandle while ready
	Score float64
	// ScoreErr returned by CanHandle
	ScoreErr error
	// ScoreDelay blocks CanHandle, honoring ctx
	ScoreDelay time.Duration
	// ScorePanic makes CanHandle panic
	ScorePanic bool
	// Result returned by Execute, nil with ExecPanic false yields a failure
	Result *agents.Result
	// ExecPanic makes Execute panic
	ExecPanic bool
	// ExecDelay blocks Execute, honoring ctx
	ExecDelay time.Duration
	// InitErr returned by Initialize
	InitErr error
	// InitPanic makes Initialize panic
	InitPanic bool

	mu         sync.Mutex
	scoreCalls int
	execCalls  int
}

var _ agents.Agent = (*Agent)(nil)

// New returns a ready agent scoring score
func New(name string, score float64) *Agent {
	ret := &Agent{
		Base:  agents.NewBase(agents.WithName(name), agents.WithDescription(name+" test agent")),
		Score: score,
	}
	ret.Base.SetStatus(agents.StatusReady, "")
	return ret
}

// Succeeding returns a ready agent which answers answer with confidence score
func Succeeding(name string, score float64, answer string, sources ...schema.Source) *Agent {
	ret := New(name, score)
	ret.Result = &agents.Result{
		Agent:      name,
		Success:    true,
		Answer:     answer,
		Confidence: score,
		Sources:    sources,
	}
	return ret
}

// Failing returns a ready agent whose execution fails with err
func Failing(name string, score float64, err error) *Agent {
	ret := New(name, score)
	ret.Result = agents.NewFailure(name, err, 0)
	return ret
}

// Disabled returns an agent in StatusDisabled
func Disabled(name string, score float64) *Agent {
	ret := &Agent{
		Base:  agents.NewBase(agents.WithName(name), agents.WithDisabled(true)),
		Score: score,
	}
	return ret
}

func (a *Agent) Initialize(ctx context.Context) error {
	if a.InitPanic {
		panic("initialize " + a.Name())
	}
	if a.InitErr != nil {
		return a.InitErr
	}
	return a.Base.Initialize(ctx)
}

func (a *Agent) CanHandle(ctx context.Context, qc agents.Context) (float64, error) {
	a.mu.Lock()
	a.scoreCalls++
	a.mu.Unlock()
	if a.ScorePanic {
		panic("score " + a.Name())
	}
	if a.ScoreDelay > 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(a.ScoreDelay):
		}
	}
	if a.ScoreErr != nil {
		return 0, a.ScoreErr
	}
	if !a.Ready() {
		return 0, nil
	}
	return a.Score, nil
}

func (a *Agent) Execute(ctx context.Context, qc agents.Context) *agents.Result {
	a.mu.Lock()
	a.execCalls++
	a.mu.Unlock()
	if a.ExecPanic {
		panic("execute " + a.Name())
	}
	if a.ExecDelay > 0 {
		select {
		case <-ctx.Done():
			return a.Failure(ctx.Err(), a.ExecDelay)
		case <-time.After(a.ExecDelay):
		}
	}
	if a.Result == nil {
		return a.Failure(errors.New("no result scripted"), 0)
	}
	ret := *a.Result
	return &ret
}

// ScoreCalls returns how many times CanHandle ran
func (a *Agent) ScoreCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scoreCalls
}

// ExecCalls returns how many times Execute ran
func (a *Agent) ExecCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.execCalls
}
