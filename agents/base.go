package agents

import (
	"context"
	"time"

	"go.uber.org/atomic"

	"github.com/bububa/omniquery/components"
)

// Base implements the bookkeeping part of Agent. Concrete agents embed it
// and provide Execute, plus Initialize when they need setup.
type Base struct {
	Config
	status   *atomic.String
	message  *atomic.String
	inflight *atomic.Int32
}

// NewBase returns a Base in StatusInitializing, or StatusDisabled when configured so
func NewBase(opts ...Option) *Base {
	ret := &Base{
		status:   atomic.NewString(string(StatusInitializing)),
		message:  atomic.NewString(""),
		inflight: atomic.NewInt32(0),
	}
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.disabled {
		ret.status.Store(string(StatusDisabled))
		ret.message.Store("disabled by configuration")
	}
	return ret
}

// Status reports busy while executions are in flight on a ready agent
func (b *Base) Status() Status {
	status := Status(b.status.Load())
	if status == StatusReady && b.inflight.Load() > 0 {
		return StatusBusy
	}
	return status
}

// Ready reports whether the agent completed initialization and is not disabled
func (b *Base) Ready() bool {
	return Status(b.status.Load()) == StatusReady
}

// SetStatus forces the lifecycle status, a configuration disabled agent stays disabled
func (b *Base) SetStatus(status Status, message string) {
	if b.disabled {
		return
	}
	b.status.Store(string(status))
	b.message.Store(message)
}

// Initialize marks the agent ready, agents with setup override it
func (b *Base) Initialize(ctx context.Context) error {
	b.SetStatus(StatusReady, "")
	return nil
}

// CanHandle scores with the configured ScoreTable
func (b *Base) CanHandle(ctx context.Context, qc Context) (float64, error) {
	if !b.Ready() {
		return 0, nil
	}
	return b.scoreTable.Score(qc.Query, qc.Intent), nil
}

// Begin marks an execution in flight, the returned func ends it
func (b *Base) Begin() func() {
	b.inflight.Inc()
	return func() {
		b.inflight.Dec()
	}
}

func (b *Base) Health(ctx context.Context) Health {
	return Health{
		Name:      b.Name(),
		Status:    b.Status(),
		Message:   b.message.Load(),
		LastCheck: time.Now(),
	}
}

// Shutdown moves the agent out of the ready set
func (b *Base) Shutdown(ctx context.Context) error {
	b.status.Store(string(StatusDisabled))
	b.message.Store("shut down")
	return nil
}

// Generate submits prompt to the shared language backend with the agent defaults
func (b *Base) Generate(ctx context.Context, prompt string, opts ...components.GenerateOption) (*components.LLMResponse, error) {
	if b.llm == nil {
		return nil, ErrNoLLM
	}
	defaults := make([]components.GenerateOption, 0, 3+len(opts))
	if g := b.systemPromptGenerator; g != nil {
		if sys := g.Generate(); sys != "" {
			defaults = append(defaults, components.WithSystemPrompt(sys))
		}
	}
	if b.temperature > 0 {
		defaults = append(defaults, components.WithTemperature(b.temperature))
	}
	if b.maxTokens > 0 {
		defaults = append(defaults, components.WithMaxTokens(b.maxTokens))
	}
	return b.llm.Generate(ctx, prompt, append(defaults, opts...)...)
}

// Success builds a successful result stamped with the agent name
func (b *Base) Success(answer string, confidence float64, latency time.Duration) *Result {
	return &Result{
		Agent:      b.Name(),
		Success:    true,
		Answer:     answer,
		Confidence: confidence,
		Latency:    latency,
	}
}

// Failure builds a failed result stamped with the agent name
func (b *Base) Failure(err error, latency time.Duration) *Result {
	return NewFailure(b.Name(), err, latency)
}
