package orchestrator

import "time"

const (
	DefaultMinConfidence   = 0.3
	DefaultMaxAgents       = 2
	DefaultScoreTimeout    = 2 * time.Second
	DefaultQueryTimeout    = 60 * time.Second
	DefaultFinalizeTimeout = 15 * time.Second
)

// Options tunes routing and the dispatch loop
type Options struct {
	minConfidence    float64
	maxAgents        int
	scoreTimeout     time.Duration
	scoreConcurrency int
	queryTimeout     time.Duration
	finalizeTimeout  time.Duration
}

type Option func(*Options)

// WithMinConfidence agents scoring below v are left out of the plan
func WithMinConfidence(v float64) Option {
	return func(o *Options) {
		o.minConfidence = v
	}
}

// WithMaxAgents caps the plan size
func WithMaxAgents(n int) Option {
	return func(o *Options) {
		o.maxAgents = n
	}
}

// WithScoreTimeout bounds each CanHandle call
func WithScoreTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.scoreTimeout = d
	}
}

// WithScoreConcurrency bounds the scoring fan-out, 0 scores every agent at once
func WithScoreConcurrency(n int) Option {
	return func(o *Options) {
		o.scoreConcurrency = n
	}
}

// WithQueryTimeout bounds routing and execution of one query
func WithQueryTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.queryTimeout = d
	}
}

// WithFinalizeTimeout bounds synthesis or fallback once execution stopped
func WithFinalizeTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.finalizeTimeout = d
	}
}

func newOptions(opts ...Option) Options {
	ret := Options{
		minConfidence:   DefaultMinConfidence,
		maxAgents:       DefaultMaxAgents,
		scoreTimeout:    DefaultScoreTimeout,
		queryTimeout:    DefaultQueryTimeout,
		finalizeTimeout: DefaultFinalizeTimeout,
	}
	for _, opt := range opts {
		opt(&ret)
	}
	if ret.maxAgents <= 0 {
		ret.maxAgents = DefaultMaxAgents
	}
	if ret.scoreTimeout <= 0 {
		ret.scoreTimeout = DefaultScoreTimeout
	}
	if ret.queryTimeout <= 0 {
		ret.queryTimeout = DefaultQueryTimeout
	}
	if ret.finalizeTimeout <= 0 {
		ret.finalizeTimeout = DefaultFinalizeTimeout
	}
	return ret
}

func (o Options) MinConfidence() float64 {
	return o.minConfidence
}

func (o Options) MaxAgents() int {
	return o.maxAgents
}

func (o Options) QueryTimeout() time.Duration {
	return o.queryTimeout
}
