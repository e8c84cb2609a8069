package agents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/schema"
)

var (
	// ErrNotReady is returned by agents asked to work before a successful Initialize
	ErrNotReady = errors.New("agent not ready")
	// ErrNoResults is returned when a backend found nothing relevant
	ErrNoResults = errors.New("no results")
	// ErrNoLLM is returned when an agent needs a language backend and has none
	ErrNoLLM = errors.New("no language backend configured")
)

// Status agent lifecycle status
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusReady        Status = "ready"
	StatusBusy         Status = "busy"
	StatusError        Status = "error"
	StatusDisabled     Status = "disabled"
)

// Intent coarse query category used as a scoring hint
type Intent string

const (
	IntentSummarization  Intent = "summarization"
	IntentDataQuery      Intent = "data_query"
	IntentWikiSearch     Intent = "wiki_search"
	IntentWebSearch      Intent = "web_search"
	IntentDocumentSearch Intent = "document_search"
	IntentGeneral        Intent = "general"
)

// DefaultMaxResults result size hint used when none is given
const DefaultMaxResults = 5

// Context is the immutable per query value handed to agents.
// Stages derive new values with the With* methods.
type Context struct {
	// Query normalized query text
	Query string
	// OriginalQuery raw query as received
	OriginalQuery string
	Intent        Intent
	SessionID     string
	// MaxResults bounded result size hint
	MaxResults int
	// Timeout remaining budget of the query
	Timeout time.Duration
}

// NewContext builds a query context, the query is trimmed and the raw text kept
func NewContext(query string, sessionID string) Context {
	return Context{
		Query:         strings.TrimSpace(query),
		OriginalQuery: query,
		Intent:        IntentGeneral,
		SessionID:     sessionID,
		MaxResults:    DefaultMaxResults,
	}
}

func (c Context) WithIntent(intent Intent) Context {
	c.Intent = intent
	return c
}

func (c Context) WithTimeout(timeout time.Duration) Context {
	c.Timeout = timeout
	return c
}

func (c Context) WithMaxResults(n int) Context {
	if n > 0 {
		c.MaxResults = n
	}
	return c
}

// Result is the outcome of one execution attempt
type Result struct {
	Agent      string
	Success    bool
	Answer     string
	Confidence float64
	Sources    []schema.Source
	Usage      components.LLMUsage
	Latency    time.Duration
	Error      string
	Metadata   map[string]any
}

// NewFailure builds a failed result
func NewFailure(agent string, err error, latency time.Duration) *Result {
	ret := &Result{
		Agent:   agent,
		Latency: latency,
	}
	if err != nil {
		ret.Error = err.Error()
	}
	return ret
}

// Failed reports whether the result must be treated as an execution failure
func (r *Result) Failed() bool {
	return r == nil || !r.Success
}

// Health point in time status report
type Health struct {
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	LastCheck time.Time `json:"last_check"`
}

// Agent is the capability contract every responder implements
type Agent interface {
	Name() string
	Description() string
	SupportedIntents() []Intent
	Status() Status
	// Initialize performs one time setup, failures leave the agent in StatusError
	Initialize(ctx context.Context) error
	// CanHandle scores ctx in [0, 1]. It returns 0 unless the agent is ready,
	// must be safe for concurrent use and must not mutate shared state.
	CanHandle(ctx context.Context, qc Context) (float64, error)
	// Execute answers the query, failures are reported in the result, never as panics
	Execute(ctx context.Context, qc Context) *Result
	Health(ctx context.Context) Health
	Shutdown(ctx context.Context) error
}

// StatusSetter is implemented by agents whose status can be forced from outside
type StatusSetter interface {
	SetStatus(Status, string)
}
