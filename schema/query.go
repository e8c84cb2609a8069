package schema

import (
	"strings"
	"time"
)

// OutputFormat response body format
type OutputFormat string

const (
	FormatMarkdown OutputFormat = "markdown"
	FormatHTML     OutputFormat = "html"
	FormatPlain    OutputFormat = "plain"
	FormatJSON     OutputFormat = "json"
)

const (
	DefaultMaxSources = 5
	MaxQueryLength    = 10000
)

// QueryRequest incoming natural language query
type QueryRequest struct {
	Query        string       `json:"query" validate:"required,max=10000"`
	SessionID    string       `json:"session_id,omitempty" validate:"omitempty,max=128"`
	OutputFormat OutputFormat `json:"output_format,omitempty" validate:"omitempty,oneof=markdown html plain json"`
	// TargetAgents restricts routing to the listed agents
	TargetAgents []string `json:"target_agents,omitempty" validate:"omitempty,dive,required"`
	// MaxSources caps returned citations
	MaxSources int `json:"max_sources,omitempty" validate:"omitempty,min=1,max=10"`
}

// Validate checks request constraints
func (r *QueryRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		r.Query = ""
	}
	return Validator().Struct(r)
}

// Normalize fills default values
func (r *QueryRequest) Normalize() {
	if r.OutputFormat == "" {
		r.OutputFormat = FormatMarkdown
	}
	if r.MaxSources <= 0 {
		r.MaxSources = DefaultMaxSources
	}
}

// QueryResponse unified answer with provenance
type QueryResponse struct {
	QueryID         string    `json:"query_id"`
	Answer          string    `json:"answer"`
	Confidence      float64   `json:"confidence"`
	Sources         []Source  `json:"sources"`
	AgentsUsed      []string  `json:"agents_used"`
	ExecutionTimeMS int64     `json:"execution_time_ms"`
	Timestamp       time.Time `json:"timestamp"`
	// Error degraded path diagnostic, never set on success
	Error string `json:"error,omitempty"`
}

// AgentInfo agent listing entry
type AgentInfo struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Status           string   `json:"status"`
	SupportedIntents []string `json:"supported_intents"`
	Message          string   `json:"message,omitempty"`
}

// ErrorResponse api error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
