package dbquery

import "github.com/bububa/omniquery/agents"

const (
	DefaultName        = "DBAgent"
	DefaultDescription = "Converts natural language questions into SQL queries and retrieves data from databases."
	// DefaultMaxRows rows kept in the result metadata
	DefaultMaxRows = 50
	// DefaultPromptRows rows shown to the language backend
	DefaultPromptRows = 20
	// DefaultSampleRows rows sampled per table during introspection
	DefaultSampleRows = 3
	DefaultConfidence = 0.85
)

// Keywords scoring keywords of the data-query agent
var Keywords = []string{
	"employee", "employees", "salary", "database", "table",
	"count", "how many", "list all", "average", "total",
	"department", "departments", "record", "data", "query",
	"highest", "lowest", "maximum", "minimum", "sum",
}

// DefaultScoreTable scoring table of the data-query agent
var DefaultScoreTable = agents.ScoreTable{
	Baseline:    0.3,
	Keywords:    Keywords,
	OneMatch:    0.2,
	MultiMatch:  0.4,
	Intents:     []agents.Intent{agents.IntentDataQuery},
	IntentBoost: 0.2,
}

type Options struct {
	sourceName string
	maxRows    int
	promptRows int
	sampleRows int
	agentOpts  []agents.Option
}

type Option func(*Options)

// WithSourceName sets the identifier reported in citations, e.g. the database file
func WithSourceName(name string) Option {
	return func(o *Options) {
		o.sourceName = name
	}
}

func WithMaxRows(n int) Option {
	return func(o *Options) {
		o.maxRows = n
	}
}

func WithPromptRows(n int) Option {
	return func(o *Options) {
		o.promptRows = n
	}
}

func WithSampleRows(n int) Option {
	return func(o *Options) {
		o.sampleRows = n
	}
}

func WithAgentOptions(opts ...agents.Option) Option {
	return func(o *Options) {
		o.agentOpts = append(o.agentOpts, opts...)
	}
}
