package confluence

import (
	"net/http"
	"time"

	"github.com/bububa/omniquery/agents"
)

const (
	DefaultName        = "ConfluenceAgent"
	DefaultDescription = "Searches Atlassian Confluence wiki for internal knowledge base articles and documentation."
	DefaultMaxResults  = 5
	DefaultTimeout     = 15 * time.Second
	DefaultConfidence  = 0.75
	// PageRelevance relevance reported for every cited page
	PageRelevance = 0.7
	// MaxBodyLength runes of page body kept per page
	MaxBodyLength = 1500
)

// Keywords scoring keywords of the wiki agent
var Keywords = []string{
	"confluence", "wiki", "knowledge base", "documentation",
	"internal doc", "team page", "space", "article",
	"runbook", "playbook", "how to", "howto", "guide",
}

var DefaultScoreTable = agents.ScoreTable{
	Baseline:    0.3,
	Keywords:    Keywords,
	OneMatch:    0.2,
	MultiMatch:  0.4,
	Intents:     []agents.Intent{agents.IntentWikiSearch},
	IntentBoost: 0.2,
}

type Options struct {
	baseURL    string
	username   string
	apiToken   string
	spaces     []string
	maxResults int
	httpClient *http.Client
	agentOpts  []agents.Option
}

type Option func(*Options)

func WithBaseURL(v string) Option {
	return func(o *Options) {
		o.baseURL = v
	}
}

// WithCredentials sets basic auth credentials, the token is an Atlassian API token
func WithCredentials(username string, apiToken string) Option {
	return func(o *Options) {
		o.username = username
		o.apiToken = apiToken
	}
}

// WithSpaces restricts searches to the given space keys
func WithSpaces(spaces ...string) Option {
	return func(o *Options) {
		o.spaces = spaces
	}
}

func WithMaxResults(n int) Option {
	return func(o *Options) {
		o.maxResults = n
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(o *Options) {
		o.httpClient = clt
	}
}

func WithAgentOptions(opts ...agents.Option) Option {
	return func(o *Options) {
		o.agentOpts = append(o.agentOpts, opts...)
	}
}
