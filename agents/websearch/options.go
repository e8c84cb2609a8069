package websearch

import (
	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/tools"
	"github.com/bububa/omniquery/tools/webscraper"
)

const (
	DefaultName        = "WebSearchAgent"
	DefaultDescription = "Searches the web to answer general knowledge and current events questions."
	DefaultMaxResults  = 5
	DefaultConfidence  = 0.6
	// MaxPageLength runes of the scraped top page added to the prompt
	MaxPageLength = 2000
)

var Keywords = []string{
	"search", "google", "web", "internet", "latest",
	"current", "news", "trending", "today", "2024", "2025", "2026",
	"who is", "what is", "tell me about",
}

var DefaultScoreTable = agents.ScoreTable{
	Baseline:    0.3,
	Keywords:    Keywords,
	OneMatch:    0.15,
	MultiMatch:  0.3,
	Intents:     []agents.Intent{agents.IntentWebSearch},
	IntentBoost: 0.2,
}

type Options struct {
	searchers  []tools.Searcher
	scraper    tools.Tool[webscraper.Input, webscraper.Output]
	maxResults int
	agentOpts  []agents.Option
}

type Option func(*Options)

// WithSearchers sets the search backends, tried in order until one returns results
func WithSearchers(searchers ...tools.Searcher) Option {
	return func(o *Options) {
		o.searchers = searchers
	}
}

// WithScraper enables fetching the top result page as extra context
func WithScraper(scraper tools.Tool[webscraper.Input, webscraper.Output]) Option {
	return func(o *Options) {
		o.scraper = scraper
	}
}

func WithMaxResults(n int) Option {
	return func(o *Options) {
		o.maxResults = n
	}
}

func WithAgentOptions(opts ...agents.Option) Option {
	return func(o *Options) {
		o.agentOpts = append(o.agentOpts, opts...)
	}
}
