// Package websearch answers questions from web search results
package websearch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/schema"
	"github.com/bububa/omniquery/tools"
	"github.com/bububa/omniquery/tools/webscraper"
)

// ErrNoWebResults is reported when every backend returned nothing
var ErrNoWebResults = fmt.Errorf("%w: no web search results found", agents.ErrNoResults)

type Agent struct {
	*agents.Base
	Options
}

var (
	_ agents.Agent        = (*Agent)(nil)
	_ agents.StatusSetter = (*Agent)(nil)
)

func New(opts ...Option) *Agent {
	ret := new(Agent)
	for _, opt := range opts {
		opt(&ret.Options)
	}
	if ret.maxResults <= 0 {
		ret.maxResults = DefaultMaxResults
	}
	base := []agents.Option{
		agents.WithName(DefaultName),
		agents.WithDescription(DefaultDescription),
		agents.WithIntents(agents.IntentWebSearch, agents.IntentGeneral),
		agents.WithScoreTable(DefaultScoreTable),
	}
	ret.Base = agents.NewBase(append(base, ret.agentOpts...)...)
	return ret
}

func (a *Agent) Initialize(ctx context.Context) error {
	if a.Status() == agents.StatusDisabled {
		return nil
	}
	if len(a.searchers) == 0 {
		err := errors.New("no search backend configured")
		a.SetStatus(agents.StatusError, err.Error())
		return err
	}
	return a.Base.Initialize(ctx)
}

// Search asks each backend in order and returns the first non-empty result set
func (a *Agent) Search(ctx context.Context, query string) ([]tools.SearchResult, string, error) {
	var errs []error
	for _, searcher := range a.searchers {
		results, err := searcher.Search(ctx, query, a.maxResults)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("agent", a.Name()).Str("backend", searcher.Title()).Msg("web search failed")
			errs = append(errs, fmt.Errorf("%s: %w", searcher.Title(), err))
			continue
		}
		if len(results) > 0 {
			return results, searcher.Title(), nil
		}
	}
	if len(errs) > 0 {
		return nil, "", errors.Join(errs...)
	}
	return nil, "", ErrNoWebResults
}

func (a *Agent) Execute(ctx context.Context, qc agents.Context) *agents.Result {
	start := time.Now()
	if !a.Ready() {
		return a.Failure(agents.ErrNotReady, time.Since(start))
	}
	defer a.Begin()()

	results, backend, err := a.Search(ctx, qc.Query)
	if err != nil {
		return a.Failure(err, time.Since(start))
	}
	entries := make([]string, 0, len(results))
	sources := make([]schema.Source, 0, len(results))
	for i, result := range results {
		entries = append(entries, fmt.Sprintf("[%d] %s\n%s", i+1, result.Title, result.Content))
		sources = append(sources, schema.Source{
			AgentName:        a.Name(),
			SourceType:       schema.SourceWeb,
			SourceIdentifier: result.URL,
			RelevanceScore:   Relevance(i),
			Excerpt:          firstRunes(result.Content, 200),
		})
	}
	var sb strings.Builder
	sb.WriteString("Based on these web search results, answer the question.\n\n")
	fmt.Fprintf(&sb, "SEARCH RESULTS:\n%s\n\n", strings.Join(entries, "\n\n"))
	if page := a.scrapeTop(ctx, results[0].URL); page != "" {
		fmt.Fprintf(&sb, "TOP RESULT PAGE [1]:\n%s\n\n", page)
	}
	fmt.Fprintf(&sb, "QUESTION: %s\n\n", qc.Query)
	sb.WriteString("Provide a clear, accurate answer based on the search results. Cite source numbers [1], [2], etc. where relevant.")
	resp, err := a.Generate(ctx, sb.String())
	if err != nil {
		return a.Failure(fmt.Errorf("generate answer: %w", err), time.Since(start))
	}
	ret := a.Success(resp.Text, DefaultConfidence, time.Since(start))
	ret.Usage.Merge(resp.Usage)
	ret.Sources = sources
	ret.Metadata = map[string]any{
		"backend": backend,
		"results": len(results),
	}
	return ret
}

// scrapeTop fetches the main content of link, failures only lose the extra context
func (a *Agent) scrapeTop(ctx context.Context, link string) string {
	if a.scraper == nil || link == "" {
		return ""
	}
	out, err := a.scraper.Run(ctx, webscraper.NewInput(link))
	if err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("url", link).Msg("scrape top result")
		return ""
	}
	return firstRunes(strings.TrimSpace(out.Content), MaxPageLength)
}

// Relevance of the i-th result, 0.8 for the first decreasing by 0.1 down to 0.1
func Relevance(i int) float64 {
	return math.Max(0.1, math.Round((0.8-0.1*float64(i))*100)/100)
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
