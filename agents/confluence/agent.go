// Package confluence answers questions from Atlassian Confluence pages
package confluence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/rs/zerolog"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/schema"
)

var (
	// ErrNotConfigured is reported when base url or credentials are missing
	ErrNotConfigured = errors.New("confluence is not configured")
	// ErrNoPages is reported when the search returns nothing
	ErrNoPages = fmt.Errorf("%w: no confluence pages found matching the query", agents.ErrNoResults)
)

// Page is the subset of the content search payload the agent uses
type Page struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Space struct {
		Key  string `json:"key"`
		Name string `json:"name"`
	} `json:"space"`
	Body struct {
		View struct {
			Value string `json:"value"`
		} `json:"view"`
	} `json:"body"`
	Links struct {
		WebUI string `json:"webui"`
	} `json:"_links"`
}

type SearchResponse struct {
	Results []Page `json:"results"`
	Size    int    `json:"size"`
}

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
	ret.baseURL = strings.TrimRight(ret.baseURL, "/")
	if ret.maxResults <= 0 {
		ret.maxResults = DefaultMaxResults
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	base := []agents.Option{
		agents.WithName(DefaultName),
		agents.WithDescription(DefaultDescription),
		agents.WithIntents(agents.IntentWikiSearch, agents.IntentGeneral),
		agents.WithScoreTable(DefaultScoreTable),
	}
	ret.Base = agents.NewBase(append(base, ret.agentOpts...)...)
	return ret
}

// Configured reports whether base url and credentials are set
func (a *Agent) Configured() bool {
	return a.baseURL != "" && a.username != "" && a.apiToken != ""
}

// Initialize disables the agent when credentials are missing
func (a *Agent) Initialize(ctx context.Context) error {
	if a.Status() == agents.StatusDisabled {
		return nil
	}
	if !a.Configured() {
		a.SetStatus(agents.StatusDisabled, "no credentials configured")
		zerolog.Ctx(ctx).Info().Str("agent", a.Name()).Msg("confluence disabled, set base_url, username and api_token")
		return nil
	}
	zerolog.Ctx(ctx).Info().Str("agent", a.Name()).Str("base_url", a.baseURL).Msg("confluence configured")
	return a.Base.Initialize(ctx)
}

// CanHandle scores 0 unless configured and ready
func (a *Agent) CanHandle(ctx context.Context, qc agents.Context) (float64, error) {
	if !a.Configured() {
		return 0, nil
	}
	return a.Base.CanHandle(ctx, qc)
}

func (a *Agent) Execute(ctx context.Context, qc agents.Context) *agents.Result {
	start := time.Now()
	if !a.Configured() {
		return a.Failure(ErrNotConfigured, time.Since(start))
	}
	if !a.Ready() {
		return a.Failure(agents.ErrNotReady, time.Since(start))
	}
	defer a.Begin()()

	pages, err := a.Search(ctx, qc.Query)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("agent", a.Name()).Msg("confluence search failed")
		return a.Failure(err, time.Since(start))
	}
	if len(pages) == 0 {
		return a.Failure(ErrNoPages, time.Since(start))
	}
	sections := make([]string, 0, len(pages))
	sources := make([]schema.Source, 0, len(pages))
	for _, page := range pages {
		body := a.pageText(ctx, page)
		title := page.Title
		if title == "" {
			title = "Untitled"
		}
		sections = append(sections, fmt.Sprintf("## %s (Space: %s)\n%s", title, page.Space.Key, body))
		sources = append(sources, schema.Source{
			AgentName:        a.Name(),
			SourceType:       schema.SourceConfluence,
			SourceIdentifier: a.baseURL + page.Links.WebUI,
			RelevanceScore:   PageRelevance,
			Excerpt:          truncate(body, 200),
		})
	}
	prompt := fmt.Sprintf("Based on these Confluence wiki pages, answer the question.\n\nPAGES:\n%s\n\nQUESTION: %s\n\nAnswer concisely based on the information in the pages.",
		strings.Join(sections, "\n\n---\n\n"), qc.Query)
	resp, err := a.Generate(ctx, prompt)
	if err != nil {
		return a.Failure(fmt.Errorf("generate answer: %w", err), time.Since(start))
	}
	ret := a.Success(resp.Text, DefaultConfidence, time.Since(start))
	ret.Usage.Merge(resp.Usage)
	ret.Sources = sources
	ret.Metadata = map[string]any{"pages": len(pages)}
	return ret
}

// Search runs a CQL full text search
func (a *Agent) Search(ctx context.Context, query string) ([]Page, error) {
	values := url.Values{}
	values.Set("cql", CQL(query, a.spaces...))
	values.Set("limit", strconv.Itoa(a.maxResults))
	values.Set("expand", "body.view,space,version")
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/rest/api/content/search?"+values.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(a.username, a.apiToken)
	httpReq.Header.Set("Accept", "application/json")
	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("confluence search: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("confluence search: unexpected status %d", httpResp.StatusCode)
	}
	var resp SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode confluence response: %w", err)
	}
	return resp.Results, nil
}

// pageText converts the rendered page body to markdown, capped at MaxBodyLength runes
func (a *Agent) pageText(ctx context.Context, page Page) string {
	html := page.Body.View.Value
	if html == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("page", page.ID).Msg("convert page body")
		md = html
	}
	return truncate(strings.TrimSpace(md), MaxBodyLength)
}

// CQL builds a text search optionally restricted to spaces
func CQL(query string, spaces ...string) string {
	cql := fmt.Sprintf(`text ~ "%s"`, escapeCQL(query))
	if len(spaces) == 0 {
		return cql
	}
	filters := make([]string, 0, len(spaces))
	for _, space := range spaces {
		filters = append(filters, fmt.Sprintf(`space = "%s"`, escapeCQL(space)))
	}
	return fmt.Sprintf("(%s) AND (%s)", cql, strings.Join(filters, " OR "))
}

func escapeCQL(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
