package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bububa/omniquery/tools"
)

type Category = string

const (
	EmptyCategory       Category = ""
	GeneralCategory     Category = "general"
	NewsCategory        Category = "news"
	SocialMediaCategory Category = "social_media"
)

const (
	DefaultEngines    = "bing,duckduckgo,google,startpage,yandex"
	DefaultMaxResults = 10
)

// Input for searching information, news and references through SearxNG
type Input struct {
	// Queries list of search queries
	Queries []string `json:"queries" validate:"required,dive,required"`
	// Category of the search queries
	Category Category `json:"category,omitempty"`
}

func NewInput(category Category, queries []string) *Input {
	return &Input{
		Queries:  queries,
		Category: category,
	}
}

// SearchResultItem represents a single search result item
type SearchResultItem struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Content       string   `json:"content,omitempty"`
	Query         string   `json:"query,omitempty"`
	Category      Category `json:"category,omitempty"`
	Score         float64  `json:"score,omitempty"`
	Metadata      string   `json:"metadata,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
}

// SearchResponse is the JSON payload returned by SearxNG
type SearchResponse struct {
	Query           string             `json:"query"`
	NumberOfResults int                `json:"number_of_results"`
	Results         []SearchResultItem `json:"results"`
}

// Output of the SearxNG search tool
type Output struct {
	Results  []SearchResultItem `json:"results,omitempty"`
	Category Category           `json:"category,omitempty"`
}

type Config struct {
	tools.Config
	language   string
	baseURL    string
	engines    string
	maxResults int
	httpClient *http.Client
}

// Search queries a SearxNG instance
type Search struct {
	Config
}

var (
	_ tools.Tool[Input, Output] = (*Search)(nil)
	_ tools.Searcher            = (*Search)(nil)
)

func New(opts ...Option) *Search {
	ret := new(Search)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("SearxNG")
	}
	if ret.Description() == "" {
		ret.SetDescription("Searches the web through a SearxNG instance")
	}
	if ret.maxResults <= 0 {
		ret.maxResults = DefaultMaxResults
	}
	if ret.engines == "" {
		ret.engines = DefaultEngines
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	ret.baseURL = strings.TrimRight(ret.baseURL, "/")
	return ret
}

// Run searches every query, drops incomplete and duplicated results and caps the total
func (t *Search) Run(ctx context.Context, input *Input) (*Output, error) {
	t.Start(ctx, input)
	ret, err := t.run(ctx, input)
	t.End(ctx, input, ret, err)
	return ret, err
}

func (t *Search) run(ctx context.Context, input *Input) (*Output, error) {
	seen := make(map[string]struct{})
	ret := &Output{
		Category: input.Category,
		Results:  make([]SearchResultItem, 0, t.maxResults),
	}
	for _, query := range input.Queries {
		items, err := t.fetchSearchResults(ctx, query, input.Category)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if item.URL == "" || item.Title == "" || item.Content == "" {
				continue
			}
			if _, ok := seen[item.URL]; ok {
				continue
			}
			seen[item.URL] = struct{}{}
			ret.Results = append(ret.Results, item)
			if len(ret.Results) >= t.maxResults {
				return ret, nil
			}
		}
	}
	return ret, nil
}

// Search runs a single general query
func (t *Search) Search(ctx context.Context, query string, max int) ([]tools.SearchResult, error) {
	out, err := t.Run(ctx, NewInput(GeneralCategory, []string{query}))
	if err != nil {
		return nil, err
	}
	ret := make([]tools.SearchResult, 0, len(out.Results))
	for _, item := range out.Results {
		if max > 0 && len(ret) >= max {
			break
		}
		ret = append(ret, tools.SearchResult{
			Title:   item.Title,
			URL:     item.URL,
			Content: item.Content,
		})
	}
	return ret, nil
}

// fetchSearchResults queries the search engine and returns the parsed results
func (t *Search) fetchSearchResults(ctx context.Context, query string, category Category) ([]SearchResultItem, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("safesearch", "0")
	values.Set("format", "json")
	values.Set("engines", t.engines)
	if t.language != "" {
		values.Set("language", t.language)
	}
	if category != "" {
		values.Set("categories", category)
	}
	searchURL := fmt.Sprintf("%s/search?%s", t.baseURL, values.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying searxng: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from searxng: %d", httpResp.StatusCode)
	}

	var searchResponse SearchResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&searchResponse); err != nil {
		return nil, err
	}
	for idx := range searchResponse.Results {
		searchResponse.Results[idx].Query = query
	}
	return searchResponse.Results, nil
}
