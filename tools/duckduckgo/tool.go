// Package duckduckgo searches the web through the DuckDuckGo HTML endpoint.
// It needs no API key which makes it the default web search backend.
package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/bububa/omniquery/tools"
)

const (
	DefaultEndpoint   = "https://html.duckduckgo.com/html/"
	DefaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultMaxResults = 5
)

type Input struct {
	Query string `json:"query" validate:"required"`
	// MaxResults 0 keeps the tool default
	MaxResults int `json:"max_results,omitempty"`
}

type Output struct {
	Results []tools.SearchResult `json:"results,omitempty"`
}

type Config struct {
	tools.Config
	endpoint   string
	region     string
	userAgent  string
	maxResults int
	httpClient *http.Client
}

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
		ret.SetTitle("DuckDuckGo")
	}
	if ret.Description() == "" {
		ret.SetDescription("Searches the web through DuckDuckGo")
	}
	if ret.endpoint == "" {
		ret.endpoint = DefaultEndpoint
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.maxResults <= 0 {
		ret.maxResults = DefaultMaxResults
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

func (t *Search) Run(ctx context.Context, input *Input) (*Output, error) {
	t.Start(ctx, input)
	results, err := t.search(ctx, input)
	var ret *Output
	if err == nil {
		ret = &Output{Results: results}
	}
	t.End(ctx, input, ret, err)
	return ret, err
}

func (t *Search) Search(ctx context.Context, query string, max int) ([]tools.SearchResult, error) {
	out, err := t.Run(ctx, &Input{Query: query, MaxResults: max})
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (t *Search) search(ctx context.Context, input *Input) ([]tools.SearchResult, error) {
	limit := t.maxResults
	if input.MaxResults > 0 {
		limit = input.MaxResults
	}
	values := url.Values{}
	values.Set("q", input.Query)
	if t.region != "" {
		values.Set("kl", t.region)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error querying duckduckgo: %w", err)
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from duckduckgo: %d", httpResp.StatusCode)
	}
	doc, err := goquery.NewDocumentFromReader(httpResp.Body)
	if err != nil {
		return nil, err
	}
	return parseResults(doc, limit), nil
}

func parseResults(doc *goquery.Document, limit int) []tools.SearchResult {
	ret := make([]tools.SearchResult, 0, limit)
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.HasClass("result--ad") {
			return true
		}
		link := sel.Find("a.result__a").First()
		href, ok := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if !ok || title == "" {
			return true
		}
		ret = append(ret, tools.SearchResult{
			Title:   title,
			URL:     resolveLink(href),
			Content: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		})
		return len(ret) < limit
	})
	return ret
}

// resolveLink unwraps the duckduckgo redirect link into the target url
func resolveLink(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
