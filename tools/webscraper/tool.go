package webscraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"

	"github.com/bububa/omniquery/tools"
)

var blankLines = regexp.MustCompile(`(\r?\n\s*){3,}`)

// Input of the scraper
type Input struct {
	// URL of the webpage to scrape
	URL string `json:"url" validate:"required,url"`
}

func NewInput(link string) *Input {
	return &Input{URL: link}
}

// Metadata of a scraped webpage
type Metadata struct {
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	SiteName    string `json:"sitename,omitempty"`
	Domain      string `json:"domain,omitempty"`
}

// Output holds the main content of the page in markdown
type Output struct {
	Content  string    `json:"content,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

type Config struct {
	tools.Config
	userAgent        string
	timeout          time.Duration
	maxContentLength int64
	httpClient       *http.Client
}

// Scraper fetches a page and extracts its main content as markdown
type Scraper struct {
	Config
}

var _ tools.Tool[Input, Output] = (*Scraper)(nil)

func New(opts ...Option) *Scraper {
	ret := new(Scraper)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("Webscraper")
	}
	if ret.Description() == "" {
		ret.SetDescription("Extracts the main content of a webpage as markdown")
	}
	if ret.userAgent == "" {
		ret.userAgent = DefaultUserAgent
	}
	if ret.timeout <= 0 {
		ret.timeout = DefaultTimeout
	}
	if ret.maxContentLength <= 0 {
		ret.maxContentLength = DefaultMaxContentLength
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{Timeout: ret.timeout}
	}
	return ret
}

func (t *Scraper) Run(ctx context.Context, input *Input) (*Output, error) {
	t.Start(ctx, input)
	ret, err := t.scrape(ctx, input)
	t.End(ctx, input, ret, err)
	return ret, err
}

func (t *Scraper) scrape(ctx context.Context, input *Input) (*Output, error) {
	parsedURL, err := url.ParseRequestURI(input.URL)
	if err != nil {
		return nil, err
	}
	doc, err := t.fetch(ctx, input.URL)
	if err != nil {
		return nil, err
	}
	meta := extractMetadata(doc)
	meta.Domain = parsedURL.Host
	markdown, err := htmltomarkdown.ConvertString(
		extractMainContent(doc),
		converter.WithDomain(fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)),
	)
	if err != nil {
		return nil, err
	}
	return &Output{
		Content:  cleanMarkdown(markdown),
		Metadata: meta,
	}, nil
}

func (t *Scraper) fetch(ctx context.Context, link string) (*goquery.Document, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("Accept", DefaultAccept)
	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from %s: %d", link, httpResp.StatusCode)
	}
	return goquery.NewDocumentFromReader(io.LimitReader(httpResp.Body, t.maxContentLength))
}

func extractMetadata(doc *goquery.Document) *Metadata {
	meta := new(Metadata)
	meta.Title = strings.TrimSpace(doc.Find("head title").First().Text())
	meta.Author, _ = doc.Find("meta[name='author']").Attr("content")
	meta.Description, _ = doc.Find("meta[name='description']").Attr("content")
	meta.Keywords, _ = doc.Find("meta[name='keywords']").Attr("content")
	meta.SiteName, _ = doc.Find("meta[property='og:site_name']").Attr("content")
	return meta
}

// extractMainContent strips page chrome and returns the html of the first content candidate
func extractMainContent(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()
	for _, selector := range []string{"main", "article", "#content, #main", ".content, .main", "body"} {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if html, err := sel.Html(); err == nil && strings.TrimSpace(html) != "" {
			return html
		}
	}
	html, _ := doc.Html()
	return html
}

func cleanMarkdown(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	content = blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(content) + "\n"
}
