package document

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
)

// LoadURL downloads and parses a remote document
func LoadURL(ctx context.Context, client *http.Client, link string) (*Document, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", link, resp.Status)
	}
	name := link
	if ext := path.Ext(req.URL.Path); ext == "" && strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		name = strings.TrimSuffix(link, "/") + "/index.html"
	}
	doc, err := Load(ctx, name, resp.Body)
	if err != nil {
		return nil, err
	}
	doc.Name = link
	doc.Meta["source"] = link
	doc.Meta["url"] = link
	return doc, nil
}
