package duckduckgo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bububa/omniquery/tools"
)

const resultsPage = `<html><body>
<div class="result results_links result--ad">
  <a class="result__a" href="https://ads.example.com">Sponsored</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F&amp;rut=abc">Go Documentation</a></h2>
  <a class="result__snippet">The Go programming language documentation.</a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="https://pkg.go.dev/">Go Packages</a></h2>
  <a class="result__snippet"> Discover packages. </a>
</div>
<div class="result results_links">
  <h2><a class="result__a" href="https://go.dev/blog/">The Go Blog</a></h2>
</div>
</body></html>`

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method", http.StatusMethodNotAllowed)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("q") != "golang docs" {
			http.Error(w, "query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	tool := New(WithEndpoint(srv.URL))
	got, err := tool.Search(context.Background(), "golang docs", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	expect := []tools.SearchResult{
		{Title: "Go Documentation", URL: "https://go.dev/doc/", Content: "The Go programming language documentation."},
		{Title: "Go Packages", URL: "https://pkg.go.dev/", Content: "Discover packages."},
	}
	if diff := cmp.Diff(expect, got); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()
	if _, err := New(WithEndpoint(srv.URL)).Search(context.Background(), "q", 0); err == nil {
		t.Error("expect error on non-200 response")
	}
}

func TestResolveLink(t *testing.T) {
	tests := []struct {
		href   string
		expect string
	}{
		{href: "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa", expect: "https://example.com/a"},
		{href: "https://example.com/b", expect: "https://example.com/b"},
	}
	for _, tt := range tests {
		if got := resolveLink(tt.href); got != tt.expect {
			t.Errorf("resolveLink(%q) = %q, expect %q", tt.href, got, tt.expect)
		}
	}
}
