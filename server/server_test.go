package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/agents/agenttest"
	"github.com/bububa/omniquery/components/llmtest"
	"github.com/bububa/omniquery/config"
	"github.com/bububa/omniquery/orchestrator"
	"github.com/bububa/omniquery/schema"
)

func newTestServer() *Server {
	reg := agents.NewRegistry(
		agenttest.Succeeding("DBAgent", 0.9, "There are 42 employees."),
		agenttest.Disabled("ConfluenceAgent", 0.5),
	)
	return New(config.Default().Server, orchestrator.New(reg, llmtest.New("general")))
}

func TestQuery(t *testing.T) {
	handler := newTestServer().Handler()
	for _, path := range []string{"/api/v1/query", "/query"} {
		t.Run(path, func(t *testing.T) {
			body, _ := json.Marshal(schema.QueryRequest{Query: "How many employees?", SessionID: "s1"})
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body)))
			if rr.Code != http.StatusOK {
				t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
			}
			var resp schema.QueryResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Answer != "There are 42 employees." || resp.Confidence != 0.9 {
				t.Errorf("unexpected response %+v", resp)
			}
			if diff := cmp.Diff([]string{"DBAgent"}, resp.AgentsUsed); diff != "" {
				t.Errorf("agents used mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestQueryBadRequest(t *testing.T) {
	handler := newTestServer().Handler()
	tests := map[string]string{
		"not json":   "{",
		"blank":      `{"query": "  "}`,
		"bad format": `{"query": "q", "output_format": "pdf"}`,
		"too many":   `{"query": "q", "max_sources": 50}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/query", strings.NewReader(body)))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expect 400, got %d", rr.Code)
			}
			var resp schema.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || resp.Error == "" {
				t.Errorf("unexpected error body %q", rr.Body.String())
			}
		})
	}
}

func TestAgentsAndHealth(t *testing.T) {
	handler := newTestServer().Handler()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/agents", nil))
	var list []schema.AgentInfo
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 2 || list[0].Name != "DBAgent" || list[1].Status != "disabled" {
		t.Errorf("unexpected agents %+v", list)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var health healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(healthResponse{Status: "ok", Agents: 2, Ready: 1}, health); diff != "" {
		t.Errorf("health mismatch (-want +got):\n%s", diff)
	}
}

func TestCORSAndMethods(t *testing.T) {
	handler := newTestServer().Handler()

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/v1/query", nil))
	if rr.Code != http.StatusNoContent || rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("unexpected preflight %d %v", rr.Code, rr.Header())
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/query", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expect 405, got %d", rr.Code)
	}
}

func TestShutdown(t *testing.T) {
	srv := newTestServer()
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
