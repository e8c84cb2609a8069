package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/agents/dbquery"
	"github.com/bububa/omniquery/components/embedder/embeddertest"
	"github.com/bububa/omniquery/components/llmtest"
	"github.com/bububa/omniquery/components/vectordb/engines/memory"
	"github.com/bububa/omniquery/config"
)

func newTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "company.db")
	db, err := dbquery.Open(dbquery.DriverSQLite, path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	for _, stmt := range []string{
		"CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT, department TEXT)",
		"INSERT INTO employees (name, department) VALUES ('Ada', 'Engineering'), ('Grace', 'Engineering')",
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.LLM.Provider = "ollama"
	cfg.VectorDB.Engine = "memory"
	cfg.Agents.DB.Enabled = true
	cfg.Agents.DB.DSN = newTestDB(t)
	cfg.Agents.Web.Enabled = false
	ctx := context.Background()
	ret, err := New(ctx, cfg,
		WithLLM(llmtest.New("Employees get 25 days of leave.")),
		WithEmbedder(embeddertest.New("leave", "expense")),
		WithVectorDB(memory.New()),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		ret.Close(context.Background())
	})
	return ret
}

func TestNew(t *testing.T) {
	a := newTestApp(t)
	want := []string{"DocAgent", "DBAgent", "ConfluenceAgent", "WebSearchAgent"}
	if diff := cmp.Diff(want, a.Registry.Names()); diff != "" {
		t.Errorf("agents mismatch (-want +got):\n%s", diff)
	}
	status := make(map[string]agents.Status)
	for _, agent := range a.Registry.All() {
		status[agent.Name()] = agent.Status()
	}
	wantStatus := map[string]agents.Status{
		"DocAgent":        agents.StatusReady,
		"DBAgent":         agents.StatusReady,
		"ConfluenceAgent": agents.StatusDisabled,
		"WebSearchAgent":  agents.StatusDisabled,
	}
	if diff := cmp.Diff(wantStatus, status); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestIngestAndAsk(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "leave.md"), []byte("# Leave policy\n\nEmployees get 25 days of paid leave per year."), 0o600); err != nil {
		t.Fatal(err)
	}
	report, err := a.IngestDir(ctx, dir)
	if err != nil {
		t.Fatalf("IngestDir() error = %v", err)
	}
	if report.Documents != 1 || report.Chunks == 0 {
		t.Errorf("unexpected report %+v", report)
	}

	resp := a.Orchestrator.Ask(ctx, "What is the leave policy?", "s1")
	if len(resp.AgentsUsed) == 0 || resp.AgentsUsed[0] != "DocAgent" {
		t.Fatalf("expect the document agent to answer, got %+v", resp)
	}
	if resp.Answer != "Employees get 25 days of leave." || len(resp.Sources) == 0 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestIngestS3WithoutBucket(t *testing.T) {
	a := newTestApp(t)
	if _, err := a.IngestS3(context.Background()); !errors.Is(err, ErrNoS3Bucket) {
		t.Errorf("expect ErrNoS3Bucket, got %v", err)
	}
}

func TestNewLLM(t *testing.T) {
	ctx := context.Background()
	for _, provider := range []string{"openai", "anthropic", "cohere", "ollama"} {
		l, closer, err := NewLLM(ctx, config.LLMConfig{Provider: provider, APIKey: "key"})
		if err != nil {
			t.Errorf("%s: %v", provider, err)
			continue
		}
		if l.Model() == "" {
			t.Errorf("%s: expect a default model", provider)
		}
		if err := closer(); err != nil {
			t.Errorf("%s: close: %v", provider, err)
		}
	}
	if _, _, err := NewLLM(ctx, config.LLMConfig{Provider: "watson"}); !errors.Is(err, config.ErrNoProvider) {
		t.Errorf("expect ErrNoProvider, got %v", err)
	}
}
