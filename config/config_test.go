package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string {
		return vars[k]
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
llm:
  provider: ollama
  model: llama3
  base_url: http://localhost:11434/v1
orchestrator:
  min_agent_confidence: 0.4
  max_parallel_agents: 3
  query_timeout: 30s
agents:
  db_agent:
    enabled: true
    dsn: data/company.db
  confluence_agent:
    enabled: true
    base_url: https://example.atlassian.net/wiki
    spaces: [ENG, OPS]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:9000" {
		t.Errorf("unexpected addr %s", cfg.Server.Addr())
	}
	if cfg.Orchestrator.QueryTimeout != 30*time.Second || cfg.Orchestrator.ScoreTimeout != 2*time.Second {
		t.Errorf("unexpected timeouts %+v", cfg.Orchestrator)
	}
	if cfg.Orchestrator.MinAgentConfidence != 0.4 || cfg.Orchestrator.MaxParallelAgents != 3 {
		t.Errorf("unexpected orchestrator config %+v", cfg.Orchestrator)
	}
	if diff := cmp.Diff([]string{"ENG", "OPS"}, cfg.Agents.Confluence.Spaces); diff != "" {
		t.Errorf("spaces mismatch (-want +got):\n%s", diff)
	}
	// defaults survive partial sections
	if cfg.Agents.DB.Driver != "sqlite" || cfg.Agents.DB.MaxRows != 50 || !cfg.Agents.Doc.Enabled {
		t.Errorf("defaults lost %+v", cfg.Agents)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		return path
	}
	t.Setenv("OPENAI_API_KEY", "")
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.yaml")},
		{name: "bad yaml", path: write("bad.yaml", "server: [")},
		{name: "bad provider", path: write("provider.yaml", "llm:\n  provider: watson\n")},
		{name: "bad threshold", path: write("threshold.yaml", "llm:\n  provider: ollama\norchestrator:\n  min_agent_confidence: 1.5\n")},
		{name: "db without dsn", path: write("db.yaml", "llm:\n  provider: ollama\nagents:\n  db_agent:\n    enabled: true\n")},
		{name: "no api key", path: write("key.yaml", "llm:\n  provider: openai\n"), wantErr: ErrNoProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("expect error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expect %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "anthropic"
	cfg.ApplyEnv(env(map[string]string{
		"ANTHROPIC_API_KEY":    "sk-ant",
		"OPENAI_API_KEY":       "sk-openai",
		"CONFLUENCE_API_TOKEN": "wiki-token",
		"OMNIQUERY_DB_DSN":     "postgres://localhost/company",
	}))
	if cfg.LLM.APIKey != "sk-ant" {
		t.Errorf("expect anthropic key, got %q", cfg.LLM.APIKey)
	}
	if cfg.EmbeddingProvider() != "openai" || cfg.Embedding.APIKey != "sk-openai" {
		t.Errorf("expect openai embeddings, got %s %q", cfg.EmbeddingProvider(), cfg.Embedding.APIKey)
	}
	if cfg.Agents.Confluence.APIToken != "wiki-token" || cfg.Agents.DB.DSN != "postgres://localhost/company" {
		t.Errorf("unexpected agents config %+v", cfg.Agents)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	override := Default()
	override.ApplyEnv(env(map[string]string{"OMNIQUERY_LLM_PROVIDER": "gemini", "GEMINI_API_KEY": "g"}))
	if override.LLM.Provider != "gemini" || override.LLM.APIKey != "g" || override.Embedding.APIKey != "g" {
		t.Errorf("unexpected override %+v", override.LLM)
	}
}
