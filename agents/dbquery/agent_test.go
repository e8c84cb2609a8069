package dbquery

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/components/llmtest"
	"github.com/bububa/omniquery/schema"
)

func openDemoDB(t *testing.T, seed bool) *sqlx.DB {
	t.Helper()
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "demo.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if !seed {
		return db
	}
	for _, stmt := range []string{
		`CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT NOT NULL, department TEXT, salary REAL)`,
		`INSERT INTO employees (name, department, salary) VALUES ('Alice', 'Engineering', 120000), ('Bob', 'Engineering', 110000), ('Carol', 'Sales', 90000), ('Dan', 'Sales', 80000)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return db
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()
	agent := New(openDemoDB(t, true), WithAgentOptions(agents.WithLLM(llmtest.New("ok"))))
	if err := agent.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if agent.Status() != agents.StatusReady {
		t.Fatalf("expect ready, got %s", agent.Status())
	}
	desc := agent.Schema()
	for _, expect := range []string{"Table 'employees'", "salary (REAL)", "Sample rows:", "name: Alice"} {
		if !strings.Contains(desc, expect) {
			t.Errorf("schema description missing %q:\n%s", expect, desc)
		}
	}
	if strings.Contains(desc, "Dan") {
		t.Errorf("expect at most %d sample rows:\n%s", DefaultSampleRows, desc)
	}
}

func TestInitializeEmptyDatabase(t *testing.T) {
	agent := New(openDemoDB(t, false))
	err := agent.Initialize(context.Background())
	if !errors.Is(err, ErrNoTables) {
		t.Fatalf("expect ErrNoTables, got %v", err)
	}
	if agent.Status() != agents.StatusError {
		t.Errorf("expect error status, got %s", agent.Status())
	}
	if score, _ := agent.CanHandle(context.Background(), agents.NewContext("how many employees", "")); score != 0 {
		t.Errorf("agent in error must score 0, got %v", score)
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	llm := llmtest.New("There are 2 employees in Engineering.").
		On("SQL expert", "Here you go:\n```sql\nSELECT name FROM employees WHERE department = 'Engineering' ORDER BY name;\n```")
	agent := New(openDemoDB(t, true), WithSourceName("demo.db"), WithAgentOptions(agents.WithLLM(llm)))
	if err := agent.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	ret := agent.Execute(ctx, agents.NewContext("How many employees work in Engineering?", "s1"))
	if ret.Failed() {
		t.Fatalf("execute failed: %s", ret.Error)
	}
	if ret.Answer != "There are 2 employees in Engineering." || ret.Confidence != DefaultConfidence {
		t.Errorf("unexpected result %+v", ret)
	}
	if len(ret.Sources) != 1 {
		t.Fatalf("expect 1 source, got %d", len(ret.Sources))
	}
	src := ret.Sources[0]
	if src.SourceType != schema.SourceDatabase || src.SourceIdentifier != "demo.db" || !strings.HasSuffix(src.Excerpt, "→ 2 row(s)") {
		t.Errorf("unexpected source %+v", src)
	}
	if rows, _ := ret.Metadata["rows"].([][]any); len(rows) != 2 || rows[0][0] != "Alice" {
		t.Errorf("unexpected rows metadata %v", ret.Metadata["rows"])
	}
	if ret.Usage.Total() == 0 {
		t.Error("expect usage from both completions")
	}
	if !strings.Contains(llm.LastPrompt(), "Alice") {
		t.Errorf("interpretation prompt must carry the rows: %s", llm.LastPrompt())
	}
	if agent.Status() != agents.StatusReady {
		t.Errorf("expect ready after execution, got %s", agent.Status())
	}
}

func TestExecuteFailures(t *testing.T) {
	tests := []struct {
		name       string
		completion string
		llmErr     error
		expect     string
	}{
		{name: "no sql", completion: "I cannot help with that.", expect: ErrNoSQL.Error()},
		{name: "unsafe", completion: "```sql\nDELETE FROM employees;\n```", expect: ErrUnsafeSQL.Error()},
		{name: "bad column", completion: "SELECT missing_column FROM employees;", expect: "database error"},
		{name: "backend", llmErr: errors.New("rate limited"), expect: "rate limited"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			llm := &llmtest.LLM{Default: "unused", Rules: []llmtest.Rule{{Match: "SQL expert", Text: tt.completion, Err: tt.llmErr}}}
			agent := New(openDemoDB(t, true), WithAgentOptions(agents.WithLLM(llm)))
			if err := agent.Initialize(ctx); err != nil {
				t.Fatalf("initialize: %v", err)
			}
			ret := agent.Execute(ctx, agents.NewContext("list all employees", ""))
			if !ret.Failed() {
				t.Fatalf("expect failure, got %+v", ret)
			}
			if !strings.Contains(ret.Error, tt.expect) {
				t.Errorf("expect error containing %q, got %q", tt.expect, ret.Error)
			}
		})
	}
}

func TestExecuteNotReady(t *testing.T) {
	agent := New(openDemoDB(t, true), WithAgentOptions(agents.WithLLM(llmtest.New("x"))))
	ret := agent.Execute(context.Background(), agents.NewContext("count employees", ""))
	if !ret.Failed() || ret.Error != agents.ErrNotReady.Error() {
		t.Errorf("expect not ready failure, got %+v", ret)
	}
}

func TestCanHandle(t *testing.T) {
	ctx := context.Background()
	agent := New(openDemoDB(t, true))
	if err := agent.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	tests := []struct {
		query  string
		intent agents.Intent
		expect float64
	}{
		{query: "What is the weather?", intent: agents.IntentGeneral, expect: 0.3},
		{query: "Show each department", intent: agents.IntentGeneral, expect: 0.5},
		{query: "How many employees are there?", intent: agents.IntentDataQuery, expect: 0.9},
	}
	for _, tt := range tests {
		got, err := agent.CanHandle(ctx, agents.NewContext(tt.query, "").WithIntent(tt.intent))
		if err != nil {
			t.Fatalf("can handle: %v", err)
		}
		if diff := got - tt.expect; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("CanHandle(%q) = %v, expect %v", tt.query, got, tt.expect)
		}
	}
}
