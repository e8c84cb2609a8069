// Package dbquery answers data questions by translating them to SQL
package dbquery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/schema"
)

var (
	// ErrNoTables is returned by Initialize when the database is empty
	ErrNoTables = errors.New("no tables found in database")
	// ErrNoSQL is reported when no statement can be extracted from the completion
	ErrNoSQL = errors.New("could not generate a valid SQL query")
	// ErrUnsafeSQL is reported for anything but a single SELECT
	ErrUnsafeSQL = errors.New("query rejected: only SELECT queries are allowed")
)

// Open connects to a sqlite file or a postgres dsn
func Open(driver string, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Agent converts natural language questions into read-only SQL
type Agent struct {
	*agents.Base
	Options
	db *sqlx.DB

	mu     sync.RWMutex
	schema string
	tables []Table
}

var (
	_ agents.Agent        = (*Agent)(nil)
	_ agents.StatusSetter = (*Agent)(nil)
)

func New(db *sqlx.DB, opts ...Option) *Agent {
	ret := &Agent{db: db}
	for _, opt := range opts {
		opt(&ret.Options)
	}
	if ret.maxRows <= 0 {
		ret.maxRows = DefaultMaxRows
	}
	if ret.promptRows <= 0 {
		ret.promptRows = DefaultPromptRows
	}
	if ret.sampleRows <= 0 {
		ret.sampleRows = DefaultSampleRows
	}
	if ret.sourceName == "" {
		ret.sourceName = "database"
	}
	base := []agents.Option{
		agents.WithName(DefaultName),
		agents.WithDescription(DefaultDescription),
		agents.WithIntents(agents.IntentDataQuery),
		agents.WithScoreTable(DefaultScoreTable),
	}
	ret.Base = agents.NewBase(append(base, ret.agentOpts...)...)
	return ret
}

// Initialize introspects the schema, an empty database leaves the agent in error
func (a *Agent) Initialize(ctx context.Context) error {
	if a.Status() == agents.StatusDisabled {
		return nil
	}
	if a.db == nil {
		err := errors.New("no database connection")
		a.SetStatus(agents.StatusError, err.Error())
		return err
	}
	tables, err := Introspect(ctx, a.db, a.sampleRows)
	if err != nil {
		a.SetStatus(agents.StatusError, err.Error())
		return fmt.Errorf("introspect schema: %w", err)
	}
	if len(tables) == 0 {
		a.SetStatus(agents.StatusError, ErrNoTables.Error())
		return ErrNoTables
	}
	a.mu.Lock()
	a.tables = tables
	a.schema = DescribeSchema(tables)
	a.mu.Unlock()
	zerolog.Ctx(ctx).Info().Str("agent", a.Name()).Int("tables", len(tables)).Msg("database schema loaded")
	return a.Base.Initialize(ctx)
}

// Schema returns the schema description used in prompts
func (a *Agent) Schema() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.schema
}

func (a *Agent) Execute(ctx context.Context, qc agents.Context) *agents.Result {
	start := time.Now()
	if !a.Ready() {
		return a.Failure(agents.ErrNotReady, time.Since(start))
	}
	defer a.Begin()()

	logger := zerolog.Ctx(ctx).With().Str("agent", a.Name()).Logger()
	var result agents.Result
	sqlResp, err := a.Generate(ctx, a.sqlPrompt(qc.Query))
	if err != nil {
		return a.Failure(fmt.Errorf("generate sql: %w", err), time.Since(start))
	}
	result.Usage.Merge(sqlResp.Usage)
	stmt := ExtractSQL(sqlResp.Text)
	if stmt == "" {
		return a.failure(ErrNoSQL, &result, start)
	}
	if !IsReadOnly(stmt) {
		logger.Warn().Str("sql", stmt).Msg("rejected generated sql")
		return a.failure(ErrUnsafeSQL, &result, start)
	}
	columns, rows, total, err := query(ctx, a.db, stmt, a.maxRows)
	if err != nil {
		logger.Error().Err(err).Str("sql", stmt).Msg("sql execution failed")
		return a.failure(fmt.Errorf("database error: %w", err), &result, start)
	}
	logger.Debug().Str("sql", stmt).Int("rows", total).Msg("sql executed")

	answerResp, err := a.Generate(ctx, interpretPrompt(qc.Query, stmt, columns, rows, total, a.promptRows))
	if err != nil {
		return a.failure(fmt.Errorf("interpret results: %w", err), &result, start)
	}
	result.Usage.Merge(answerResp.Usage)

	ret := a.Success(answerResp.Text, DefaultConfidence, time.Since(start))
	ret.Usage = result.Usage
	ret.Sources = []schema.Source{
		{
			AgentName:        a.Name(),
			SourceType:       schema.SourceDatabase,
			SourceIdentifier: a.sourceName,
			RelevanceScore:   DefaultConfidence,
			Excerpt:          fmt.Sprintf("SQL: %s → %d row(s)", stmt, total),
		},
	}
	ret.Metadata = map[string]any{
		"sql":     stmt,
		"columns": columns,
		"rows":    rows,
	}
	return ret
}

func (a *Agent) failure(err error, partial *agents.Result, start time.Time) *agents.Result {
	ret := a.Failure(err, time.Since(start))
	ret.Usage = partial.Usage
	return ret
}

func (a *Agent) Shutdown(ctx context.Context) error {
	a.Base.Shutdown(ctx)
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *Agent) sqlPrompt(question string) string {
	dialect := Dialect(a.db.DriverName())
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a SQL expert. Given the following database schema, generate a %s SQL query to answer the user's question.\n\n", dialect)
	fmt.Fprintf(&sb, "DATABASE SCHEMA:\n%s\n\n", a.Schema())
	fmt.Fprintf(&sb, "USER QUESTION: %s\n\n", question)
	sb.WriteString("RULES:\n")
	sb.WriteString("- Return ONLY the SQL query, no explanation\n")
	sb.WriteString("- Use only SELECT statements (read-only)\n")
	sb.WriteString("- Do not use DROP, DELETE, INSERT, UPDATE, ALTER, or CREATE\n")
	sb.WriteString("- Use correct table and column names from the schema\n")
	sb.WriteString("- Wrap the SQL in ```sql ... ``` tags\n\n")
	sb.WriteString("SQL:")
	return sb.String()
}

func interpretPrompt(question string, stmt string, columns []string, rows [][]any, total int, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The user asked: %q\n\n", question)
	fmt.Fprintf(&sb, "The following SQL was executed:\n```sql\n%s\n```\n\n", stmt)
	fmt.Fprintf(&sb, "Results:\nColumns: [%s]\nRows (%d results):\n", strings.Join(columns, ", "), total)
	for i, row := range rows {
		if i >= limit {
			break
		}
		fmt.Fprintf(&sb, "  %s\n", formatRow(columns, row))
	}
	sb.WriteString("\nProvide a clear, natural language summary of the results. Be concise and directly answer the user's question.")
	return sb.String()
}
