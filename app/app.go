// Package app wires configuration into a ready to serve orchestrator
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/bububa/omniquery/agents"
	"github.com/bububa/omniquery/agents/confluence"
	"github.com/bububa/omniquery/agents/dbquery"
	"github.com/bububa/omniquery/agents/rag"
	"github.com/bububa/omniquery/agents/websearch"
	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/embedder"
	"github.com/bububa/omniquery/components/embedder/splitter"
	"github.com/bububa/omniquery/components/systemprompt"
	"github.com/bububa/omniquery/components/systemprompt/cot"
	"github.com/bububa/omniquery/components/systemprompt/simple"
	"github.com/bububa/omniquery/components/vectordb"
	"github.com/bububa/omniquery/components/vectordb/engines"
	"github.com/bububa/omniquery/components/vectordb/engines/chromem"
	"github.com/bububa/omniquery/config"
	"github.com/bububa/omniquery/orchestrator"
	"github.com/bububa/omniquery/tools"
	"github.com/bububa/omniquery/tools/duckduckgo"
	"github.com/bububa/omniquery/tools/searxng"
	"github.com/bububa/omniquery/tools/webscraper"
)

// AssistantPrompt system prompt shared by every agent
const AssistantPrompt = "You are OmniQuery, an assistant answering employee questions from company data sources. Be accurate and concise, and say so when the provided context does not contain the answer."

type Options struct {
	llm      components.LLM
	embedder embedder.Embedder
	vectordb vectordb.Engine
	http     *http.Client
}

type Option func(*Options)

// WithLLM replaces the configured language backend
func WithLLM(l components.LLM) Option {
	return func(o *Options) {
		o.llm = l
	}
}

// WithEmbedder replaces the configured embedding backend
func WithEmbedder(e embedder.Embedder) Option {
	return func(o *Options) {
		o.embedder = e
	}
}

// WithVectorDB replaces the configured vector store
func WithVectorDB(v vectordb.Engine) Option {
	return func(o *Options) {
		o.vectordb = v
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(o *Options) {
		o.http = clt
	}
}

// App owns every long lived component of the process
type App struct {
	Config       *config.Config
	LLM          components.LLM
	Embedder     embedder.Embedder
	VectorDB     vectordb.Engine
	Docs         *rag.Agent
	Registry     *agents.Registry
	Orchestrator *orchestrator.Orchestrator

	http    *http.Client
	closers []func() error
}

// New builds and initializes every agent. Agent failures leave the agent in
// error status, only missing backends fail New.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	ret := &App{
		Config:   cfg,
		LLM:      options.llm,
		Embedder: options.embedder,
		VectorDB: options.vectordb,
		http:     options.http,
	}
	if ret.http == nil {
		ret.http = &http.Client{Timeout: 30 * time.Second}
	}
	if ret.LLM == nil {
		l, closer, err := NewLLM(ctx, cfg.LLM)
		if err != nil {
			return nil, err
		}
		ret.LLM = l
		ret.closers = append(ret.closers, closer)
	}
	if ret.Embedder == nil && cfg.Agents.Doc.Enabled {
		e, closer, err := NewEmbedder(ctx, cfg)
		if err != nil {
			ret.Close(ctx)
			return nil, err
		}
		ret.Embedder = e
		ret.closers = append(ret.closers, closer)
	}
	if ret.VectorDB == nil {
		v, err := newVectorDB(cfg.VectorDB)
		if err != nil {
			ret.Close(ctx)
			return nil, err
		}
		ret.VectorDB = v
	}

	ret.Docs = ret.newDocAgent()
	ret.Registry = agents.NewRegistry(
		ret.Docs,
		ret.newDBAgent(ctx),
		ret.newConfluenceAgent(),
		ret.newWebAgent(),
	)
	ret.Registry.InitializeAll(ctx)
	ret.Orchestrator = orchestrator.New(ret.Registry, ret.LLM,
		orchestrator.WithMinConfidence(cfg.Orchestrator.MinAgentConfidence),
		orchestrator.WithMaxAgents(cfg.Orchestrator.MaxParallelAgents),
		orchestrator.WithScoreTimeout(cfg.Orchestrator.ScoreTimeout),
		orchestrator.WithScoreConcurrency(cfg.Orchestrator.ScoreConcurrency),
		orchestrator.WithQueryTimeout(cfg.Orchestrator.QueryTimeout),
		orchestrator.WithFinalizeTimeout(cfg.Orchestrator.FinalizeTimeout),
	)
	zerolog.Ctx(ctx).Info().
		Str("provider", cfg.LLM.Provider).
		Str("model", ret.LLM.Model()).
		Strs("agents", ret.Registry.Names()).
		Msg("omniquery ready")
	return ret, nil
}

func newVectorDB(cfg config.VectorDBConfig) (vectordb.Engine, error) {
	if vectordb.EngineType(cfg.Engine) == vectordb.Memory {
		return engines.FromMemory(), nil
	}
	db, err := chromem.Open(cfg.PersistDirectory, cfg.Compress)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	return engines.FromChromem(db), nil
}

func (a *App) agentOptions(enabled bool, generator systemprompt.Generator) []agents.Option {
	return []agents.Option{
		agents.WithLLM(a.LLM),
		agents.WithDisabled(!enabled),
		agents.WithSystemPromptGenerator(generator),
		agents.WithTemperature(a.Config.LLM.Temperature),
	}
}

func (a *App) assistantPrompt() systemprompt.Generator {
	return simple.New(AssistantPrompt, simple.WithContextProviders(
		systemprompt.NewFuncContext("Current date", func() string {
			return time.Now().Format(time.DateOnly)
		}),
	))
}

func (a *App) newDocAgent() *rag.Agent {
	cfg := a.Config.Agents.Doc
	return rag.New(
		rag.WithEmbedder(a.Embedder),
		rag.WithVectorDB(a.VectorDB),
		rag.WithCollection(a.Config.VectorDB.Collection),
		rag.WithChunker(splitter.NewSentences(
			splitter.WithChunkSize(a.Config.Ingest.ChunkSize),
			splitter.WithOverlap(a.Config.Ingest.Overlap),
		)),
		rag.WithTopK(cfg.TopK),
		rag.WithRelevanceThreshold(cfg.RelevanceThreshold),
		rag.WithRefineQuery(cfg.RefineQuery),
		rag.WithAgentOptions(a.agentOptions(cfg.Enabled, a.assistantPrompt())...),
	)
}

func (a *App) newDBAgent(ctx context.Context) *dbquery.Agent {
	cfg := a.Config.Agents.DB
	generator := cot.New(
		cot.WithBackground(AssistantPrompt, "You translate questions into read-only SQL and explain query results in plain language."),
		cot.WithSteps(
			"Identify the tables and columns the question refers to.",
			"Write a single SELECT statement using only the listed columns.",
			"Summarize the returned rows, quoting the relevant numbers.",
		),
		cot.WithOutputInstructs("Never modify data.", "Do not invent rows that were not returned."),
	)
	opts := []dbquery.Option{
		dbquery.WithMaxRows(cfg.MaxRows),
		dbquery.WithAgentOptions(a.agentOptions(cfg.Enabled, generator)...),
	}
	if !cfg.Enabled || cfg.DSN == "" {
		return dbquery.New(nil, opts...)
	}
	db, err := dbquery.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("driver", cfg.Driver).Msg("database unavailable")
		return dbquery.New(nil, opts...)
	}
	return dbquery.New(db, append(opts, dbquery.WithSourceName(cfg.Driver))...)
}

func (a *App) newConfluenceAgent() *confluence.Agent {
	cfg := a.Config.Agents.Confluence
	return confluence.New(
		confluence.WithBaseURL(cfg.BaseURL),
		confluence.WithCredentials(cfg.Username, cfg.APIToken),
		confluence.WithSpaces(cfg.Spaces...),
		confluence.WithMaxResults(cfg.MaxResults),
		confluence.WithHttpClient(a.http),
		confluence.WithAgentOptions(a.agentOptions(cfg.Enabled, a.assistantPrompt())...),
	)
}

func (a *App) newWebAgent() *websearch.Agent {
	cfg := a.Config.Agents.Web
	hooks := tools.LogHooks()
	var searchers []tools.Searcher
	if cfg.SearxNGURL != "" {
		searchers = append(searchers, searxng.New(
			searxng.WithBaseURL(cfg.SearxNGURL),
			searxng.WithMaxResults(cfg.MaxResults),
			searxng.WithHttpClient(a.http),
			searxng.WithToolOptions(hooks...),
		))
	}
	searchers = append(searchers, duckduckgo.New(
		duckduckgo.WithRegion(cfg.Region),
		duckduckgo.WithMaxResults(cfg.MaxResults),
		duckduckgo.WithHttpClient(a.http),
		duckduckgo.WithToolOptions(hooks...),
	))
	opts := []websearch.Option{
		websearch.WithSearchers(searchers...),
		websearch.WithMaxResults(cfg.MaxResults),
		websearch.WithAgentOptions(a.agentOptions(cfg.Enabled, a.assistantPrompt())...),
	}
	if cfg.ScrapeTop {
		opts = append(opts, websearch.WithScraper(webscraper.New(webscraper.WithToolOptions(hooks...))))
	}
	return websearch.New(opts...)
}

// Close shuts every agent down and releases backend clients
func (a *App) Close(ctx context.Context) error {
	if a.Registry != nil {
		a.Registry.ShutdownAll(ctx)
	}
	var errs []error
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
