// Package config loads the omniquery YAML configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bububa/omniquery/schema"
)

// DefaultPath is looked up in the working directory when no path is given
const DefaultPath = "config.yaml"

// ErrNoProvider is returned when the language backend has no credentials
var ErrNoProvider = errors.New("language backend provider is not configured")

type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	LLM          LLMConfig          `yaml:"llm"`
	Embedding    EmbeddingConfig    `yaml:"embedding"`
	VectorDB     VectorDBConfig     `yaml:"vector_db"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Agents       AgentsConfig       `yaml:"agents"`
	Ingest       IngestConfig       `yaml:"ingest"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port" validate:"min=1,max=65535"`
	// ReadTimeout also bounds request headers
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// AllowOrigin CORS origin, * by default
	AllowOrigin string `yaml:"allow_origin"`
}

// Addr listen address
func (c ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

type LLMConfig struct {
	Provider    string        `yaml:"provider" validate:"required,oneof=openai anthropic gemini cohere ollama"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url" validate:"omitempty,url"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int           `yaml:"max_tokens" validate:"gte=0"`
	Timeout     time.Duration `yaml:"timeout"`
}

type EmbeddingConfig struct {
	// Provider defaults to the language backend provider
	Provider string `yaml:"provider" validate:"omitempty,oneof=openai gemini cohere ollama"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
}

type VectorDBConfig struct {
	Engine string `yaml:"engine" validate:"omitempty,oneof=memory chromem"`
	// PersistDirectory empty keeps the chromem database in memory
	PersistDirectory string `yaml:"persist_directory"`
	Compress         bool   `yaml:"compress"`
	Collection       string `yaml:"collection"`
}

type OrchestratorConfig struct {
	MinAgentConfidence float64       `yaml:"min_agent_confidence" validate:"gte=0,lte=1"`
	MaxParallelAgents  int           `yaml:"max_parallel_agents" validate:"min=1"`
	ScoreTimeout       time.Duration `yaml:"score_timeout"`
	ScoreConcurrency   int           `yaml:"score_concurrency" validate:"gte=0"`
	QueryTimeout       time.Duration `yaml:"query_timeout"`
	FinalizeTimeout    time.Duration `yaml:"finalize_timeout"`
}

type AgentsConfig struct {
	Doc        DocAgentConfig        `yaml:"doc_agent"`
	DB         DBAgentConfig         `yaml:"db_agent"`
	Confluence ConfluenceAgentConfig `yaml:"confluence_agent"`
	Web        WebAgentConfig        `yaml:"web_agent"`
}

type DocAgentConfig struct {
	Enabled            bool    `yaml:"enabled"`
	TopK               int     `yaml:"top_k" validate:"gte=0"`
	RelevanceThreshold float64 `yaml:"relevance_threshold" validate:"gte=0,lte=1"`
	RefineQuery        bool    `yaml:"refine_query"`
}

type DBAgentConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver" validate:"omitempty,oneof=sqlite postgres"`
	// DSN sqlite file path or postgres connection string
	DSN     string `yaml:"dsn" validate:"required_if=Enabled true"`
	MaxRows int    `yaml:"max_rows" validate:"gte=0"`
}

type ConfluenceAgentConfig struct {
	Enabled    bool     `yaml:"enabled"`
	BaseURL    string   `yaml:"base_url" validate:"omitempty,url"`
	Username   string   `yaml:"username"`
	APIToken   string   `yaml:"api_token"`
	Spaces     []string `yaml:"spaces"`
	MaxResults int      `yaml:"max_results" validate:"gte=0"`
}

type WebAgentConfig struct {
	Enabled    bool `yaml:"enabled"`
	MaxResults int  `yaml:"max_results" validate:"gte=0"`
	// SearxNGURL searched before DuckDuckGo when set
	SearxNGURL string `yaml:"searxng_url" validate:"omitempty,url"`
	Region     string `yaml:"region"`
	// ScrapeTop fetches the best result page for extra context
	ScrapeTop bool `yaml:"scrape_top"`
}

type IngestConfig struct {
	ChunkSize int      `yaml:"chunk_size" validate:"gte=0"`
	Overlap   int      `yaml:"overlap" validate:"gte=0"`
	Directory string   `yaml:"directory"`
	S3        S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint" validate:"omitempty,url"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// Default returns the configuration used for missing keys
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			AllowOrigin:  "*",
		},
		Log: LogConfig{Level: "info", Format: "text"},
		LLM: LLMConfig{
			Provider:    "openai",
			Temperature: 0.3,
			MaxTokens:   1024,
			Timeout:     60 * time.Second,
		},
		VectorDB: VectorDBConfig{
			Engine:     "chromem",
			Collection: "documents",
		},
		Orchestrator: OrchestratorConfig{
			MinAgentConfidence: 0.3,
			MaxParallelAgents:  2,
			ScoreTimeout:       2 * time.Second,
			QueryTimeout:       60 * time.Second,
			FinalizeTimeout:    15 * time.Second,
		},
		Agents: AgentsConfig{
			Doc:        DocAgentConfig{Enabled: true, TopK: 3, RelevanceThreshold: 0.35},
			DB:         DBAgentConfig{Driver: "sqlite", MaxRows: 50},
			Confluence: ConfluenceAgentConfig{MaxResults: 5},
			Web:        WebAgentConfig{Enabled: true, MaxResults: 5},
		},
		Ingest: IngestConfig{ChunkSize: 500, Overlap: 50, Directory: "data/documents"},
	}
}

// Load reads path over the defaults, applies environment overrides and validates.
// An empty path reads DefaultPath when it exists and the defaults otherwise.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv keeps secrets out of the YAML file
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("OMNIQUERY_LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := getenv("OMNIQUERY_LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = getenv(apiKeyEnv(c.LLM.Provider))
	}
	if c.Embedding.APIKey == "" {
		provider := c.EmbeddingProvider()
		if provider == c.LLM.Provider {
			c.Embedding.APIKey = c.LLM.APIKey
		} else {
			c.Embedding.APIKey = getenv(apiKeyEnv(provider))
		}
	}
	if v := getenv("CONFLUENCE_API_TOKEN"); v != "" && c.Agents.Confluence.APIToken == "" {
		c.Agents.Confluence.APIToken = v
	}
	if v := getenv("OMNIQUERY_DB_DSN"); v != "" {
		c.Agents.DB.DSN = v
	}
	if v := getenv("AWS_ACCESS_KEY_ID"); v != "" && c.Ingest.S3.AccessKey == "" {
		c.Ingest.S3.AccessKey = v
	}
	if v := getenv("AWS_SECRET_ACCESS_KEY"); v != "" && c.Ingest.S3.SecretKey == "" {
		c.Ingest.S3.SecretKey = v
	}
}

func apiKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	case "cohere":
		return "COHERE_API_KEY"
	}
	return ""
}

// EmbeddingProvider falls back to the language backend provider.
// Anthropic has no embedding api, openai is used instead.
func (c *Config) EmbeddingProvider() string {
	if c.Embedding.Provider != "" {
		return c.Embedding.Provider
	}
	if c.LLM.Provider == "anthropic" {
		return "openai"
	}
	return c.LLM.Provider
}

// Validate checks field constraints and provider credentials
func (c *Config) Validate() error {
	if err := schema.Validator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.LLM.Provider != "ollama" && c.LLM.APIKey == "" {
		return fmt.Errorf("%w: %s needs %s", ErrNoProvider, c.LLM.Provider, apiKeyEnv(c.LLM.Provider))
	}
	return nil
}
