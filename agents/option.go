package agents

import (
	"github.com/bububa/omniquery/components"
	"github.com/bububa/omniquery/components/systemprompt"
)

// Config represents general agents configuration
type Config struct {
	name        string
	description string
	intents     []Intent
	// llm language backend shared with the orchestrator
	llm components.LLM
	// systemPromptGenerator optional system prompt for completions
	systemPromptGenerator systemprompt.Generator
	// temperature 0 keeps the backend default
	temperature float32
	// maxTokens 0 keeps the backend default
	maxTokens  int
	disabled   bool
	scoreTable ScoreTable
}

type Option func(c *Config)

func WithName(name string) Option {
	return func(c *Config) {
		c.name = name
	}
}

func WithDescription(description string) Option {
	return func(c *Config) {
		c.description = description
	}
}

func WithIntents(intents ...Intent) Option {
	return func(c *Config) {
		c.intents = intents
	}
}

func WithLLM(llm components.LLM) Option {
	return func(c *Config) {
		c.llm = llm
	}
}

func WithSystemPromptGenerator(g systemprompt.Generator) Option {
	return func(c *Config) {
		c.systemPromptGenerator = g
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Config) {
		c.temperature = temperature
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(c *Config) {
		c.maxTokens = maxTokens
	}
}

// WithDisabled keeps the agent in StatusDisabled, it is never scored nor executed
func WithDisabled(disabled bool) Option {
	return func(c *Config) {
		c.disabled = disabled
	}
}

func WithScoreTable(table ScoreTable) Option {
	return func(c *Config) {
		c.scoreTable = table
	}
}

func (c Config) Name() string {
	return c.name
}

func (c Config) Description() string {
	return c.description
}

func (c Config) SupportedIntents() []Intent {
	return append([]Intent(nil), c.intents...)
}

func (c Config) LLM() components.LLM {
	return c.llm
}

func (c Config) ScoreTable() ScoreTable {
	return c.scoreTable
}
