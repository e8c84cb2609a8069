// Package llmtest provides a scripted language backend for tests
package llmtest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bububa/omniquery/components"
)

// Rule answers prompts which contain Match
type Rule struct {
	Match string
	Text  string
	Err   error
	Delay time.Duration
}

// LLM scripted components.LLM. Rules are checked in order, the first
// matching rule wins, otherwise Default is returned.
type LLM struct {
	Rules   []Rule
	Default string
	Err     error
	Delay   time.Duration

	mu      sync.Mutex
	prompts []string
	systems []string
}

var _ components.LLM = (*LLM)(nil)

// New returns a fake which answers every prompt with text
func New(text string) *LLM {
	return &LLM{Default: text}
}

// Failing returns a fake which fails every call with err
func Failing(err error) *LLM {
	return &LLM{Err: err}
}

func (l *LLM) Model() string {
	return "llmtest"
}

// On appends a rule and returns the fake for chaining
func (l *LLM) On(match string, text string) *LLM {
	l.Rules = append(l.Rules, Rule{Match: match, Text: text})
	return l
}

func (l *LLM) Generate(ctx context.Context, prompt string, opts ...components.GenerateOption) (*components.LLMResponse, error) {
	params := components.NewGenerateOptions(components.GenerateOptions{}, opts...)
	l.mu.Lock()
	l.prompts = append(l.prompts, prompt)
	l.systems = append(l.systems, params.SystemPrompt)
	l.mu.Unlock()

	text, err, delay := l.Default, l.Err, l.Delay
	for _, rule := range l.Rules {
		if strings.Contains(prompt, rule.Match) {
			text, err, delay = rule.Text, rule.Err, rule.Delay
			break
		}
	}
	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, components.ErrEmptyCompletion
	}
	return &components.LLMResponse{
		Text:  text,
		Model: l.Model(),
		Usage: components.EstimateUsage(prompt, text),
	}, nil
}

// Calls returns how many times Generate was called
func (l *LLM) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prompts)
}

// Prompts returns a copy of every prompt received
func (l *LLM) Prompts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.prompts...)
}

// LastPrompt returns the most recent prompt
func (l *LLM) LastPrompt() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prompts) == 0 {
		return ""
	}
	return l.prompts[len(l.prompts)-1]
}

// LastSystemPrompt returns the system prompt of the most recent call
func (l *LLM) LastSystemPrompt() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.systems) == 0 {
		return ""
	}
	return l.systems[len(l.systems)-1]
}
