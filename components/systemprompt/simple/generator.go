package simple

import (
	"github.com/bububa/omniquery/components/systemprompt"
)

// Generator renders fixed content followed by the context providers
type Generator struct {
	systemprompt.BaseGenerator
	content string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(content string, options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	ret.content = content
	return ret
}

func (g *Generator) Generate() string {
	promptParts := []string{g.content, ""}
	promptParts = append(promptParts, g.ContextSection()...)
	return systemprompt.Join(promptParts)
}
