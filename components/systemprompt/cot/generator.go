package cot

import (
	"fmt"

	"github.com/bububa/omniquery/components/systemprompt"
)

const (
	sectionIdentity = "IDENTITY and PURPOSE"
	sectionSteps    = "INTERNAL ASSISTANT STEPS"
	sectionOutput   = "OUTPUT INSTRUCTIONS"
)

// Generator is Chain-of-Thought system prompt generator
type Generator struct {
	systemprompt.BaseGenerator
	background      []string
	steps           []string
	outputInstructs []string
}

var _ systemprompt.Generator = (*Generator)(nil)

// New returns a new system prompt Generator
func New(options ...Option) *Generator {
	ret := new(Generator)
	for _, opt := range options {
		opt(ret)
	}
	if len(ret.background) == 0 {
		ret.background = []string{"- You are a helpful assistant answering questions about company data."}
	}
	if len(ret.ContextProviders()) > 0 {
		ret.outputInstructs = append(ret.outputInstructs, "- Always use the available additional information and context to enhance the response.")
	}
	return ret
}

func (g *Generator) Generate() string {
	sections := []struct {
		title   string
		content []string
	}{
		{sectionIdentity, g.background},
		{sectionSteps, g.steps},
		{sectionOutput, g.outputInstructs},
	}
	var promptParts []string
	for _, section := range sections {
		if len(section.content) == 0 {
			continue
		}
		promptParts = append(promptParts, fmt.Sprintf("# %s", section.title))
		promptParts = append(promptParts, section.content...)
		promptParts = append(promptParts, "")
	}
	promptParts = append(promptParts, g.ContextSection()...)
	return systemprompt.Join(promptParts)
}
