package orchestrator

import (
	"testing"

	"github.com/bububa/omniquery/agents"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		query string
		want  agents.Intent
	}{
		{query: "Summarize the vacation policy", want: agents.IntentSummarization},
		{query: "What does the onboarding guide say?", want: agents.IntentSummarization},
		{query: "How many employees work in engineering?", want: agents.IntentDataQuery},
		{query: "average SALARY by department", want: agents.IntentDataQuery},
		{query: "find the deploy runbook in the wiki", want: agents.IntentWikiSearch},
		{query: "latest news about Go generics", want: agents.IntentWebSearch},
		{query: "who is the CEO of Anthropic", want: agents.IntentWebSearch},
		{query: "open the travel guideline", want: agents.IntentDocumentSearch},
		{query: "hello there", want: agents.IntentGeneral},
		{query: "", want: agents.IntentGeneral},
		// summarization is checked before web search
		{query: "explain what is a goroutine", want: agents.IntentSummarization},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := Classify(tt.query); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}
