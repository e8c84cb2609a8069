package orchestrator

import (
	"strings"

	"github.com/bububa/omniquery/agents"
)

type intentRule struct {
	intent   agents.Intent
	keywords []string
}

// intentRules are checked in order, the first rule with a matching keyword wins
var intentRules = []intentRule{
	{intent: agents.IntentSummarization, keywords: []string{"summarize", "summary", "explain", "what does"}},
	{intent: agents.IntentDataQuery, keywords: []string{"how many", "count", "total", "average", "salary", "employee", "database", "table"}},
	{intent: agents.IntentWikiSearch, keywords: []string{"wiki", "confluence", "knowledge base", "runbook"}},
	{intent: agents.IntentWebSearch, keywords: []string{"search", "latest", "news", "who is", "what is"}},
	{intent: agents.IntentDocumentSearch, keywords: []string{"document", "policy", "procedure", "guideline", "file", "report"}},
}

// Classify tags a query with a coarse intent, IntentGeneral when nothing matches.
// The intent is a scoring hint only.
func Classify(query string) agents.Intent {
	q := strings.ToLower(query)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.intent
			}
		}
	}
	return agents.IntentGeneral
}
