package agents

import (
	"slices"
	"strings"
)

// ScoreTable is a data driven keyword heuristic:
//
//	score = Baseline
//	      + OneMatch   when exactly one keyword occurs in the query
//	      + MultiMatch when two or more keywords occur
//	      + IntentBoost when the intent is listed in Intents
//
// clamped to [0, 1]. Keywords match case-insensitively as substrings.
type ScoreTable struct {
	Baseline    float64
	Keywords    []string
	OneMatch    float64
	MultiMatch  float64
	Intents     []Intent
	IntentBoost float64
}

// Matches counts the keywords occurring in query
func (t ScoreTable) Matches(query string) int {
	query = strings.ToLower(query)
	var n int
	for _, kw := range t.Keywords {
		if strings.Contains(query, kw) {
			n++
		}
	}
	return n
}

// Score is a pure function of query and intent
func (t ScoreTable) Score(query string, intent Intent) float64 {
	score := t.Baseline
	switch n := t.Matches(query); {
	case n >= 2:
		score += t.MultiMatch
	case n == 1:
		score += t.OneMatch
	}
	if slices.Contains(t.Intents, intent) {
		score += t.IntentBoost
	}
	return Clamp(score)
}

// Clamp bounds a confidence to [0, 1]
func Clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
