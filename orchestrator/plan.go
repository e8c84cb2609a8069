package orchestrator

// PlanEntry one selected agent
type PlanEntry struct {
	Agent      string  `json:"agent"`
	Confidence float64 `json:"confidence"`
	// Rank 1-based position in the plan
	Rank int `json:"rank"`
}

// Plan is ordered by confidence descending, it is never modified once built
type Plan []PlanEntry

// Names returns the agent names in plan order
func (p Plan) Names() []string {
	ret := make([]string, 0, len(p))
	for _, entry := range p {
		ret = append(ret, entry.Agent)
	}
	return ret
}
