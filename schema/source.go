package schema

// Source kinds reported by the built-in agents
const (
	SourceDatabase         = "database"
	SourceDocument         = "document"
	SourceConfluence       = "confluence"
	SourceWeb              = "web"
	SourceGeneralKnowledge = "general_knowledge"
)

// Source citation attached to an answer
type Source struct {
	// AgentName agent which produced the citation
	AgentName string `json:"agent_name"`
	// SourceType kind of origin, see Source* constants
	SourceType string `json:"source_type"`
	// SourceIdentifier table, file, page or url
	SourceIdentifier string `json:"source_identifier"`
	// RelevanceScore in [0, 1]
	RelevanceScore float64 `json:"relevance_score"`
	// Excerpt short quote of the cited content
	Excerpt string `json:"excerpt,omitempty"`
}

// Key identifies a citation for deduplication
func (s Source) Key() string {
	return s.AgentName + "\x00" + s.SourceType + "\x00" + s.SourceIdentifier
}

// MergeSources unions source lists keeping first occurrence order
func MergeSources(lists ...[]Source) []Source {
	var (
		ret  []Source
		seen = make(map[string]struct{})
	)
	for _, list := range lists {
		for _, src := range list {
			key := src.Key()
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			ret = append(ret, src)
		}
	}
	return ret
}
