package nutrition

import "strings"

// DefaultSuggestionCap bounds a merged suggestion list.
const DefaultSuggestionCap = 10

type SuggestionSource string

const (
	SuggestionLocal   SuggestionSource = "local"
	SuggestionHistory SuggestionSource = "history"
	SuggestionRemote  SuggestionSource = "remote"
)

// Candidate is one search suggestion. Raw is what gets normalized when the
// suggestion is picked.
type Candidate struct {
	Name      string           `json:"name"`
	Brand     string           `json:"brand,omitempty"`
	Source    SuggestionSource `json:"source"`
	Nutrients NutrientRecord   `json:"nutrients"`
	Raw       RawSource        `json:"raw"`
}

// NewCandidate normalizes src once so the list can show nutrients.
func NewCandidate(from SuggestionSource, src RawSource) Candidate {
	return Candidate{
		Name:      src.Name,
		Brand:     src.Brand,
		Source:    from,
		Nutrients: Normalize(src),
		Raw:       src,
	}
}

// Merge concatenates local, history then remote, keeps the first candidate
// for each name (case and surrounding space ignored) and truncates to limit.
// limit <= 0 means DefaultSuggestionCap.
func Merge(local, history, remote []Candidate, limit int) []Candidate {
	if limit <= 0 {
		limit = DefaultSuggestionCap
	}
	seen := make(map[string]struct{})
	out := make([]Candidate, 0, limit)
	for _, list := range [][]Candidate{local, history, remote} {
		for _, c := range list {
			if len(out) == limit {
				return out
			}
			key := NormalizeTerm(c.Name)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// NormalizeTerm is the comparison form of a food name or search term.
func NormalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
