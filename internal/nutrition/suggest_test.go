package nutrition

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidates(from SuggestionSource, names ...string) []Candidate {
	out := make([]Candidate, 0, len(names))
	for _, n := range names {
		out = append(out, Candidate{Name: n, Source: from})
	}
	return out
}

func TestMergeDedupKeepsFirstSource(t *testing.T) {
	local := candidates(SuggestionLocal, "Egg")
	remote := candidates(SuggestionRemote, "egg ", "Egg Noodles")
	got := Merge(local, nil, remote, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "Egg", got[0].Name)
	assert.Equal(t, SuggestionLocal, got[0].Source)
	assert.Equal(t, "Egg Noodles", got[1].Name)
}

func TestMergeCapAndPriority(t *testing.T) {
	var local, history, remote []Candidate
	for i := 0; i < 4; i++ {
		local = append(local, Candidate{Name: fmt.Sprintf("local %d", i), Source: SuggestionLocal})
		history = append(history, Candidate{Name: fmt.Sprintf("history %d", i), Source: SuggestionHistory})
	}
	for i := 0; i < 12; i++ {
		remote = append(remote, Candidate{Name: fmt.Sprintf("remote %d", i), Source: SuggestionRemote})
	}
	got := Merge(local, history, remote, 10)
	require.Len(t, got, 10)
	assert.Equal(t, SuggestionLocal, got[0].Source)
	assert.Equal(t, SuggestionHistory, got[4].Source)
	assert.Equal(t, SuggestionRemote, got[8].Source)
	assert.Equal(t, "remote 1", got[9].Name)

	assert.Len(t, Merge(local, history, remote, 0), DefaultSuggestionCap)
}

func TestMergeSkipsBlankNames(t *testing.T) {
	got := Merge(candidates(SuggestionLocal, "  ", "apple"), nil, nil, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "apple", got[0].Name)
}

func TestNewCandidateNormalizesOnce(t *testing.T) {
	src := BarcodeSource("Pretzels", "Acme", "12345678", map[string]any{"energy-kcal_100g": 380, "sodium_100g": 0.5}, 0)
	c := NewCandidate(SuggestionRemote, src)
	assert.Equal(t, 380.0, c.Nutrients.Calories)
	assert.Equal(t, 500.0, c.Nutrients.Sodium)
	assert.Equal(t, src, c.Raw)
}
