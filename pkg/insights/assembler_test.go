package insights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthwise/homejourney/pkg/content"
)

func story(id string, matched int) content.RankedCandidate {
	return content.RankedCandidate{
		Candidate:         content.Candidate{ID: id},
		MatchedConditions: make([]string, matched),
	}
}

func TestAssembleSelectsMostSpecificStory(t *testing.T) {
	out := Assemble(map[string][]content.RankedCandidate{
		"research": {story("one-match", 1), story("three-matches", 3), story("two-matches", 2)},
	}, nil)

	require.Contains(t, out, "research")
	require.NotNil(t, out["research"].Story)
	assert.Equal(t, "three-matches", out["research"].Story.ID)
}

func TestAssembleStoryTiesPreserveInputOrder(t *testing.T) {
	out := Assemble(map[string][]content.RankedCandidate{
		"offer": {story("first", 2), story("second", 2)},
	}, nil)

	require.NotNil(t, out["offer"].Story)
	assert.Equal(t, "first", out["offer"].Story.ID)
}

func TestAssembleTipLegibilityBand(t *testing.T) {
	wellSized := "This is a well-sized forty-to-eighty character advisory tip for testing."

	out := Assemble(nil, map[string][]string{
		"research": {"short", wellSized},
	})

	require.NotNil(t, out["research"].Tip)
	assert.Equal(t, wellSized, *out["research"].Tip)
}

func TestAssembleTipFallsBackToFirst(t *testing.T) {
	wall := strings.Repeat("very long tip ", 30)

	out := Assemble(nil, map[string][]string{
		"closing": {"tiny", wall},
	})

	require.NotNil(t, out["closing"].Tip)
	assert.Equal(t, "tiny", *out["closing"].Tip, "no tip in band falls back to the first")
}

func TestAssembleUnionOfPhaseKeys(t *testing.T) {
	out := Assemble(
		map[string][]content.RankedCandidate{
			"research": {story("s", 1)},
			"bare":     nil,
		},
		map[string][]string{
			"closing": {"a tip"},
			"bare":    nil,
		},
	)

	// Every phase seen in either input appears, even with nothing selected.
	require.Len(t, out, 3)
	require.Contains(t, out, "bare")
	assert.Nil(t, out["bare"].Story)
	assert.Nil(t, out["bare"].Tip)

	require.NotNil(t, out["research"].Story)
	assert.Nil(t, out["research"].Tip)
	require.NotNil(t, out["closing"].Tip)
	assert.Nil(t, out["closing"].Story)
}

func TestAssembleEmptyInputs(t *testing.T) {
	assert.Empty(t, Assemble(nil, nil))
}
