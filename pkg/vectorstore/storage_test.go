package vectorstore

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthwise/homejourney/pkg/content"
)

func TestBuildObjectDerivesValidObjectID(t *testing.T) {
	// Authored content IDs are human-readable slugs, not UUIDs.
	c := content.Candidate{
		ID:      "adv-bidding-war",
		Title:   "How we won a bidding war",
		Tags:    []string{"offers"},
		PhaseID: "closing",
	}

	obj := BuildObject(c, content.FlowBuy, []float32{0.1, 0.2})

	_, err := uuid.Parse(string(obj.ID))
	require.NoError(t, err, "object IDs must be RFC 4122 UUIDs")

	props, ok := obj.Properties.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "adv-bidding-war", props[contentProperty], "neighbors resolve through the stored candidate ID")
	assert.Equal(t, "buy", props[flowProperty])
	assert.Equal(t, "closing", props[phaseProperty])
}

func TestBuildObjectIDIsStablePerCandidate(t *testing.T) {
	c := content.Candidate{ID: "adv-pricing"}

	first := BuildObject(c, content.FlowSell, nil)
	second := BuildObject(c, content.FlowSell, nil)
	other := BuildObject(content.Candidate{ID: "adv-condo-fees"}, content.FlowSell, nil)

	assert.Equal(t, first.ID, second.ID, "re-seeding overwrites instead of duplicating")
	assert.NotEqual(t, first.ID, other.ID)
}
