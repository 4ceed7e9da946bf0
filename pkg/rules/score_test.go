package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func timelineGroup() Group {
	return Group{Logic: LogicAnd, Rules: []Node{
		Condition{Field: "timeline", Operator: OpEquals, Value: StringValue("0-3 months"), Weight: 3},
		Condition{Field: "propertyType", Operator: OpIncludes, Value: ListValue("house", "condo"), Weight: 1},
	}}
}

func TestScoreGroupsBothLeavesMatch(t *testing.T) {
	res := ScoreGroups([]Group{timelineGroup()}, Answers{
		"timeline":     "0-3 months",
		"propertyType": "Condo/Apartment",
	})

	assert.True(t, res.Matched)
	assert.Equal(t, 4.0, res.Score)
	assert.Equal(t, 4.0, res.PossibleWeight)
	assert.Len(t, res.MatchedConditions, 2)
}

func TestScoreGroupsFailedANDEarnsNoPartialCredit(t *testing.T) {
	res := ScoreGroups([]Group{timelineGroup()}, Answers{
		"timeline":     "6-12 months",
		"propertyType": "house",
	})

	assert.False(t, res.Matched)
	assert.Equal(t, 0.0, res.Score)
	assert.Empty(t, res.MatchedConditions)
}

func TestScoreGroupsTakesMaxAcrossAlternatives(t *testing.T) {
	weak := Group{Logic: LogicAnd, Rules: []Node{
		Condition{Field: "flow", Operator: OpEquals, Value: StringValue("buy")},
	}}
	strong := Group{Logic: LogicAnd, Rules: []Node{
		Condition{Field: "flow", Operator: OpEquals, Value: StringValue("buy"), Weight: 2},
		Condition{Field: "firstTime", Operator: OpEquals, Value: StringValue("yes"), Weight: 2},
	}}

	res := ScoreGroups([]Group{weak, strong}, Answers{"flow": "buy", "firstTime": "yes"})

	assert.Equal(t, 4.0, res.Score, "groups are alternatives, not cumulative")
	assert.Equal(t, 4.0, res.PossibleWeight)
	assert.Len(t, res.MatchedConditions, 2)
}

func TestScoreGroupsNestedFalseGroupGatesItsLeaves(t *testing.T) {
	g := Group{Logic: LogicOr, Rules: []Node{
		Condition{Field: "flow", Operator: OpEquals, Value: StringValue("buy"), Weight: 1},
		Group{Logic: LogicAnd, Rules: []Node{
			Condition{Field: "flow", Operator: OpEquals, Value: StringValue("buy"), Weight: 5},
			Condition{Field: "timeline", Operator: OpEquals, Value: StringValue("never"), Weight: 5},
		}},
	}}

	res := ScoreGroups([]Group{g}, Answers{"flow": "buy", "timeline": "0-3 months"})

	// The nested AND fails, so its satisfied 5-weight leaf counts for nothing.
	assert.Equal(t, 1.0, res.Score)
	assert.Len(t, res.MatchedConditions, 1)
}

func TestScoreGroupsWeightDefaultsToOne(t *testing.T) {
	g := Group{Logic: LogicAnd, Rules: []Node{
		Condition{Field: "flow", Operator: OpEquals, Value: StringValue("buy")},
	}}

	res := ScoreGroups([]Group{g}, Answers{"flow": "buy"})
	assert.Equal(t, 1.0, res.Score)
}

func TestScoreGroupsMonotonicUnderAddedSatisfiedLeaf(t *testing.T) {
	base := Group{Logic: LogicAnd, Rules: []Node{
		Condition{Field: "flow", Operator: OpEquals, Value: StringValue("buy"), Weight: 2},
	}}
	extended := Group{Logic: LogicAnd, Rules: append(base.Rules,
		Condition{Field: "timeline", Operator: OpIncludes, Value: StringValue("months"), Weight: 1.5},
	)}

	answers := Answers{"flow": "buy", "timeline": "0-3 months"}
	before := ScoreGroups([]Group{base}, answers)
	after := ScoreGroups([]Group{extended}, answers)

	assert.GreaterOrEqual(t, after.Score, before.Score)
}

func TestMeetsThreshold(t *testing.T) {
	tests := []struct {
		name          string
		res           MatchResult
		minMatchScore float64
		want          bool
	}{
		{"no threshold always passes", MatchResult{Score: 0.5, Matched: true, PossibleWeight: 10}, 0, true},
		{"unmatched never passes", MatchResult{}, 0.1, false},
		{"fraction of winning group weight met", MatchResult{Score: 5, Matched: true, PossibleWeight: 10}, 0.5, true},
		{"fraction not met", MatchResult{Score: 4, Matched: true, PossibleWeight: 10}, 0.5, false},
		{"exact boundary passes", MatchResult{Score: 3, Matched: true, PossibleWeight: 10}, 0.3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MeetsThreshold(tt.res, tt.minMatchScore))
		})
	}
}

func TestScoreGroupsEmptyInputs(t *testing.T) {
	res := ScoreGroups(nil, Answers{"flow": "buy"})
	assert.False(t, res.Matched)
	assert.Zero(t, res.Score)

	// An empty AND group holds but has no leaves to score.
	res = ScoreGroups([]Group{{Logic: LogicAnd}}, nil)
	assert.False(t, res.Matched)
	assert.Zero(t, res.Score)
}
