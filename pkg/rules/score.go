package rules

import (
	"fmt"
	"strings"
)

// MatchResult is the outcome of scoring a candidate's rule groups against
// a visitor's answers. MatchedConditions holds human-readable descriptions
// of the satisfied leaves in the winning group; downstream selection
// prefers candidates with more of them.
type MatchResult struct {
	Score             float64
	Matched           bool
	MatchedConditions []string

	// PossibleWeight is the total leaf weight of the winning group, the
	// weight budget minMatchScore thresholds are expressed against.
	PossibleWeight float64
}

// ScoreGroups scores answers against a set of alternative rule groups.
// Top-level groups model disjoint scenarios, not cumulative ones: each
// satisfied group accumulates the weights of its true leaves, and the
// best-scoring group wins. A group that does not hold contributes zero no
// matter how many of its individual leaves matched, so a failed AND
// branch earns no partial credit. Pure and safe to call concurrently
// across candidates.
func ScoreGroups(groups []Group, answers Answers) MatchResult {
	var best MatchResult
	for _, g := range groups {
		score, matched := scoreNode(g, answers)
		if score > best.Score {
			best.Score = score
			best.MatchedConditions = matched
			best.PossibleWeight = totalWeight(g)
		}
	}
	best.Matched = best.Score > 0
	return best
}

// MeetsThreshold applies a candidate's minMatchScore, expressed as a
// fraction of the winning group's own weight budget rather than a global
// constant. Candidates without a threshold always pass.
func MeetsThreshold(res MatchResult, minMatchScore float64) bool {
	if minMatchScore <= 0 {
		return true
	}
	if !res.Matched {
		return false
	}
	return res.Score >= minMatchScore*res.PossibleWeight
}

// scoreNode accumulates satisfied leaf weights beneath n. A group gates
// its own subtree: when the group does not hold, its leaves count for
// nothing.
func scoreNode(n Node, answers Answers) (float64, []string) {
	switch r := n.(type) {
	case Condition:
		if evaluateCondition(r, answers) {
			return r.EffectiveWeight(), []string{describeCondition(r)}
		}
		return 0, nil
	case Group:
		if !evaluateGroup(r, answers) {
			return 0, nil
		}
		var sum float64
		var matched []string
		for _, child := range r.Rules {
			s, m := scoreNode(child, answers)
			sum += s
			matched = append(matched, m...)
		}
		return sum, matched
	default:
		return 0, nil
	}
}

func totalWeight(n Node) float64 {
	switch r := n.(type) {
	case Condition:
		return r.EffectiveWeight()
	case Group:
		var sum float64
		for _, child := range r.Rules {
			sum += totalWeight(child)
		}
		return sum
	default:
		return 0
	}
}

func describeCondition(c Condition) string {
	if c.Value.IsList() {
		return fmt.Sprintf("%s %s one of [%s]", c.Field, c.Operator, strings.Join(c.Value.Many, ", "))
	}
	return fmt.Sprintf("%s %s %q", c.Field, c.Operator, c.Value.One)
}
