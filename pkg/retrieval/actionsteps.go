// Package retrieval implements the two retrieval strategies: rule-ranked
// action steps and semantic advice retrieval gated by the same rule model.
package retrieval

import (
	"sort"

	"github.com/hearthwise/homejourney/pkg/content"
	"github.com/hearthwise/homejourney/pkg/rules"
)

// DefaultLimit applies when a caller omits the result limit or passes a
// non-positive one.
const DefaultLimit = 5

// RankActionSteps ranks the action step corpus for a visitor. Flow and
// rule applicability are hard filters; the match score drives the
// ranking. Ties break by authored priority (lower wins), then by match
// specificity, then by insertion order, so identical inputs always
// produce identical output order.
//
// Pure function over the fetched corpus; an empty corpus yields an empty
// list, which callers treat as a valid outcome.
func RankActionSteps(corpus []content.Candidate, flow content.Flow, answers rules.Answers, limit int) []content.RankedCandidate {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]content.RankedCandidate, 0, len(corpus))
	for _, c := range corpus {
		if !c.ApplicableWhen.AppliesToFlow(flow) {
			continue
		}
		if !rules.Applicable(c.ApplicableWhen.RuleGroups, answers) {
			continue
		}
		res := rules.ScoreGroups(c.ApplicableWhen.RuleGroups, answers)
		if c.ApplicableWhen.MinMatchScore > 0 && !rules.MeetsThreshold(res, c.ApplicableWhen.MinMatchScore) {
			continue
		}
		ranked = append(ranked, content.RankedCandidate{
			Candidate:         c,
			Score:             res.Score,
			MatchedConditions: res.MatchedConditions,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if ranked[i].DefaultPriority != ranked[j].DefaultPriority {
			return ranked[i].DefaultPriority < ranked[j].DefaultPriority
		}
		// More satisfied conditions means a more specific match.
		return len(ranked[i].MatchedConditions) > len(ranked[j].MatchedConditions)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
