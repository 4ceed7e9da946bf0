// Package insights distills ranked retrieval results into the compact
// per-phase view surfaced to the visitor: at most one story and one tip
// per phase.
package insights

import (
	"sort"
	"unicode/utf8"

	"github.com/hearthwise/homejourney/pkg/content"
)

// Tips read best in a band between a fragment and a wall of text.
const (
	tipMinLength = 50
	tipMaxLength = 200
)

// Assemble maps ranked candidates onto per-phase insights. Every phase
// key present in either input appears in the output, even with neither
// story nor tip; callers rely on key presence to know a phase was
// considered.
func Assemble(storiesByPhase map[string][]content.RankedCandidate, tipsByPhase map[string][]string) map[string]content.PhaseInsight {
	out := make(map[string]content.PhaseInsight, len(storiesByPhase)+len(tipsByPhase))
	for phaseID := range storiesByPhase {
		out[phaseID] = content.PhaseInsight{}
	}
	for phaseID := range tipsByPhase {
		out[phaseID] = content.PhaseInsight{}
	}

	for phaseID := range out {
		out[phaseID] = content.PhaseInsight{
			Story: selectBestStory(storiesByPhase[phaseID]),
			Tip:   selectBestTip(tipsByPhase[phaseID]),
		}
	}
	return out
}

// selectBestStory prefers the candidate with the most matched conditions.
// The sort is stable so ties preserve the incoming (similarity) order and
// selection stays deterministic.
func selectBestStory(candidates []content.RankedCandidate) *content.RankedCandidate {
	if len(candidates) == 0 {
		return nil
	}
	sorted := make([]content.RankedCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].MatchedConditions) > len(sorted[j].MatchedConditions)
	})
	best := sorted[0]
	return &best
}

// selectBestTip prefers the first tip in the legibility band, falling
// back to the first tip when none qualifies.
func selectBestTip(tips []string) *string {
	if len(tips) == 0 {
		return nil
	}
	for _, tip := range tips {
		if n := utf8.RuneCountInString(tip); n >= tipMinLength && n <= tipMaxLength {
			t := tip
			return &t
		}
	}
	first := tips[0]
	return &first
}
