package personalize

import (
	"context"
	"fmt"

	"github.com/hearthwise/homejourney/pkg/content"
	"github.com/hearthwise/homejourney/pkg/retrieval"
)

// SearchResult carries either exact matches or, when the search comes up
// empty, a clearly flagged availability estimate. The two never mix: the
// estimate is a UX affirmation, not a ranked list.
type SearchResult struct {
	Matches  []content.Candidate             `json:"matches"`
	Estimate *retrieval.AvailabilityEstimate `json:"estimate,omitempty"`
}

// Search runs an exact text/tag search over the advice corpus. Zero
// matches degrade to a bounded non-zero estimate derived from the flow's
// total content count.
func (s *Service) Search(ctx context.Context, flow content.Flow, query string) (SearchResult, error) {
	matches, err := s.store.SearchAdvice(ctx, flow, query)
	if err != nil {
		return SearchResult{}, fmt.Errorf("searching advice: %w", err)
	}
	if len(matches) > 0 {
		return SearchResult{Matches: matches}, nil
	}

	total, err := s.store.CountAdvice(ctx, flow)
	if err != nil {
		s.logger.Error("Counting advice for availability estimate failed", "error", err)
		total = 0
	}
	estimate := retrieval.EstimateAvailability(total)
	return SearchResult{Estimate: &estimate}, nil
}
