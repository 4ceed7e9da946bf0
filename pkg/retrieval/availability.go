package retrieval

import "math"

const (
	availabilityFraction = 0.3
	availabilityMin      = 1
	availabilityMax      = 5
)

// AvailabilityEstimate is the degrade path for an exact search that found
// nothing: a bounded, non-zero count shown to the visitor as a "relevant
// content exists" affirmation. It is a UX affordance, not a retrieval
// result; the distinct type keeps it out of ranked candidate lists.
type AvailabilityEstimate struct {
	Count     int  `json:"count"`
	Estimated bool `json:"estimated"`
}

// EstimateAvailability derives the estimate from a flow's total content
// count: roughly 30%, clamped to [1, 5].
func EstimateAvailability(totalForFlow int) AvailabilityEstimate {
	count := int(math.Floor(float64(totalForFlow) * availabilityFraction))
	if count < availabilityMin {
		count = availabilityMin
	}
	if count > availabilityMax {
		count = availabilityMax
	}
	return AvailabilityEstimate{Count: count, Estimated: true}
}
