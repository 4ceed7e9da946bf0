// Package content defines the authored content model shared by both
// retrieval paths and the sqlite-backed store that holds it.
package content

import (
	"strings"

	"github.com/hearthwise/homejourney/pkg/rules"
)

// Flow identifies one of the guided conversation intents. The empty flow
// disables flow filtering.
type Flow string

const (
	FlowBuy    Flow = "buy"
	FlowSell   Flow = "sell"
	FlowBrowse Flow = "browse"
)

// ParseFlow maps caller input onto the closed flow set. Unknown
// identifiers are corrected to the empty flow rather than rejected; the
// engine backs a best-effort enrichment path, not a transactional API.
func ParseFlow(s string) Flow {
	switch Flow(strings.ToLower(strings.TrimSpace(s))) {
	case FlowBuy:
		return FlowBuy
	case FlowSell:
		return FlowSell
	case FlowBrowse:
		return FlowBrowse
	default:
		return ""
	}
}

// ApplicableWhen declares when a candidate may be surfaced. Multiple rule
// groups are alternatives: the candidate applies if any group matches.
type ApplicableWhen struct {
	Flows         []Flow        `json:"flows,omitempty"`
	RuleGroups    []rules.Group `json:"ruleGroups,omitempty"`
	MinMatchScore float64       `json:"minMatchScore,omitempty"`
}

// AppliesToFlow reports whether the candidate's flow filter admits the
// given flow. An empty filter, or an empty caller flow, admits everything.
func (a ApplicableWhen) AppliesToFlow(flow Flow) bool {
	if len(a.Flows) == 0 || flow == "" {
		return true
	}
	for _, f := range a.Flows {
		if f == flow {
			return true
		}
	}
	return false
}

// Candidate is a unit of authored content: an action step, an advice
// snippet or a story. Action steps carry priority and category metadata
// for ranking ties; advice carries an embedding reference resolved by the
// vector store.
type Candidate struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Body           string         `json:"body"`
	Tags           []string       `json:"tags,omitempty"`
	ApplicableWhen ApplicableWhen `json:"applicableWhen"`
	Category       string         `json:"category,omitempty"`

	// DefaultPriority breaks score ties; lower means more important.
	DefaultPriority int    `json:"defaultPriority,omitempty"`
	EmbeddingRef    string `json:"embeddingRef,omitempty"`
	PhaseID         string `json:"phaseId,omitempty"`
}

// RankedCandidate is a candidate annotated with how it ranked. Score is
// the rule match score (action steps); Similarity is the vector certainty
// (advice/stories).
type RankedCandidate struct {
	Candidate
	Score             float64  `json:"score,omitempty"`
	Similarity        float64  `json:"similarity,omitempty"`
	MatchedConditions []string `json:"matchedConditions,omitempty"`
}

// Phase is one named step of a flow's guided timeline. The phase set is
// fixed configuration per flow.
type Phase struct {
	ID    string `json:"id" db:"id"`
	Flow  Flow   `json:"flow" db:"flow"`
	Title string `json:"title" db:"title"`
	Order int    `json:"order" db:"ord"`
}

// PhaseInsight is the per-phase distillation: at most one story and one
// tip. Computed fresh per request, never persisted.
type PhaseInsight struct {
	Story *RankedCandidate `json:"story,omitempty"`
	Tip   *string          `json:"tip,omitempty"`
}
