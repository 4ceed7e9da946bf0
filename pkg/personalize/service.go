// Package personalize orchestrates a personalization request: both
// retrievers run concurrently over the visitor's answers and the phase
// assembler distills their output into per-phase insights.
package personalize

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
	"github.com/samber/lo"

	"github.com/hearthwise/homejourney/pkg/bootstrap"
	"github.com/hearthwise/homejourney/pkg/content"
	"github.com/hearthwise/homejourney/pkg/insights"
	"github.com/hearthwise/homejourney/pkg/retrieval"
	"github.com/hearthwise/homejourney/pkg/rules"
)

// InsightsComputedSubject carries a best-effort event after each
// personalization request.
const InsightsComputedSubject = "journey.insights.computed"

// ContentReader is the slice of the content store the service reads.
type ContentReader interface {
	GetActionSteps(ctx context.Context) ([]content.Candidate, error)
	GetPhases(ctx context.Context, flow content.Flow) ([]content.Phase, error)
	SearchAdvice(ctx context.Context, flow content.Flow, query string) ([]content.Candidate, error)
	CountAdvice(ctx context.Context, flow content.Flow) (int, error)
}

// StoryRetriever is the semantic retrieval path.
type StoryRetriever interface {
	Retrieve(ctx context.Context, flow content.Flow, answers rules.Answers, queryText string, topK int) ([]content.RankedCandidate, error)
}

// Service is the engine's public entry point. It is request-scoped and
// stateless: corpora are fetched fresh per call and nothing is shared
// between requests, so arbitrarily many may run concurrently.
type Service struct {
	logger  *log.Logger
	store   ContentReader
	stories StoryRetriever
	nc      *nats.Conn
}

// NewService wires the orchestrator. The NATS connection is optional;
// with nil, insight events are simply not published.
func NewService(logger *log.Logger, store ContentReader, stories StoryRetriever, nc *nats.Conn) *Service {
	return &Service{logger: logger, store: store, stories: stories, nc: nc}
}

// Result is the full personalization outcome for one request.
type Result struct {
	Flow        content.Flow                    `json:"flow"`
	ActionSteps []content.RankedCandidate       `json:"actionSteps"`
	Stories     []content.RankedCandidate       `json:"stories"`
	Phases      map[string]content.PhaseInsight `json:"phases"`
}

// Personalize runs both retrieval strategies for the visitor and
// assembles per-phase insights. The two retrievers are independent, so
// they run concurrently; each degrades to empty results on failure
// without disturbing the other. Partial or empty personalization is
// always a valid outcome, never an error to the caller.
func (s *Service) Personalize(ctx context.Context, flow content.Flow, answers rules.Answers, limit int) Result {
	var (
		wg      sync.WaitGroup
		steps   []content.RankedCandidate
		stories []content.RankedCandidate
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		corpus, err := s.store.GetActionSteps(ctx)
		if err != nil {
			s.logger.Error("Fetching action step corpus failed, degrading to empty", "error", err)
			return
		}
		steps = retrieval.RankActionSteps(corpus, flow, answers, limit)
	}()
	go func() {
		defer wg.Done()
		queryText := retrieval.BuildQueryText(flow, answers)
		ranked, err := s.stories.Retrieve(ctx, flow, answers, queryText, limit)
		if err != nil {
			s.logger.Error("Semantic retrieval failed, degrading to empty", "error", err)
			return
		}
		stories = ranked
	}()
	wg.Wait()

	phases := s.assemblePhases(ctx, flow, steps, stories)

	result := Result{
		Flow:        flow,
		ActionSteps: steps,
		Stories:     stories,
		Phases:      phases,
	}

	s.publishComputed(flow, result)
	return result
}

func (s *Service) assemblePhases(ctx context.Context, flow content.Flow, steps, stories []content.RankedCandidate) map[string]content.PhaseInsight {
	storiesByPhase := lo.GroupBy(
		lo.Filter(stories, func(c content.RankedCandidate, _ int) bool { return c.PhaseID != "" }),
		func(c content.RankedCandidate) string { return c.PhaseID },
	)
	tipsByPhase := make(map[string][]string)
	for _, step := range steps {
		if step.PhaseID == "" {
			continue
		}
		tipsByPhase[step.PhaseID] = append(tipsByPhase[step.PhaseID], step.Body)
	}

	assembled := insights.Assemble(storiesByPhase, tipsByPhase)

	// The configured phase catalog is part of the contract: phases with no
	// content at all still appear, so callers can render the timeline.
	phases, err := s.store.GetPhases(ctx, flow)
	if err != nil {
		s.logger.Error("Fetching phase catalog failed, returning content-derived phases only", "error", err)
		return assembled
	}
	for _, p := range phases {
		if _, ok := assembled[p.ID]; !ok {
			assembled[p.ID] = content.PhaseInsight{}
		}
	}
	return assembled
}

func (s *Service) publishComputed(flow content.Flow, result Result) {
	if s.nc == nil {
		return
	}
	event := map[string]any{
		"flow":        flow,
		"actionSteps": len(result.ActionSteps),
		"stories":     len(result.Stories),
		"phases":      len(result.Phases),
	}
	if err := bootstrap.PublishJSON(s.nc, InsightsComputedSubject, event); err != nil {
		s.logger.Warn("Publishing insights event failed", "error", err)
	}
}
