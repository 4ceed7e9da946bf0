package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	"github.com/hearthwise/homejourney/pkg/content"
	"github.com/hearthwise/homejourney/pkg/rules"
	"github.com/hearthwise/homejourney/pkg/vectorstore"
)

// Embedder is the external text-embedding collaborator.
type Embedder interface {
	Embedding(ctx context.Context, input string, model string) ([]float64, error)
}

// NeighborSearcher is the vector store collaborator. Similarity scores
// arrive already normalized to [0,1].
type NeighborSearcher interface {
	NearestByFlow(ctx context.Context, vector []float32, flow string, limit int) ([]vectorstore.Neighbor, error)
}

// AdviceStore resolves neighbor IDs back to full candidates.
type AdviceStore interface {
	GetAdviceBatch(ctx context.Context, ids []string) ([]content.Candidate, error)
}

// AdviceRetriever retrieves advice and stories by vector similarity, with
// the rule model layered on top as a hard gate: a semantically close
// candidate whose rules reject the visitor is dropped, and rule scores
// never blend into the similarity ranking.
type AdviceRetriever struct {
	logger   *log.Logger
	embedder Embedder
	model    string
	vectors  NeighborSearcher
	store    AdviceStore
}

func NewAdviceRetriever(logger *log.Logger, embedder Embedder, embeddingsModel string, vectors NeighborSearcher, store AdviceStore) *AdviceRetriever {
	return &AdviceRetriever{
		logger:   logger,
		embedder: embedder,
		model:    embeddingsModel,
		vectors:  vectors,
		store:    store,
	}
}

// Retrieve returns up to topK advice candidates for the visitor, ranked
// by vector similarity among the rule-eligible ones. Collaborator
// failures surface as errors; the orchestrator degrades them to empty
// results without disturbing the other retriever.
func (r *AdviceRetriever) Retrieve(ctx context.Context, flow content.Flow, answers rules.Answers, queryText string, topK int) ([]content.RankedCandidate, error) {
	if topK <= 0 {
		topK = DefaultLimit
	}

	vector, err := r.embedder.Embedding(ctx, queryText, r.model)
	if err != nil {
		return nil, fmt.Errorf("embedding query text: %w", err)
	}
	vector32 := make([]float32, len(vector))
	for i, v := range vector {
		vector32[i] = float32(v)
	}

	// Over-fetch so the rule gate below still leaves topK survivors.
	neighbors, err := r.vectors.NearestByFlow(ctx, vector32, string(flow), topK*3)
	if err != nil {
		return nil, fmt.Errorf("querying nearest neighbors: %w", err)
	}
	if len(neighbors) == 0 {
		return nil, nil
	}

	ids := lo.Map(neighbors, func(n vectorstore.Neighbor, _ int) string { return n.ID })
	candidates, err := r.store.GetAdviceBatch(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving neighbor candidates: %w", err)
	}
	byID := lo.KeyBy(candidates, func(c content.Candidate) string { return c.ID })

	ranked := make([]content.RankedCandidate, 0, len(neighbors))
	for _, n := range neighbors {
		c, ok := byID[n.ID]
		if !ok {
			r.logger.Warn("Neighbor not resolvable in content store", "id", n.ID)
			continue
		}
		if !rules.Applicable(c.ApplicableWhen.RuleGroups, answers) {
			r.logger.Debug("Neighbor dropped by rule gate", "id", n.ID, "similarity", n.Similarity)
			continue
		}
		res := rules.ScoreGroups(c.ApplicableWhen.RuleGroups, answers)
		if c.ApplicableWhen.MinMatchScore > 0 && !rules.MeetsThreshold(res, c.ApplicableWhen.MinMatchScore) {
			r.logger.Debug("Neighbor below match threshold", "id", n.ID, "score", res.Score)
			continue
		}
		ranked = append(ranked, content.RankedCandidate{
			Candidate:         c,
			Similarity:        n.Similarity,
			MatchedConditions: res.MatchedConditions,
		})
	}

	// Rank every survivor before truncating, so an unordered neighbor
	// response cannot push a nearer candidate out of the window.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Similarity > ranked[j].Similarity
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	return ranked, nil
}

// BuildQueryText assembles the embedding query from the flow and the
// visitor's answers, in sorted key order for determinism.
func BuildQueryText(flow content.Flow, answers rules.Answers) string {
	var b strings.Builder
	b.WriteString(string(flow))
	keys := lo.Keys(answers)
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n")
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(answers[k])
	}
	return b.String()
}
