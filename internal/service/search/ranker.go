package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"tabkeep/internal/config"
	"tabkeep/internal/domain"
	searchModels "tabkeep/internal/domain/models/search"
	aiSvc "tabkeep/internal/domain/services/ai"
)

// Final score weights. Quality feeds the adapters' defaults but does not
// participate in the blend; the original weighed only these three.
const (
	weightRelevance  = 0.50
	weightEngagement = 0.30
	weightFreshness  = 0.20
)

// AIRanker orders merged results by AI-judged relevance blended with
// engagement and freshness. Scoring failures degrade per batch to a neutral
// relevance, and a total failure degrades to a deterministic engagement
// ordering. The caller never sees either fallback. Implements search.Ranker.
type AIRanker struct {
	scorer aiSvc.Scorer
	logger *slog.Logger
}

// NewAIRanker builds the ranker. scorer may be nil when no AI collaborator is
// configured; the fallback ordering then always applies.
func NewAIRanker(scorer aiSvc.Scorer, logger *slog.Logger) *AIRanker {
	return &AIRanker{scorer: scorer, logger: logger}
}

// Rank returns the same multiset reordered, FinalScore populated on every
// element. The input slice is not mutated.
func (r *AIRanker) Rank(ctx context.Context, query string, results []searchModels.NormalizedResult) []searchModels.NormalizedResult {
	if len(results) == 0 {
		return nil
	}

	ranked := make([]searchModels.NormalizedResult, len(results))
	copy(ranked, results)

	if err := r.scoreRelevance(ctx, query, ranked); err != nil {
		r.logger.Warn("AI relevance scoring unavailable, using engagement order", "error", err)
		return fallbackOrder(ranked)
	}

	for i := range ranked {
		ranked[i].FinalScore = finalScore(ranked[i])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})
	return ranked
}

// scoreRelevance fills RelevanceScore in place, batching the AI calls. A
// failed batch gets a neutral 0.5; ErrRankingUnavailable is returned only
// when no batch scored at all.
func (r *AIRanker) scoreRelevance(ctx context.Context, query string, results []searchModels.NormalizedResult) error {
	if r.scorer == nil {
		return fmt.Errorf("%w: no relevance scorer configured", domain.ErrRankingUnavailable)
	}

	scoredAny := false
	for start := 0; start < len(results); start += config.RelevanceBatchSize {
		end := start + config.RelevanceBatchSize
		if end > len(results) {
			end = len(results)
		}
		batch := results[start:end]

		summaries := make([]string, len(batch))
		for i, res := range batch {
			summaries[i] = fmt.Sprintf("[%s] %s - %s", res.Platform, res.Title, res.Description)
		}

		scores, err := r.scorer.ScoreRelevance(ctx, query, summaries)
		if err != nil {
			r.logger.Warn("relevance batch failed, applying neutral score",
				"batch_start", start,
				"batch_size", len(batch),
				"error", err,
			)
			for i := range batch {
				batch[i].RelevanceScore = 0.5
			}
			continue
		}
		for i := range batch {
			batch[i].RelevanceScore = scores[i]
		}
		scoredAny = true
	}

	if !scoredAny {
		return fmt.Errorf("%w: every relevance batch failed", domain.ErrRankingUnavailable)
	}
	return nil
}

func finalScore(r searchModels.NormalizedResult) float64 {
	return weightRelevance*r.RelevanceScore +
		weightEngagement*r.EngagementScore +
		weightFreshness*r.FreshnessScore
}

// fallbackOrder sorts by engagement descending, preserving arrival order for
// ties, and stamps the engagement score as the final score so every element
// still carries a populated ordering key. Idempotent on stable input.
func fallbackOrder(results []searchModels.NormalizedResult) []searchModels.NormalizedResult {
	for i := range results {
		results[i].FinalScore = results[i].EngagementScore
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].EngagementScore > results[j].EngagementScore
	})
	return results
}
