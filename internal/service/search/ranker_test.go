package search

import (
	"context"
	"errors"
	"testing"

	"tabkeep/internal/domain"
	searchModels "tabkeep/internal/domain/models/search"
)

func TestRankBlendsScores(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{0.2, 0.9}}
	ranker := NewAIRanker(scorer, testLogger())

	input := []searchModels.NormalizedResult{
		{ID: "a", EngagementScore: 0.9, FreshnessScore: 0.5},
		{ID: "b", EngagementScore: 0.1, FreshnessScore: 0.5},
	}
	ranked := ranker.Rank(context.Background(), "pasta", input)

	if len(ranked) != 2 {
		t.Fatalf("got %d results, want 2", len(ranked))
	}
	// b: 0.5*0.9 + 0.3*0.1 + 0.2*0.5 = 0.58; a: 0.5*0.2 + 0.3*0.9 + 0.2*0.5 = 0.47
	if ranked[0].ID != "b" {
		t.Errorf("top result = %s, want b (relevance should dominate)", ranked[0].ID)
	}
	for _, r := range ranked {
		if r.FinalScore == 0 {
			t.Errorf("result %s has zero FinalScore", r.ID)
		}
	}
}

func TestRankFallsBackWhenScoringFails(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("model unavailable")}
	ranker := NewAIRanker(scorer, testLogger())

	input := []searchModels.NormalizedResult{
		{ID: "low", EngagementScore: 0.1},
		{ID: "high", EngagementScore: 0.8},
		{ID: "mid", EngagementScore: 0.5},
	}
	ranked := ranker.Rank(context.Background(), "pasta", input)

	if len(ranked) != 3 {
		t.Fatalf("fallback dropped results: got %d, want 3", len(ranked))
	}
	wantOrder := []string{"high", "mid", "low"}
	for i, id := range wantOrder {
		if ranked[i].ID != id {
			t.Errorf("ranked[%d] = %s, want %s", i, ranked[i].ID, id)
		}
		if ranked[i].FinalScore == 0 {
			t.Errorf("fallback left %s without a FinalScore", ranked[i].ID)
		}
	}
}

func TestRankNilScorerFallsBack(t *testing.T) {
	ranker := NewAIRanker(nil, testLogger())
	input := []searchModels.NormalizedResult{
		{ID: "a", EngagementScore: 0.3},
		{ID: "b", EngagementScore: 0.7},
	}
	ranked := ranker.Rank(context.Background(), "pasta", input)
	if ranked[0].ID != "b" {
		t.Errorf("top = %s, want b", ranked[0].ID)
	}
}

func TestScoreRelevanceSignalsRankingUnavailable(t *testing.T) {
	input := []searchModels.NormalizedResult{{ID: "a"}, {ID: "b"}}

	tests := []struct {
		name   string
		ranker *AIRanker
	}{
		{"nil scorer", NewAIRanker(nil, testLogger())},
		{"every batch fails", NewAIRanker(&fakeScorer{err: errors.New("down")}, testLogger())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ranker.scoreRelevance(context.Background(), "pasta", input)
			if !errors.Is(err, domain.ErrRankingUnavailable) {
				t.Errorf("scoreRelevance() error = %v, want ErrRankingUnavailable", err)
			}
		})
	}
}

func TestFallbackOrderingIsIdempotent(t *testing.T) {
	scorer := &fakeScorer{err: errors.New("down")}
	ranker := NewAIRanker(scorer, testLogger())

	input := []searchModels.NormalizedResult{
		{ID: "a", EngagementScore: 0.5},
		{ID: "b", EngagementScore: 0.5},
		{ID: "c", EngagementScore: 0.9},
	}

	first := ranker.Rank(context.Background(), "pasta", input)
	second := ranker.Rank(context.Background(), "pasta", first)

	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("ordering changed between passes at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
	// Equal engagement keeps arrival order (stable sort).
	if first[1].ID != "a" || first[2].ID != "b" {
		t.Errorf("ties not stable: %s, %s", first[1].ID, first[2].ID)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	scorer := &fakeScorer{scores: []float64{1.0, 0.0}}
	ranker := NewAIRanker(scorer, testLogger())

	input := []searchModels.NormalizedResult{
		{ID: "a", EngagementScore: 0.1},
		{ID: "b", EngagementScore: 0.9},
	}
	_ = ranker.Rank(context.Background(), "pasta", input)

	if input[0].ID != "a" || input[1].ID != "b" {
		t.Error("Rank reordered the caller's slice")
	}
}
