package search

import (
	"context"
	"fmt"
	"log/slog"

	"tabkeep/internal/domain"
	searchModels "tabkeep/internal/domain/models/search"
	aiSvc "tabkeep/internal/domain/services/ai"
	searchSvc "tabkeep/internal/domain/services/search"
)

// noResultsSummary is the literal summary written when a search completes
// with nothing to rank. Zero results is a completed search, not a failure.
const noResultsSummary = "No results found for your query."

// MultiSearchService runs the non-streaming multi-platform search: optional
// planning, fan-out, ranking, summarization and session recording in one
// call.
type MultiSearchService struct {
	planner    aiSvc.Planner
	summarizer aiSvc.Summarizer
	executor   searchSvc.FanOutExecutor
	ranker     searchSvc.Ranker
	recorder   *Recorder
	logger     *slog.Logger
}

// NewMultiSearchService wires the multi-platform search operation. planner
// and summarizer are optional; recorder may be nil when sessions are not
// persisted.
func NewMultiSearchService(
	planner aiSvc.Planner,
	summarizer aiSvc.Summarizer,
	executor searchSvc.FanOutExecutor,
	ranker searchSvc.Ranker,
	recorder *Recorder,
	logger *slog.Logger,
) *MultiSearchService {
	return &MultiSearchService{
		planner:    planner,
		summarizer: summarizer,
		executor:   executor,
		ranker:     ranker,
		recorder:   recorder,
		logger:     logger,
	}
}

// Search executes one multi-platform search. Partial platform failures are
// reported as per-platform metadata; only validation and session-create
// failures surface as errors.
func (s *MultiSearchService) Search(ctx context.Context, req searchSvc.MultiSearchRequest) (*searchSvc.MultiSearchResponse, error) {
	parsed, err := searchModels.ParsePlatforms(req.Platforms)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}
	query, err := searchModels.NewQuery(req.Query, parsed)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	platforms := query.Platforms()
	searchQuery := query.Text()
	enhancedQuery := ""

	if req.UsePlanner && s.planner != nil {
		plan, err := s.planner.Plan(ctx, query.Text())
		if err != nil {
			s.logger.Warn("search planning failed, using query as-is", "error", err)
		} else {
			// The planner narrows the user's set, never widens it; an empty
			// intersection falls back to the user's own selection.
			if narrowed := intersect(plan.SuggestedPlatforms, platforms); len(narrowed) > 0 {
				platforms = narrowed
			}
			if plan.EnhancedQuery != "" && plan.EnhancedQuery != query.Text() {
				searchQuery = plan.EnhancedQuery
				enhancedQuery = plan.EnhancedQuery
			}
		}
	}

	var handle *SessionHandle
	if s.recorder != nil {
		handle, err = s.recorder.Begin(ctx, req.UserID, query.Text(), platforms)
		if err != nil {
			return nil, fmt.Errorf("begin search session: %w", err)
		}
	}

	outcomes := s.executor.Run(ctx, platforms, searchQuery)
	if handle != nil {
		handle.RecordOutcomes(ctx, outcomes)
	}

	merged := mergeOK(outcomes)
	ranked := s.ranker.Rank(ctx, searchQuery, merged)

	summary := noResultsSummary
	if len(ranked) > 0 {
		summary = s.summarize(ctx, query.Text(), ranked)
	}

	if handle != nil {
		handle.Complete(ctx, CompleteParams{
			PlatformsSearched: platforms,
			TotalResults:      len(ranked),
			AISummary:         summary,
		})
	}

	resp := &searchSvc.MultiSearchResponse{
		Query:         query.Text(),
		EnhancedQuery: enhancedQuery,
		Results:       ranked,
		Platforms:     platformStatuses(outcomes),
		TotalResults:  len(ranked),
		AISummary:     summary,
	}
	if handle != nil {
		resp.SessionID = handle.ID()
	}
	return resp, nil
}

// summarize asks the summarizer for a cited answer. The fallback text is
// built here, not trusted from a failing implementation, so the session always
// records something readable.
func (s *MultiSearchService) summarize(ctx context.Context, query string, ranked []searchModels.NormalizedResult) string {
	fallback := fmt.Sprintf("Found %d results across your selected platforms.", len(ranked))
	if s.summarizer == nil {
		return fallback
	}
	summary, err := s.summarizer.Synthesize(ctx, query, ranked)
	if err != nil || summary == "" {
		s.logger.Warn("summary synthesis failed, using fallback", "error", err)
		return fallback
	}
	return summary
}

// intersect returns the suggested platforms that the user also selected,
// preserving the suggestion order.
func intersect(suggested, selected []searchModels.Platform) []searchModels.Platform {
	allowed := make(map[searchModels.Platform]struct{}, len(selected))
	for _, p := range selected {
		allowed[p] = struct{}{}
	}
	var out []searchModels.Platform
	for _, p := range suggested {
		if _, ok := allowed[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

func platformStatuses(outcomes []searchModels.PlatformResult) []searchSvc.PlatformStatus {
	statuses := make([]searchSvc.PlatformStatus, len(outcomes))
	for i, o := range outcomes {
		statuses[i] = searchSvc.PlatformStatus{
			Platform:    o.Platform,
			Status:      o.Status,
			ResultCount: len(o.Results),
			Error:       o.ErrorMessage,
			ElapsedMs:   o.ElapsedMs,
		}
	}
	return statuses
}
