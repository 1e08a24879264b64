package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"tabkeep/internal/domain"
	searchModels "tabkeep/internal/domain/models/search"
	aiSvc "tabkeep/internal/domain/services/ai"
	searchSvc "tabkeep/internal/domain/services/search"
)

type fakePlanner struct {
	plan *aiSvc.SearchPlan
	err  error
}

func (f *fakePlanner) Plan(ctx context.Context, query string) (*aiSvc.SearchPlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.plan, nil
}

type fakeSummarizer struct {
	summary     string
	suggestions []string
	err         error
}

func (f *fakeSummarizer) Synthesize(ctx context.Context, query string, results []searchModels.NormalizedResult) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

func (f *fakeSummarizer) SuggestQueries(ctx context.Context, query string) ([]string, error) {
	return f.suggestions, f.err
}

func newMultiSearchService(repo *memorySessionRepo, planner aiSvc.Planner, summarizer aiSvc.Summarizer, adapters ...searchSvc.PlatformAdapter) *MultiSearchService {
	exec := NewExecutor(adapters, time.Second, nil, testLogger())
	ranker := NewAIRanker(nil, testLogger())
	var recorder *Recorder
	if repo != nil {
		recorder = NewRecorder(repo, nil, nil, testLogger())
	}
	return NewMultiSearchService(planner, summarizer, exec, ranker, recorder, testLogger())
}

func TestMultiSearchValidation(t *testing.T) {
	svc := newMultiSearchService(nil, nil, nil,
		&fakeAdapter{platform: searchModels.PlatformBrave},
	)

	tests := []struct {
		name string
		req  searchSvc.MultiSearchRequest
	}{
		{"empty query", searchSvc.MultiSearchRequest{Query: "   ", Platforms: []string{"brave"}}},
		{"no platforms", searchSvc.MultiSearchRequest{Query: "pasta"}},
		{"unknown platform", searchSvc.MultiSearchRequest{Query: "pasta", Platforms: []string{"myspace"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.req)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("Search() error = %v, want ValidationError", err)
			}
		})
	}
}

func TestMultiSearchZeroResultsCompletes(t *testing.T) {
	repo := newMemorySessionRepo()
	svc := newMultiSearchService(repo, nil, &fakeSummarizer{summary: "should not be called"},
		&fakeAdapter{platform: searchModels.PlatformBrave, err: errors.New("upstream 500")},
	)

	resp, err := svc.Search(context.Background(), searchSvc.MultiSearchRequest{
		Query:     "obscure topic",
		Platforms: []string{"brave"},
	})
	if err != nil {
		t.Fatalf("Search() error = %v (partial failure must not block)", err)
	}

	if resp.TotalResults != 0 || len(resp.Results) != 0 {
		t.Errorf("resp carries %d results, want 0", resp.TotalResults)
	}
	if resp.AISummary != "No results found for your query." {
		t.Errorf("summary = %q, want the no-results literal", resp.AISummary)
	}

	session := repo.only()
	if session == nil {
		t.Fatal("no session recorded")
	}
	if session.Status != searchModels.SessionCompleted {
		t.Errorf("session status = %s, want completed (zero results is not a failure)", session.Status)
	}
	if session.TotalResults != 0 {
		t.Errorf("session total_results = %d, want 0", session.TotalResults)
	}
	if resp.SessionID != session.ID {
		t.Errorf("resp.SessionID = %q, want %q", resp.SessionID, session.ID)
	}
}

func TestMultiSearchPartialFailureIsMetadata(t *testing.T) {
	repo := newMemorySessionRepo()
	svc := newMultiSearchService(repo, nil, &fakeSummarizer{summary: "Across platforms..."},
		&fakeAdapter{platform: searchModels.PlatformBrave, results: cannedResults(searchModels.PlatformBrave, 4, 0.9)},
		&fakeAdapter{platform: searchModels.PlatformReddit, err: errors.New("rate limited")},
	)

	resp, err := svc.Search(context.Background(), searchSvc.MultiSearchRequest{
		Query:     "pasta carbonara",
		Platforms: []string{"brave", "reddit"},
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if resp.TotalResults != 4 {
		t.Errorf("total_results = %d, want 4 (healthy platform only)", resp.TotalResults)
	}
	if resp.AISummary != "Across platforms..." {
		t.Errorf("summary = %q", resp.AISummary)
	}
	if len(resp.Platforms) != 2 {
		t.Fatalf("got %d platform statuses, want 2", len(resp.Platforms))
	}
	byPlatform := map[searchModels.Platform]searchSvc.PlatformStatus{}
	for _, st := range resp.Platforms {
		byPlatform[st.Platform] = st
	}
	if st := byPlatform[searchModels.PlatformBrave]; st.Status != searchModels.StatusOK || st.ResultCount != 4 {
		t.Errorf("brave status = %+v", st)
	}
	if st := byPlatform[searchModels.PlatformReddit]; st.Status != searchModels.StatusError || st.Error == "" {
		t.Errorf("reddit status = %+v, want error with message", st)
	}
}

func TestMultiSearchPlannerNarrowsPlatforms(t *testing.T) {
	brave := &fakeAdapter{platform: searchModels.PlatformBrave, results: cannedResults(searchModels.PlatformBrave, 2, 0.9)}
	github := &fakeAdapter{platform: searchModels.PlatformGitHub, results: cannedResults(searchModels.PlatformGitHub, 2, 0.4)}
	planner := &fakePlanner{plan: &aiSvc.SearchPlan{
		EnhancedQuery:      "golang sse server implementation",
		SuggestedPlatforms: []searchModels.Platform{searchModels.PlatformGitHub, searchModels.PlatformSpotify},
		Strategy:           "code-focused",
	}}
	svc := newMultiSearchService(nil, planner, &fakeSummarizer{summary: "ok"}, brave, github)

	resp, err := svc.Search(context.Background(), searchSvc.MultiSearchRequest{
		Query:      "go sse server",
		Platforms:  []string{"brave", "github"},
		UsePlanner: true,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	// Suggested {github, spotify} intersected with selected {brave, github}
	// leaves github only; spotify was never selected so it must not run.
	if len(resp.Platforms) != 1 || resp.Platforms[0].Platform != searchModels.PlatformGitHub {
		t.Errorf("platforms searched = %+v, want github only", resp.Platforms)
	}
	if resp.EnhancedQuery != "golang sse server implementation" {
		t.Errorf("enhanced_query = %q", resp.EnhancedQuery)
	}
}

func TestMultiSearchPlannerEmptyIntersectionKeepsSelection(t *testing.T) {
	brave := &fakeAdapter{platform: searchModels.PlatformBrave, results: cannedResults(searchModels.PlatformBrave, 2, 0.9)}
	planner := &fakePlanner{plan: &aiSvc.SearchPlan{
		SuggestedPlatforms: []searchModels.Platform{searchModels.PlatformSpotify},
	}}
	svc := newMultiSearchService(nil, planner, &fakeSummarizer{summary: "ok"}, brave)

	resp, err := svc.Search(context.Background(), searchSvc.MultiSearchRequest{
		Query:      "pasta",
		Platforms:  []string{"brave"},
		UsePlanner: true,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Platforms) != 1 || resp.Platforms[0].Platform != searchModels.PlatformBrave {
		t.Errorf("platforms = %+v, want the user's own selection", resp.Platforms)
	}
	if resp.EnhancedQuery != "" {
		t.Errorf("enhanced_query = %q, want empty when the planner offered none", resp.EnhancedQuery)
	}
}

func TestMultiSearchPlannerFailureIsNonBlocking(t *testing.T) {
	brave := &fakeAdapter{platform: searchModels.PlatformBrave, results: cannedResults(searchModels.PlatformBrave, 1, 0.9)}
	svc := newMultiSearchService(nil, &fakePlanner{err: errors.New("model down")}, &fakeSummarizer{summary: "ok"}, brave)

	resp, err := svc.Search(context.Background(), searchSvc.MultiSearchRequest{
		Query:      "pasta",
		Platforms:  []string{"brave"},
		UsePlanner: true,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.TotalResults != 1 {
		t.Errorf("total_results = %d, want 1", resp.TotalResults)
	}
}

func TestMultiSearchSessionCreateFailureBlocks(t *testing.T) {
	repo := newMemorySessionRepo()
	repo.createErr = errors.New("db down")
	svc := newMultiSearchService(repo, nil, &fakeSummarizer{summary: "ok"},
		&fakeAdapter{platform: searchModels.PlatformBrave, results: cannedResults(searchModels.PlatformBrave, 1, 0.9)},
	)

	if _, err := svc.Search(context.Background(), searchSvc.MultiSearchRequest{
		Query:     "pasta",
		Platforms: []string{"brave"},
	}); err == nil {
		t.Fatal("Search() should fail when the session cannot be created")
	}
}

func TestMultiSearchSummarizerFailureUsesFallback(t *testing.T) {
	// The fallback is built by the caller, so even an implementation that
	// returns nothing useful alongside its error yields a readable summary.
	tests := []struct {
		name       string
		summarizer *fakeSummarizer
	}{
		{"synthesis error", &fakeSummarizer{err: errors.New("model down")}},
		{"empty completion without error", &fakeSummarizer{summary: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newMultiSearchService(nil, nil, tt.summarizer,
				&fakeAdapter{platform: searchModels.PlatformBrave, results: cannedResults(searchModels.PlatformBrave, 3, 0.9)},
			)

			resp, err := svc.Search(context.Background(), searchSvc.MultiSearchRequest{
				Query:     "pasta",
				Platforms: []string{"brave"},
			})
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if resp.AISummary != "Found 3 results across your selected platforms." {
				t.Errorf("summary = %q, want the count fallback", resp.AISummary)
			}
		})
	}
}

func TestMultiSearchRecordsUser(t *testing.T) {
	repo := newMemorySessionRepo()
	svc := newMultiSearchService(repo, nil, &fakeSummarizer{summary: "ok"},
		&fakeAdapter{platform: searchModels.PlatformBrave, results: cannedResults(searchModels.PlatformBrave, 1, 0.9)},
	)

	if _, err := svc.Search(context.Background(), searchSvc.MultiSearchRequest{
		UserID:    "user-42",
		Query:     "pasta",
		Platforms: []string{"brave"},
	}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	session := repo.only()
	if session == nil {
		t.Fatal("no session recorded")
	}
	if session.UserID != "user-42" {
		t.Errorf("session user_id = %q, want user-42", session.UserID)
	}
}
