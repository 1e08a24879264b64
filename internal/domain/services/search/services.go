package search

import (
	"context"

	searchModels "tabkeep/internal/domain/models/search"
)

// FanOutExecutor invokes every requested platform adapter concurrently and
// settles all of them: the returned slice has exactly one PlatformResult per
// requested platform, in request order, regardless of how many adapters fail.
// The executor itself never fails; individual failures are data, not errors.
type FanOutExecutor interface {
	Run(ctx context.Context, platforms []searchModels.Platform, query string) []searchModels.PlatformResult
}

// Ranker merges adapter outputs into one ordered list. The returned slice is
// the same multiset, reordered, with FinalScore populated on every element.
// A ranking failure is absorbed by a deterministic fallback and never
// surfaced to the caller.
type Ranker interface {
	Rank(ctx context.Context, query string, results []searchModels.NormalizedResult) []searchModels.NormalizedResult
}

// EventSink receives stream events in emission order. The SSE handler
// implements it over the wire; tests implement it in memory.
type EventSink interface {
	Send(ev searchModels.StreamEvent) error
}

// ChatRequest is the inbound payload of the answer streaming pipeline.
// UserID is never read from the body; the handler fills it from the verified
// token so callers cannot impersonate each other.
type ChatRequest struct {
	UserID           string        `json:"-"`
	Message          string        `json:"message"`
	Platforms        []string      `json:"platforms,omitempty"`
	ForceSearch      bool          `json:"forceSearch,omitempty"`
	History          []ChatMessage `json:"history,omitempty"`
	OptimizationMode string        `json:"optimizationMode,omitempty"`
}

// ChatMessage is one prior exchange supplied by the caller. Only the most
// recent ten are used for grounding.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MultiSearchRequest is the inbound payload of the non-streaming
// multi-platform search operation. UserID is filled from the verified token,
// never from the body.
type MultiSearchRequest struct {
	UserID    string   `json:"-"`
	Query     string   `json:"query"`
	Platforms []string `json:"platforms"`
	// UsePlanner lets the AI planner refine the query and platform set
	// before the fan-out.
	UsePlanner bool `json:"usePlanner,omitempty"`
}

// PlatformStatus summarizes one adapter invocation for the caller: partial
// platform failures are reported as metadata, never as a blocking error.
type PlatformStatus struct {
	Platform    searchModels.Platform     `json:"platform"`
	Status      searchModels.ResultStatus `json:"status"`
	ResultCount int                       `json:"result_count"`
	Error       string                    `json:"error,omitempty"`
	ElapsedMs   int64                     `json:"duration_ms"`
}

// MultiSearchResponse is the outcome of one multi-platform search.
type MultiSearchResponse struct {
	SessionID     string                          `json:"session_id"`
	Query         string                          `json:"query"`
	EnhancedQuery string                          `json:"enhanced_query,omitempty"`
	Results       []searchModels.NormalizedResult `json:"results"`
	Platforms     []PlatformStatus                `json:"platforms"`
	TotalResults  int                             `json:"total_results"`
	AISummary     string                          `json:"ai_summary"`
}
