package ai

import (
	"context"

	searchModels "tabkeep/internal/domain/models/search"
)

// Intent is the classifier's verdict on whether a message needs grounding.
type Intent string

const (
	IntentSearch Intent = "search"
	IntentChat   Intent = "chat"
)

// Classifier decides whether a query needs a web search before answering.
// Callers treat a classifier failure as "chat" - the cheaper path.
type Classifier interface {
	Classify(ctx context.Context, message string) (Intent, error)
}

// SearchPlan is the planner's refinement of a raw query.
type SearchPlan struct {
	Thoughts           []PlanThought
	EnhancedQuery      string
	SuggestedPlatforms []searchModels.Platform
	Strategy           string
}

// PlanThought is one step of the planner's visible reasoning.
type PlanThought struct {
	Step      string `json:"step"`
	Reasoning string `json:"reasoning"`
	Action    string `json:"action,omitempty"`
}

// Planner refines a query and suggests platforms before the fan-out.
type Planner interface {
	Plan(ctx context.Context, query string) (*SearchPlan, error)
}

// Scorer assigns relevance scores (0.0-1.0) to a batch of result summaries.
// The returned slice has one score per input, same order.
type Scorer interface {
	ScoreRelevance(ctx context.Context, query string, summaries []string) ([]float64, error)
}

// Summarizer synthesizes search results into prose.
type Summarizer interface {
	// Synthesize writes a cited answer grounded in the top results. On error
	// the returned string carries no meaning; callers substitute their own
	// fallback text.
	Synthesize(ctx context.Context, query string, results []searchModels.NormalizedResult) (string, error)
	// SuggestQueries proposes related follow-up queries.
	SuggestQueries(ctx context.Context, query string) ([]string, error)
}

// GenerateRequest is the input to one streamed answer generation.
type GenerateRequest struct {
	SystemPrompt string
	History      []Message
	Message      string
	Mode         string // speed | balanced | quality
}

// Message is one turn of prior conversation passed to the generator.
type Message struct {
	Role    string
	Content string
}

// Generator streams an answer token by token. Each chunk is forwarded to
// onDelta in arrival order; the generator never buffers the whole answer. A
// generator failure is fatal to the request.
type Generator interface {
	StreamAnswer(ctx context.Context, req GenerateRequest, onDelta func(chunk string) error) error
}
