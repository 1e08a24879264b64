// Package ai wraps the OpenAI chat-completions API behind the domain's
// Classifier, Planner, Scorer, Summarizer and Generator interfaces. One
// Service instance implements all five; every call is a single completion
// request with no retries.
package ai

import (
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// Optimization modes accepted from clients.
const (
	ModeSpeed    = "speed"
	ModeBalanced = "balanced"
	ModeQuality  = "quality"
)

// modelConfig selects the model and sampling temperature for a mode.
type modelConfig struct {
	Model       string
	Temperature float32
}

var modeConfigs = map[string]modelConfig{
	ModeSpeed:    {Model: openai.GPT4oMini, Temperature: 0.3},
	ModeBalanced: {Model: openai.GPT4oMini, Temperature: 0.7},
	ModeQuality:  {Model: openai.GPT4o, Temperature: 0.8},
}

// configFor resolves a mode string, falling back to balanced for anything
// unrecognized.
func configFor(mode string) modelConfig {
	if cfg, ok := modeConfigs[mode]; ok {
		return cfg
	}
	return modeConfigs[ModeBalanced]
}

// Service is the OpenAI-backed AI collaborator.
type Service struct {
	client *openai.Client
	logger *slog.Logger
}

// NewService creates the AI service. An empty apiKey yields a service whose
// Configured method reports false; callers gate AI paths on that.
func NewService(apiKey string, logger *slog.Logger) *Service {
	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	return &Service{client: client, logger: logger}
}

// Configured reports whether an API key was provided.
func (s *Service) Configured() bool {
	return s.client != nil
}
