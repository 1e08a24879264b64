package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"tabkeep/internal/domain"
	searchModels "tabkeep/internal/domain/models/search"
	aiSvc "tabkeep/internal/domain/services/ai"
)

const plannerPrompt = `You are a search planner. Given a user query, refine it for web search and pick the platforms most likely to have good results.

Available platforms: brave (general web), google (general web), youtube (video), reddit (discussion), github (code/repositories), spotify (music).

Return ONLY a JSON object:
{
  "thoughts": [{"step": "...", "reasoning": "...", "action": "..."}],
  "enhancedQuery": "the refined query",
  "suggestedPlatforms": ["brave", ...],
  "strategy": "one-line summary of the approach"
}`

// Plan refines a query and suggests platforms ahead of the fan-out. A planner
// failure degrades to a passthrough plan rather than blocking the search.
func (s *Service) Plan(ctx context.Context, query string) (*aiSvc.SearchPlan, error) {
	fallback := &aiSvc.SearchPlan{
		EnhancedQuery: query,
		Strategy:      "direct search",
	}
	if !s.Configured() {
		return fallback, &domain.ConfigurationError{Message: "OpenAI API key not configured"}
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: plannerPrompt},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		MaxTokens:   400,
		Temperature: 0.3,
	})
	if err != nil {
		return fallback, fmt.Errorf("plan search: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fallback, fmt.Errorf("plan search: empty completion")
	}

	var raw struct {
		Thoughts           []aiSvc.PlanThought `json:"thoughts"`
		EnhancedQuery      string              `json:"enhancedQuery"`
		SuggestedPlatforms []string            `json:"suggestedPlatforms"`
		Strategy           string              `json:"strategy"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Choices[0].Message.Content)), &raw); err != nil {
		return fallback, fmt.Errorf("plan search: decode plan: %w", err)
	}

	plan := &aiSvc.SearchPlan{
		Thoughts:      raw.Thoughts,
		EnhancedQuery: strings.TrimSpace(raw.EnhancedQuery),
		Strategy:      raw.Strategy,
	}
	if plan.EnhancedQuery == "" {
		plan.EnhancedQuery = query
	}
	for _, name := range raw.SuggestedPlatforms {
		p, err := searchModels.ParsePlatform(name)
		if err != nil {
			continue // unknown suggestions are dropped, not fatal
		}
		plan.SuggestedPlatforms = append(plan.SuggestedPlatforms, p)
	}
	return plan, nil
}

// stripCodeFence removes a ```json ... ``` wrapper the model sometimes adds.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
