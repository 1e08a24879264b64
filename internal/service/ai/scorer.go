package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"tabkeep/internal/domain"
)

const scorerPrompt = `You are a search relevance judge. Rate how relevant each numbered result is to the query on a 0.0 to 1.0 scale.

Return ONLY a JSON array of numbers, one per result, in the same order.`

// ScoreRelevance rates each summary's relevance to the query. The returned
// slice is parallel to summaries. Callers batch inputs; a failure here makes
// the ranker fall back to its deterministic ordering.
func (s *Service) ScoreRelevance(ctx context.Context, query string, summaries []string) ([]float64, error) {
	if len(summaries) == 0 {
		return nil, nil
	}
	if !s.Configured() {
		return nil, &domain.ConfigurationError{Message: "OpenAI API key not configured"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n\nResults:\n", query)
	for i, summary := range summaries {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, summary)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scorerPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
		MaxTokens:   200,
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("score relevance: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("score relevance: empty completion")
	}

	var scores []float64
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Choices[0].Message.Content)), &scores); err != nil {
		return nil, fmt.Errorf("score relevance: decode scores: %w", err)
	}
	if len(scores) != len(summaries) {
		return nil, fmt.Errorf("score relevance: got %d scores for %d results", len(scores), len(summaries))
	}
	for i, score := range scores {
		if score < 0 {
			scores[i] = 0
		} else if score > 1 {
			scores[i] = 1
		}
	}
	return scores, nil
}
