package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"tabkeep/internal/config"
	"tabkeep/internal/domain"
	searchModels "tabkeep/internal/domain/models/search"
)

const synthesizePromptTemplate = `You are TabKeep AI, an intelligent search assistant. Based on the search results provided, give a helpful, accurate answer to the user's query.

Guidelines:
- Be concise but comprehensive
- Cite sources using [1], [2], etc. when referencing specific information
- If the search results don't fully answer the query, acknowledge limitations
- Provide actionable insights when relevant
- Use markdown formatting for better readability

Search Results:
%s`

// Synthesize writes a cited answer grounded in the top ranked results. The
// caller substitutes its own fallback text on error.
func (s *Service) Synthesize(ctx context.Context, query string, results []searchModels.NormalizedResult) (string, error) {
	if !s.Configured() {
		return "", &domain.ConfigurationError{Message: "OpenAI API key not configured"}
	}

	top := results
	if len(top) > config.TopKGroundingResults {
		top = top[:config.TopKGroundingResults]
	}
	var b strings.Builder
	for i, r := range top {
		fmt.Fprintf(&b, "[%d] %s\n%s\nSource: %s\n\n", i+1, r.Title, r.Description, r.URL)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: fmt.Sprintf(synthesizePromptTemplate, b.String())},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		MaxTokens:   500,
		Temperature: 0.5,
	})
	if err != nil {
		return "", fmt.Errorf("synthesize summary: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("synthesize summary: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

// SuggestQueries proposes related follow-up queries. Failures yield an empty
// list; suggestions are never worth surfacing an error for.
func (s *Service) SuggestQueries(ctx context.Context, query string) ([]string, error) {
	if !s.Configured() {
		return nil, nil
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "Generate 4 related search queries based on the user's query. Return only a JSON array of strings.",
			},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
		MaxTokens:   100,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("suggest queries: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, nil
	}

	var suggestions []string
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Choices[0].Message.Content)), &suggestions); err != nil {
		return nil, fmt.Errorf("suggest queries: decode suggestions: %w", err)
	}
	return suggestions, nil
}
