package ai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"tabkeep/internal/domain"
	aiSvc "tabkeep/internal/domain/services/ai"
)

const classifierPrompt = `You are a query classifier. Analyze the user's message and determine if it requires a web search.

Return ONLY one word: "search" or "chat"

Use "search" for:
- Questions about facts, news, current events
- "What is", "How to", "Who is", "When did" questions
- Requests for information, tutorials, guides
- Product/service lookups
- Technical questions needing documentation
- Anything requiring up-to-date or factual information
- Weather or location-based questions

Use "chat" for:
- Greetings (hi, hello, hey, what's up)
- Casual conversation
- Personal opinions or advice
- Creative writing requests
- Math calculations
- Code writing/debugging (unless asking about a specific library/API)
- Roleplay or hypothetical scenarios
- Thank you messages
- Simple yes/no personal questions
- Questions about current time/date (you know this already)`

// Classify decides whether a message needs web grounding. Any failure,
// including an unparseable reply, resolves to chat so a flaky classifier
// never burns search quota.
func (s *Service) Classify(ctx context.Context, message string) (aiSvc.Intent, error) {
	if !s.Configured() {
		return aiSvc.IntentChat, &domain.ConfigurationError{Message: "OpenAI API key not configured"}
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		return aiSvc.IntentChat, fmt.Errorf("classify intent: %w", err)
	}
	if len(resp.Choices) == 0 {
		return aiSvc.IntentChat, fmt.Errorf("classify intent: empty completion")
	}

	verdict := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	s.logger.Debug("classified query intent", "intent", verdict)
	if verdict == "search" {
		return aiSvc.IntentSearch, nil
	}
	return aiSvc.IntentChat, nil
}
