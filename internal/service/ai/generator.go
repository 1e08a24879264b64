package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"tabkeep/internal/domain"
	aiSvc "tabkeep/internal/domain/services/ai"
)

// StreamAnswer streams a chat completion, forwarding each non-empty delta to
// onDelta in arrival order. An onDelta error aborts the stream (the client
// went away); a provider error after partial output is still returned so the
// caller can close the stream with a terminal error event.
func (s *Service) StreamAnswer(ctx context.Context, req aiSvc.GenerateRequest, onDelta func(chunk string) error) error {
	if !s.Configured() {
		return &domain.ConfigurationError{Message: "OpenAI API key not configured"}
	}

	cfg := configFor(req.Mode)
	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.SystemPrompt,
	})
	for _, m := range req.History {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		Stream:      true,
	})
	if err != nil {
		return &domain.GenerationError{Message: "failed to start answer generation", Cause: err}
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &domain.GenerationError{Message: "answer stream interrupted", Cause: err}
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		if err := onDelta(delta); err != nil {
			return fmt.Errorf("forward answer chunk: %w", err)
		}
	}
}
