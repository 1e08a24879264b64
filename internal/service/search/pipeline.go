package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tabkeep/internal/config"
	"tabkeep/internal/domain"
	searchModels "tabkeep/internal/domain/models/search"
	aiSvc "tabkeep/internal/domain/services/ai"
	searchSvc "tabkeep/internal/domain/services/search"
)

// NewsSearcher fetches headline entries for the sources frame. The Brave
// adapter provides it.
type NewsSearcher interface {
	News(ctx context.Context, query string) ([]searchModels.SourceRef, error)
}

// Pipeline drives one answer stream: classify, optionally search, then
// generate token by token. Single pass, no retries; every request ends in
// exactly one terminal event.
type Pipeline struct {
	classifier aiSvc.Classifier
	generator  aiSvc.Generator
	executor   searchSvc.FanOutExecutor
	ranker     searchSvc.Ranker
	recorder   *Recorder
	media      searchSvc.MediaSearcher
	news       NewsSearcher
	logger     *slog.Logger

	now func() time.Time
}

// NewPipeline wires the answer streaming pipeline. recorder, media and news
// are optional; a nil recorder skips session persistence entirely.
func NewPipeline(
	classifier aiSvc.Classifier,
	generator aiSvc.Generator,
	executor searchSvc.FanOutExecutor,
	ranker searchSvc.Ranker,
	recorder *Recorder,
	media searchSvc.MediaSearcher,
	news NewsSearcher,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		classifier: classifier,
		generator:  generator,
		executor:   executor,
		ranker:     ranker,
		recorder:   recorder,
		media:      media,
		news:       news,
		logger:     logger,
		now:        time.Now,
	}
}

// emitter pairs a sink with the ordering guard so every frame is checked
// before it goes on the wire.
type emitter struct {
	sink  searchSvc.EventSink
	guard searchModels.StreamGuard
}

func (e *emitter) send(ev searchModels.StreamEvent) error {
	if err := e.guard.Admit(ev.EventType()); err != nil {
		return fmt.Errorf("illegal stream emission: %w", err)
	}
	return e.sink.Send(ev)
}

// Stream runs the full pipeline for one chat request, writing every frame to
// sink. The returned error reports transport-level failure only (client gone,
// ordering bug); pipeline failures are delivered as error events instead.
func (p *Pipeline) Stream(ctx context.Context, req searchSvc.ChatRequest, sink searchSvc.EventSink) error {
	em := &emitter{sink: sink}

	searchUsed := req.ForceSearch
	if !req.ForceSearch {
		if err := em.send(searchModels.NewThinkingEvent("Understanding your message...")); err != nil {
			return err
		}
		intent, err := p.classifier.Classify(ctx, req.Message)
		if err != nil {
			// Unclassifiable messages take the cheaper path.
			p.logger.Warn("intent classification failed, defaulting to chat", "error", err)
		}
		searchUsed = intent == aiSvc.IntentSearch
	}

	var (
		sourcesCount int
		systemPrompt string
		handle       *SessionHandle
		answer       strings.Builder
	)

	if searchUsed {
		platforms := p.resolvePlatforms(req.Platforms)

		if p.recorder != nil {
			var err error
			handle, err = p.recorder.Begin(ctx, req.UserID, req.Message, platforms)
			if err != nil {
				p.logger.Error("aborting search, session create failed", "error", err)
				return em.send(searchModels.NewErrorEvent("failed to start search session"))
			}
		}

		if err := em.send(searchModels.NewThinkingEvent("Searching the web...")); err != nil {
			return err
		}

		outcomes := p.executor.Run(ctx, platforms, req.Message)
		if handle != nil {
			handle.RecordOutcomes(ctx, outcomes)
		}

		merged := mergeOK(outcomes)
		ranked := p.ranker.Rank(ctx, req.Message, merged)
		sources := sourceRefs(ranked)
		sourcesCount = len(sources)

		videos, images := p.fetchMedia(ctx, req.Message)
		news := p.fetchNews(ctx, req.Message)

		if len(sources) > 0 || len(videos) > 0 || len(images) > 0 {
			if err := em.send(searchModels.NewSourcesEvent(sources, videos, images, news)); err != nil {
				if handle != nil {
					handle.Fail(ctx)
				}
				return err
			}
		}

		// Nothing to ground on is not an error: answer conversationally.
		if len(ranked) > 0 {
			systemPrompt = p.groundedPrompt(ranked)
		} else {
			systemPrompt = p.conversationalPrompt()
		}

		if err := em.send(searchModels.NewThinkingEvent("Analyzing results...")); err != nil {
			if handle != nil {
				handle.Fail(ctx)
			}
			return err
		}

		// Complete is a no-op if the handle was already failed.
		defer func() {
			if handle != nil {
				handle.Complete(ctx, CompleteParams{
					PlatformsSearched: platforms,
					TotalResults:      len(ranked),
					AISummary:         answer.String(),
				})
			}
		}()
	} else {
		systemPrompt = p.conversationalPrompt()
	}

	genReq := aiSvc.GenerateRequest{
		SystemPrompt: systemPrompt,
		History:      recentHistory(req.History),
		Message:      req.Message,
		Mode:         req.OptimizationMode,
	}

	var sendErr error
	err := p.generator.StreamAnswer(ctx, genReq, func(chunk string) error {
		if err := em.send(searchModels.NewContentEvent(chunk)); err != nil {
			sendErr = err
			return err
		}
		answer.WriteString(chunk)
		return nil
	})
	if err != nil {
		if handle != nil {
			handle.Fail(ctx)
		}
		if sendErr != nil {
			return sendErr // transport failed; nothing more can be delivered
		}
		p.logger.Error("answer generation failed", "error", err)
		return em.send(searchModels.NewErrorEvent(generationMessage(err)))
	}

	return em.send(searchModels.NewDoneEvent(searchUsed, sourcesCount))
}

// resolvePlatforms parses the caller's platform list, defaulting to Brave
// (the general web backend) when none or only invalid names were given.
func (p *Pipeline) resolvePlatforms(names []string) []searchModels.Platform {
	platforms, err := searchModels.ParsePlatforms(names)
	if err != nil || len(platforms) == 0 {
		return []searchModels.Platform{searchModels.PlatformBrave}
	}
	return platforms
}

func (p *Pipeline) fetchMedia(ctx context.Context, query string) ([]searchModels.VideoRef, []searchModels.ImageRef) {
	if p.media == nil {
		return nil, nil
	}
	filter := mediaFilterFor(query)

	var videos []searchModels.VideoRef
	if filter.Videos {
		var err error
		if videos, err = p.media.VideoSearch(ctx, query, 6); err != nil {
			p.logger.Debug("video enrichment failed", "error", err)
			videos = nil
		}
	}

	var images []searchModels.ImageRef
	if filter.Images {
		var err error
		if images, err = p.media.ImageSearch(ctx, query, 6); err != nil {
			p.logger.Debug("image enrichment failed", "error", err)
			images = nil
		}
	}
	return videos, images
}

func (p *Pipeline) fetchNews(ctx context.Context, query string) []searchModels.SourceRef {
	if p.news == nil {
		return nil
	}
	news, err := p.news.News(ctx, query)
	if err != nil {
		p.logger.Debug("news enrichment failed", "error", err)
		return nil
	}
	return news
}

func (p *Pipeline) groundedPrompt(ranked []searchModels.NormalizedResult) string {
	top := ranked
	if len(top) > config.TopKGroundingResults {
		top = top[:config.TopKGroundingResults]
	}
	var context strings.Builder
	for i, r := range top {
		fmt.Fprintf(&context, "[%d] %s\n%s\nURL: %s\n\n", i+1, r.Title, r.Description, r.URL)
	}

	return fmt.Sprintf(`You are TabKeep AI, a helpful assistant with real-time web search capabilities.

Current date and time: %s

When answering:
- Reference sources using [1], [2], etc. when citing specific information
- Be conversational and helpful
- Use markdown formatting for better readability
- ALWAYS use the current date/time provided above when answering time-related questions

Web Search Results:
%s`, p.currentDateTime(), context.String())
}

func (p *Pipeline) conversationalPrompt() string {
	return fmt.Sprintf(`You are TabKeep AI, a friendly and helpful assistant.

Current date and time: %s

Guidelines:
- Be conversational and natural
- Be helpful and informative
- Use markdown formatting when appropriate
- For greetings, respond warmly and ask how you can help
- You can help with coding, writing, math, advice, and general questions
- ALWAYS use the current date/time provided above when answering time-related questions
- If asked about the current year, date, or time, use the information above`, p.currentDateTime())
}

func (p *Pipeline) currentDateTime() string {
	return p.now().Format("Monday, January 2, 2006, 3:04 PM MST")
}

// mergeOK flattens the successful outcomes, preserving platform request order
// then each adapter's own ordering.
func mergeOK(outcomes []searchModels.PlatformResult) []searchModels.NormalizedResult {
	var merged []searchModels.NormalizedResult
	for _, outcome := range outcomes {
		if outcome.OK() {
			merged = append(merged, outcome.Results...)
		}
	}
	return merged
}

func sourceRefs(ranked []searchModels.NormalizedResult) []searchModels.SourceRef {
	refs := make([]searchModels.SourceRef, 0, len(ranked))
	for _, r := range ranked {
		refs = append(refs, searchModels.SourceRef{
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
			Platform:    string(r.Platform),
			Thumbnail:   r.Thumbnail,
		})
	}
	return refs
}

// recentHistory keeps the most recent conversation turns and converts them to
// the generator's message shape.
func recentHistory(history []searchSvc.ChatMessage) []aiSvc.Message {
	if len(history) > config.MaxHistoryMessages {
		history = history[len(history)-config.MaxHistoryMessages:]
	}
	msgs := make([]aiSvc.Message, len(history))
	for i, h := range history {
		msgs[i] = aiSvc.Message{Role: h.Role, Content: h.Content}
	}
	return msgs
}

// generationMessage extracts the caller-facing message from a generation
// failure without leaking provider internals.
func generationMessage(err error) string {
	var genErr *domain.GenerationError
	if errors.As(err, &genErr) {
		return genErr.Message
	}
	var cfgErr *domain.ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr.Message
	}
	return "answer generation failed"
}
