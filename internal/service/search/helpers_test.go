package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	searchModels "tabkeep/internal/domain/models/search"
	"tabkeep/internal/domain/repositories"
	aiSvc "tabkeep/internal/domain/services/ai"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeAdapter settles with canned results or an error, optionally after a
// delay. The delay respects context cancellation like a real HTTP call.
type fakeAdapter struct {
	platform searchModels.Platform
	results  []searchModels.NormalizedResult
	err      error
	delay    time.Duration
}

func (f *fakeAdapter) Platform() searchModels.Platform { return f.platform }

func (f *fakeAdapter) Search(ctx context.Context, query string, count int) ([]searchModels.NormalizedResult, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func cannedResults(platform searchModels.Platform, n int, engagement float64) []searchModels.NormalizedResult {
	results := make([]searchModels.NormalizedResult, n)
	for i := range results {
		results[i] = searchModels.NormalizedResult{
			ID:              fmt.Sprintf("%s-%d", platform, i),
			Platform:        platform,
			Title:           fmt.Sprintf("%s result %d", platform, i),
			URL:             fmt.Sprintf("https://example.com/%s/%d", platform, i),
			EngagementScore: engagement - float64(i)*0.01,
			FreshnessScore:  0.5,
		}
	}
	return results
}

// fakeScorer returns fixed relevance scores or fails every batch.
type fakeScorer struct {
	scores []float64
	err    error
	calls  int
}

func (f *fakeScorer) ScoreRelevance(ctx context.Context, query string, summaries []string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]float64, len(summaries))
	for i := range out {
		if i < len(f.scores) {
			out[i] = f.scores[i]
		} else {
			out[i] = 0.5
		}
	}
	return out, nil
}

// fakeClassifier returns a fixed intent.
type fakeClassifier struct {
	intent aiSvc.Intent
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, message string) (aiSvc.Intent, error) {
	if f.err != nil {
		return aiSvc.IntentChat, f.err
	}
	return f.intent, nil
}

// fakeGenerator streams canned chunks, or fails after a prefix.
type fakeGenerator struct {
	chunks  []string
	err     error
	lastReq aiSvc.GenerateRequest
}

func (f *fakeGenerator) StreamAnswer(ctx context.Context, req aiSvc.GenerateRequest, onDelta func(string) error) error {
	f.lastReq = req
	for _, chunk := range f.chunks {
		if err := onDelta(chunk); err != nil {
			return err
		}
	}
	return f.err
}

// memorySink records every event it receives.
type memorySink struct {
	events []searchModels.StreamEvent
}

func (m *memorySink) Send(ev searchModels.StreamEvent) error {
	m.events = append(m.events, ev)
	return nil
}

func (m *memorySink) byType(t searchModels.EventType) []searchModels.StreamEvent {
	var out []searchModels.StreamEvent
	for _, ev := range m.events {
		if ev.EventType() == t {
			out = append(out, ev)
		}
	}
	return out
}

// fakeTxManager runs the function inline, counting invocations. Rollback
// behavior belongs to the driver, not the fake; a function error simply
// propagates.
type fakeTxManager struct {
	calls int
	err   error
}

func (f *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(ctx)
}

// memorySessionRepo is an in-memory SessionRepository.
type memorySessionRepo struct {
	mu           sync.Mutex
	sessions     map[string]*searchModels.SearchSession
	createErr    error
	setStatusErr error
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]*searchModels.SearchSession)}
}

func (r *memorySessionRepo) Create(ctx context.Context, session *searchModels.SearchSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	session.ID = uuid.New().String()
	session.CreatedAt = time.Now()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *memorySessionRepo) SetStatus(ctx context.Context, id string, status searchModels.SessionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.setStatusErr != nil {
		return r.setStatusErr
	}
	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	s.Status = status
	return nil
}

func (r *memorySessionRepo) Complete(ctx context.Context, id string, platformsSearched []searchModels.Platform, totalResults int, aiSummary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	now := time.Now()
	s.Status = searchModels.SessionCompleted
	s.PlatformsSearched = platformsSearched
	s.TotalResults = totalResults
	s.AISummary = aiSummary
	s.CompletedAt = &now
	return nil
}

func (r *memorySessionRepo) Fail(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	now := time.Now()
	s.Status = searchModels.SessionFailed
	s.CompletedAt = &now
	return nil
}

func (r *memorySessionRepo) Get(ctx context.Context, id string) (*searchModels.SearchSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s not found", id)
	}
	copied := *s
	return &copied, nil
}

func (r *memorySessionRepo) List(ctx context.Context, limit int) ([]searchModels.SearchSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []searchModels.SearchSession
	for _, s := range r.sessions {
		out = append(out, *s)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// only returns the single stored session; test helper for single-session
// scenarios.
func (r *memorySessionRepo) only() *searchModels.SearchSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		return s
	}
	return nil
}
