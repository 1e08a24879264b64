package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	searchModels "tabkeep/internal/domain/models/search"
	"tabkeep/internal/domain/repositories"
)

// Recorder persists search session lifecycles. It hands each request a
// SessionHandle that owns all further transitions for that session; the
// repository behind it stays a passive sink.
type Recorder struct {
	sessions repositories.SessionRepository
	outcomes repositories.PlatformResultRepository
	tx       repositories.TransactionManager
	logger   *slog.Logger
}

// NewRecorder builds the session recorder. outcomes may be nil when
// per-adapter rows are not persisted; tx may be nil when the repository has no
// transaction support.
func NewRecorder(sessions repositories.SessionRepository, outcomes repositories.PlatformResultRepository, tx repositories.TransactionManager, logger *slog.Logger) *Recorder {
	return &Recorder{sessions: sessions, outcomes: outcomes, tx: tx, logger: logger}
}

// Begin creates a session in pending, immediately moves it to searching, and
// returns the handle that owns it. With a transaction manager the create and
// the searching transition commit atomically, so a half-created session never
// becomes visible. Without one the searching transition is best-effort. A
// create failure aborts the caller's search either way. userID may be empty
// when the request carried no credentials.
func (r *Recorder) Begin(ctx context.Context, userID, query string, platforms []searchModels.Platform) (*SessionHandle, error) {
	session := &searchModels.SearchSession{
		UserID:            userID,
		Query:             query,
		SelectedPlatforms: platforms,
		Status:            searchModels.SessionPending,
	}

	if r.tx != nil {
		err := r.tx.ExecTx(ctx, func(txCtx context.Context) error {
			if err := r.sessions.Create(txCtx, session); err != nil {
				return err
			}
			return r.sessions.SetStatus(txCtx, session.ID, searchModels.SessionSearching)
		})
		if err != nil {
			return nil, fmt.Errorf("create search session: %w", err)
		}
	} else {
		if err := r.sessions.Create(ctx, session); err != nil {
			return nil, fmt.Errorf("create search session: %w", err)
		}
		if err := r.sessions.SetStatus(ctx, session.ID, searchModels.SessionSearching); err != nil {
			r.logger.Warn("failed to mark session searching", "session_id", session.ID, "error", err)
		}
	}

	return &SessionHandle{
		id:       session.ID,
		recorder: r,
	}, nil
}

// Get retrieves one session.
func (r *Recorder) Get(ctx context.Context, id string) (*searchModels.SearchSession, error) {
	return r.sessions.Get(ctx, id)
}

// List retrieves the most recent sessions, newest first.
func (r *Recorder) List(ctx context.Context, limit int) ([]searchModels.SearchSession, error) {
	return r.sessions.List(ctx, limit)
}

// Outcomes retrieves the per-adapter rows stored for a session.
func (r *Recorder) Outcomes(ctx context.Context, sessionID string) ([]searchModels.PlatformResult, error) {
	if r.outcomes == nil {
		return nil, nil
	}
	return r.outcomes.ListBySession(ctx, sessionID)
}

// CompleteParams are the final tallies written when a session completes.
type CompleteParams struct {
	PlatformsSearched []searchModels.Platform
	TotalResults      int
	AISummary         string
}

// SessionHandle is the single writer for one session. It is returned only to
// the request that created the session, and its terminal transitions are
// one-shot: after the first Complete or Fail every later transition is a
// no-op. Persistence failures on terminal transitions are logged, never
// propagated.
type SessionHandle struct {
	id       string
	recorder *Recorder
	closed   atomic.Bool
}

// ID returns the session's identifier.
func (h *SessionHandle) ID() string { return h.id }

// RecordOutcomes stores the settled per-adapter rows. Best-effort.
func (h *SessionHandle) RecordOutcomes(ctx context.Context, results []searchModels.PlatformResult) {
	if h.recorder.outcomes == nil {
		return
	}
	for i := range results {
		if err := h.recorder.outcomes.Save(ctx, h.id, &results[i]); err != nil {
			h.recorder.logger.Warn("failed to save platform result",
				"session_id", h.id,
				"platform", results[i].Platform,
				"error", err,
			)
		}
	}
}

// Complete marks the session completed with its final tallies.
func (h *SessionHandle) Complete(ctx context.Context, params CompleteParams) {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	err := h.recorder.sessions.Complete(ctx, h.id, params.PlatformsSearched, params.TotalResults, params.AISummary)
	if err != nil {
		h.recorder.logger.Warn("failed to complete session", "session_id", h.id, "error", err)
	}
}

// Fail marks the session failed.
func (h *SessionHandle) Fail(ctx context.Context) {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	if err := h.recorder.sessions.Fail(ctx, h.id); err != nil {
		h.recorder.logger.Warn("failed to mark session failed", "session_id", h.id, "error", err)
	}
}
