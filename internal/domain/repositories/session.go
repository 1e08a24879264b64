package repositories

import (
	"context"

	searchModels "tabkeep/internal/domain/models/search"
)

// SessionRepository persists search session lifecycles. It is a passive
// sink: transitions are issued only by the request that created the session
// (single-writer discipline, enforced by the recorder's SessionHandle).
type SessionRepository interface {
	// Create inserts a new session and fills in its ID and CreatedAt.
	Create(ctx context.Context, session *searchModels.SearchSession) error

	// SetStatus moves a session to a non-terminal status.
	SetStatus(ctx context.Context, id string, status searchModels.SessionStatus) error

	// Complete marks a session completed with its final tallies.
	Complete(ctx context.Context, id string, platformsSearched []searchModels.Platform, totalResults int, aiSummary string) error

	// Fail marks a session failed.
	Fail(ctx context.Context, id string) error

	// Get retrieves one session by ID.
	Get(ctx context.Context, id string) (*searchModels.SearchSession, error)

	// List retrieves the most recent sessions, newest first.
	List(ctx context.Context, limit int) ([]searchModels.SearchSession, error)
}

// PlatformResultRepository persists the per-adapter outcome rows recorded
// alongside a session.
type PlatformResultRepository interface {
	// Save stores one adapter invocation outcome for a session.
	Save(ctx context.Context, sessionID string, result *searchModels.PlatformResult) error

	// ListBySession retrieves every stored outcome for a session.
	ListBySession(ctx context.Context, sessionID string) ([]searchModels.PlatformResult, error)
}
