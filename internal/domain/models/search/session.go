package search

import "time"

// SessionStatus is the lifecycle state of one persisted search.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionSearching SessionStatus = "searching"
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionFailed
}

// SearchSession is the persisted record of one query's lifecycle, from
// submission to completion or failure. It is mutated only by the request that
// created it, at phase boundaries, via its owning SessionHandle.
type SearchSession struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id,omitempty"`
	Query             string        `json:"query"`
	SelectedPlatforms []Platform    `json:"selected_platforms"`
	Status            SessionStatus `json:"status"`
	PlatformsSearched []Platform    `json:"platforms_searched,omitempty"`
	TotalResults      int           `json:"total_results"`
	AISummary         string        `json:"ai_summary,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
}
