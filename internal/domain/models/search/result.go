package search

import "time"

// ResultStatus tags the outcome of one adapter invocation.
type ResultStatus string

const (
	StatusOK      ResultStatus = "ok"
	StatusError   ResultStatus = "error"
	StatusTimeout ResultStatus = "timeout"
)

// NormalizedResult is the common shape every adapter maps its backend's native
// payload into. ID, Platform, Title and URL are populated unconditionally;
// everything else is best-effort. FinalScore stays zero until ranking.
type NormalizedResult struct {
	ID          string     `json:"id"`
	Platform    Platform   `json:"platform"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Author      string     `json:"author,omitempty"`
	AuthorURL   string     `json:"author_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`

	EngagementRaw   map[string]float64 `json:"engagement_raw,omitempty"`
	EngagementScore float64            `json:"engagement_score"`
	RelevanceScore  float64            `json:"relevance_score"`
	FreshnessScore  float64            `json:"freshness_score"`
	QualityScore    float64            `json:"quality_score"`
	FinalScore      float64            `json:"final_score"`

	Extras map[string]any `json:"extras,omitempty"`
}

// PlatformResult is the settled outcome of one adapter invocation: tagged
// success, error or timeout, never an exception. Immutable after creation.
type PlatformResult struct {
	Platform     Platform           `json:"platform"`
	Status       ResultStatus       `json:"status"`
	Results      []NormalizedResult `json:"results"`
	ErrorMessage string             `json:"error,omitempty"`
	ElapsedMs    int64              `json:"duration_ms"`
}

// OK reports whether the invocation succeeded.
func (pr PlatformResult) OK() bool { return pr.Status == StatusOK }

// FreshnessByAge converts an age into the tiered freshness score the ranker
// expects. The tier boundaries are shared by several adapters.
func FreshnessByAge(published time.Time, now time.Time, tiers [4]time.Duration) float64 {
	if published.IsZero() {
		return 0.5
	}
	age := now.Sub(published)
	switch {
	case age <= tiers[0]:
		return 1.0
	case age <= tiers[1]:
		return 0.8
	case age <= tiers[2]:
		return 0.6
	case age <= tiers[3]:
		return 0.4
	default:
		return 0.5
	}
}
