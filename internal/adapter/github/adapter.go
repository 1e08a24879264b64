package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	searchModels "tabkeep/internal/domain/models/search"
)

const (
	defaultBaseURL = "https://api.github.com"

	// maxStars normalizes engagement relative to a 100K-star repository.
	maxStars = 100000
)

// Adapter integrates GitHub's repository search API. A token raises the rate
// limit but is optional.
type Adapter struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewAdapter creates the GitHub platform adapter.
func NewAdapter(token string) *Adapter {
	return &Adapter{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
}

// WithBaseURL overrides the API host (tests).
func (a *Adapter) WithBaseURL(base string) *Adapter {
	a.baseURL = base
	return a
}

// Platform implements search.PlatformAdapter.
func (a *Adapter) Platform() searchModels.Platform {
	return searchModels.PlatformGitHub
}

type repoSearchResponse struct {
	Message string `json:"message,omitempty"`
	Items   []repo `json:"items"`
}

type repo struct {
	ID          int64    `json:"id"`
	FullName    string   `json:"full_name"`
	Description string   `json:"description"`
	HTMLURL     string   `json:"html_url"`
	Language    string   `json:"language"`
	Homepage    string   `json:"homepage"`
	Archived    bool     `json:"archived"`
	Topics      []string `json:"topics"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
	Stars       float64  `json:"stargazers_count"`
	Forks       float64  `json:"forks_count"`
	Watchers    float64  `json:"watchers_count"`
	OpenIssues  float64  `json:"open_issues_count"`
	License     *struct {
		Name string `json:"name"`
	} `json:"license,omitempty"`
	Owner *struct {
		Login     string `json:"login"`
		AvatarURL string `json:"avatar_url"`
		HTMLURL   string `json:"html_url"`
	} `json:"owner,omitempty"`
	DefaultBranch string `json:"default_branch"`
}

// Search queries GitHub repositories and normalizes results. Engagement is
// star-based; freshness keys off the last push.
func (a *Adapter) Search(ctx context.Context, query string, count int) ([]searchModels.NormalizedResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("per_page", strconv.Itoa(count))
	params.Set("sort", "stars")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/search/repositories?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var payload repoSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if payload.Message != "" {
			return nil, fmt.Errorf("github API %d: %s", resp.StatusCode, payload.Message)
		}
		return nil, fmt.Errorf("github API returned status %d", resp.StatusCode)
	}

	now := time.Now()
	results := make([]searchModels.NormalizedResult, 0, len(payload.Items))
	for _, r := range payload.Items {
		engagement := r.Stars / maxStars
		if engagement > 1 {
			engagement = 1
		}

		nr := searchModels.NormalizedResult{
			ID:          fmt.Sprintf("github-%d", r.ID),
			Platform:    searchModels.PlatformGitHub,
			Title:       r.FullName,
			URL:         r.HTMLURL,
			Description: r.Description,
			EngagementRaw: map[string]float64{
				"stars":    r.Stars,
				"forks":    r.Forks,
				"watchers": r.Watchers,
				"issues":   r.OpenIssues,
			},
			EngagementScore: engagement,
			RelevanceScore:  0.5,
			FreshnessScore:  0.5,
			QualityScore:    0.8,
			Extras: map[string]any{
				"language":      r.Language,
				"topics":        r.Topics,
				"homepage":      r.Homepage,
				"isArchived":    r.Archived,
				"defaultBranch": r.DefaultBranch,
			},
		}
		if nr.Title == "" {
			nr.Title = "Untitled Repository"
		}
		if nr.Description == "" {
			nr.Description = "No description available"
		}
		if r.License != nil {
			nr.Extras["license"] = r.License.Name
		}
		if r.Owner != nil {
			nr.Author = r.Owner.Login
			nr.AuthorURL = r.Owner.HTMLURL
			nr.Thumbnail = r.Owner.AvatarURL
		}
		if created, err := time.Parse(time.RFC3339, r.CreatedAt); err == nil {
			nr.PublishedAt = &created
		}
		if updated, err := time.Parse(time.RFC3339, r.UpdatedAt); err == nil {
			nr.FreshnessScore = searchModels.FreshnessByAge(updated, now, [4]time.Duration{
				30 * 24 * time.Hour,
				90 * 24 * time.Hour,
				180 * 24 * time.Hour,
				365 * 24 * time.Hour,
			})
		}
		results = append(results, nr)
	}
	return results, nil
}
