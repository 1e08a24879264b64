package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	searchModels "tabkeep/internal/domain/models/search"
)

const (
	defaultBaseURL = "https://www.reddit.com"
	userAgent      = "tabkeep-search/1.0"

	// maxUpvotes normalizes engagement relative to a 10K-upvote post.
	maxUpvotes = 10000
)

// Adapter integrates Reddit's public JSON search API. No credentials needed;
// the API allows 60 requests/minute with a distinct User-Agent.
type Adapter struct {
	baseURL    string
	httpClient *http.Client
}

// NewAdapter creates the Reddit platform adapter.
func NewAdapter() *Adapter {
	return &Adapter{
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
	return searchModels.PlatformReddit
}

type listing struct {
	Error   int    `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Data    *struct {
		Children []struct {
			Data *post `json:"data"`
		} `json:"children"`
	} `json:"data,omitempty"`
}

type post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Score       float64 `json:"score"`
	NumComments float64 `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
	CreatedUTC  float64 `json:"created_utc"`
	Thumbnail   string  `json:"thumbnail"`
	Over18      bool    `json:"over_18"`
	PostHint    string  `json:"post_hint"`
	IsVideo     bool    `json:"is_video"`
	Domain      string  `json:"domain"`
}

// Search queries Reddit and normalizes posts. NSFW posts are filtered out.
func (a *Adapter) Search(ctx context.Context, query string, count int) ([]searchModels.NormalizedResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(count+5)) // headroom for the NSFW filter
	params.Set("sort", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit API returned status %d", resp.StatusCode)
	}

	var payload listing
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode reddit response: %w", err)
	}
	if payload.Error != 0 {
		return nil, fmt.Errorf("reddit API error %d: %s", payload.Error, payload.Message)
	}
	if payload.Data == nil {
		return nil, nil
	}

	now := time.Now()
	results := make([]searchModels.NormalizedResult, 0, count)
	for _, child := range payload.Data.Children {
		p := child.Data
		if p == nil || p.Over18 {
			continue
		}
		if len(results) >= count {
			break
		}

		created := time.Unix(int64(p.CreatedUTC), 0)
		engagement := p.Score / maxUpvotes
		if engagement > 1 {
			engagement = 1
		}
		if engagement < 0 {
			engagement = 0
		}

		description := p.Selftext
		if len(description) > 300 {
			// Cut on a rune boundary; a byte slice can split a multi-byte
			// character and emit invalid UTF-8.
			cut := 300
			for cut > 0 && !utf8.RuneStart(description[cut]) {
				cut--
			}
			description = description[:cut]
		}
		if description == "" {
			description = "Posted in r/" + p.Subreddit
		}

		thumbnail := p.Thumbnail
		if thumbnail == "self" || thumbnail == "default" || !strings.HasPrefix(thumbnail, "http") {
			thumbnail = ""
		}

		nr := searchModels.NormalizedResult{
			ID:          "reddit-" + p.ID,
			Platform:    searchModels.PlatformReddit,
			Title:       p.Title,
			URL:         "https://www.reddit.com" + p.Permalink,
			Description: description,
			Author:      p.Author,
			AuthorURL:   "https://www.reddit.com/user/" + p.Author,
			PublishedAt: &created,
			Thumbnail:   thumbnail,
			EngagementRaw: map[string]float64{
				"upvotes":     p.Score,
				"comments":    p.NumComments,
				"upvoteRatio": p.UpvoteRatio,
			},
			EngagementScore: engagement,
			RelevanceScore:  0.5,
			FreshnessScore: searchModels.FreshnessByAge(created, now, [4]time.Duration{
				24 * time.Hour,
				7 * 24 * time.Hour,
				30 * 24 * time.Hour,
				365 * 24 * time.Hour,
			}),
			QualityScore: 0.7,
			Extras: map[string]any{
				"subreddit":    p.Subreddit,
				"subredditUrl": "https://www.reddit.com/r/" + p.Subreddit,
				"postHint":     p.PostHint,
				"isVideo":      p.IsVideo,
				"domain":       p.Domain,
			},
		}
		if nr.Title == "" {
			nr.Title = "Untitled Post"
		}
		results = append(results, nr)
	}
	return results, nil
}
