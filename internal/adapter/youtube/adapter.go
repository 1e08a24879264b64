package youtube

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

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Adapter integrates the YouTube Data API v3 search endpoint.
type Adapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewAdapter creates the YouTube platform adapter.
func NewAdapter(apiKey string) *Adapter {
	return &Adapter{
		apiKey:     apiKey,
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
	return searchModels.PlatformYouTube
}

type searchResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title                string `json:"title"`
			Description          string `json:"description"`
			ChannelID            string `json:"channelId"`
			ChannelTitle         string `json:"channelTitle"`
			PublishedAt          string `json:"publishedAt"`
			LiveBroadcastContent string `json:"liveBroadcastContent"`
			Thumbnails           struct {
				High    *thumb `json:"high,omitempty"`
				Default *thumb `json:"default,omitempty"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type thumb struct {
	URL string `json:"url"`
}

// Search queries YouTube and normalizes video results. Engagement is
// position-based: the search endpoint carries no view counts.
func (a *Adapter) Search(ctx context.Context, query string, count int) ([]searchModels.NormalizedResult, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("YouTube API key not configured")
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(count))
	params.Set("q", query)
	params.Set("key", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode youtube response: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("youtube API error %d: %s", payload.Error.Code, payload.Error.Message)
	}

	now := time.Now()
	results := make([]searchModels.NormalizedResult, 0, len(payload.Items))
	for i, item := range payload.Items {
		videoID := item.ID.VideoID
		if videoID == "" {
			continue
		}
		snippet := item.Snippet

		nr := searchModels.NormalizedResult{
			ID:          "youtube-" + videoID,
			Platform:    searchModels.PlatformYouTube,
			Title:       snippet.Title,
			URL:         "https://www.youtube.com/watch?v=" + videoID,
			Description: snippet.Description,
			Author:      snippet.ChannelTitle,
			AuthorURL:   "https://www.youtube.com/channel/" + snippet.ChannelID,
			EngagementRaw: map[string]float64{
				"position": float64(i + 1),
			},
			EngagementScore: positionScore(i),
			RelevanceScore:  0.5,
			FreshnessScore:  0.5,
			QualityScore:    0.7,
			Extras: map[string]any{
				"videoId":              videoID,
				"channelId":            snippet.ChannelID,
				"liveBroadcastContent": snippet.LiveBroadcastContent,
			},
		}
		if nr.Title == "" {
			nr.Title = "Untitled Video"
		}
		if nr.Author == "" {
			nr.Author = "Unknown Channel"
		}
		if t := snippet.Thumbnails.High; t != nil {
			nr.Thumbnail = t.URL
		} else if t := snippet.Thumbnails.Default; t != nil {
			nr.Thumbnail = t.URL
		}
		if published, err := time.Parse(time.RFC3339, snippet.PublishedAt); err == nil {
			nr.PublishedAt = &published
			nr.FreshnessScore = searchModels.FreshnessByAge(published, now, [4]time.Duration{
				7 * 24 * time.Hour,
				30 * 24 * time.Hour,
				90 * 24 * time.Hour,
				365 * 24 * time.Hour,
			})
		}
		results = append(results, nr)
	}
	return results, nil
}

func positionScore(index int) float64 {
	s := 1.0 - float64(index)*0.05
	if s < 0 {
		return 0
	}
	return s
}
