package google

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

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// Adapter integrates the Google Custom Search JSON API.
type Adapter struct {
	apiKey     string
	engineID   string
	baseURL    string
	httpClient *http.Client
}

// NewAdapter creates the Google platform adapter.
func NewAdapter(apiKey, engineID string) *Adapter {
	return &Adapter{
		apiKey:     apiKey,
		engineID:   engineID,
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
	return searchModels.PlatformGoogle
}

type searchResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Items []struct {
		Title        string `json:"title"`
		Link         string `json:"link"`
		Snippet      string `json:"snippet"`
		DisplayLink  string `json:"displayLink"`
		FormattedURL string `json:"formattedUrl"`
		PageMap      *struct {
			CSEThumbnail []struct {
				Src string `json:"src"`
			} `json:"cse_thumbnail,omitempty"`
			CSEImage []struct {
				Src string `json:"src"`
			} `json:"cse_image,omitempty"`
			MetaTags []map[string]string `json:"metatags,omitempty"`
		} `json:"pagemap,omitempty"`
	} `json:"items"`
}

// Search queries Google Custom Search and normalizes results. Engagement is
// position-based, decaying 0.1 per rank.
func (a *Adapter) Search(ctx context.Context, query string, count int) ([]searchModels.NormalizedResult, error) {
	if a.apiKey == "" || a.engineID == "" {
		return nil, fmt.Errorf("Google search credentials not configured")
	}

	params := url.Values{}
	params.Set("key", a.apiKey)
	params.Set("cx", a.engineID)
	params.Set("q", query)
	if count > 0 && count <= 10 {
		params.Set("num", strconv.Itoa(count))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode google response: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("google API error %d: %s", payload.Error.Code, payload.Error.Message)
	}

	results := make([]searchModels.NormalizedResult, 0, len(payload.Items))
	for i, item := range payload.Items {
		host := hostnameOf(item.Link)

		nr := searchModels.NormalizedResult{
			ID:          fmt.Sprintf("google-%d-%d", i, time.Now().UnixMilli()),
			Platform:    searchModels.PlatformGoogle,
			Title:       item.Title,
			URL:         item.Link,
			Description: item.Snippet,
			Author:      host,
			AuthorURL:   "https://" + host,
			EngagementRaw: map[string]float64{
				"position": float64(i + 1),
			},
			EngagementScore: positionScore(i),
			RelevanceScore:  0.5,
			FreshnessScore:  0.7,
			QualityScore:    0.8,
			Extras: map[string]any{
				"displayLink":  item.DisplayLink,
				"formattedUrl": item.FormattedURL,
			},
		}
		if nr.Title == "" {
			nr.Title = "Untitled"
		}
		if pm := item.PageMap; pm != nil {
			if len(pm.CSEThumbnail) > 0 {
				nr.Thumbnail = pm.CSEThumbnail[0].Src
			} else if len(pm.CSEImage) > 0 {
				nr.Thumbnail = pm.CSEImage[0].Src
			}
			if len(pm.MetaTags) > 0 {
				if raw, ok := pm.MetaTags[0]["article:published_time"]; ok {
					if published, err := time.Parse(time.RFC3339, raw); err == nil {
						nr.PublishedAt = &published
					}
				}
			}
		}
		results = append(results, nr)
	}
	return results, nil
}

func positionScore(index int) float64 {
	s := 1.0 - float64(index)*0.1
	if s < 0 {
		return 0
	}
	return s
}

func hostnameOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return u.Hostname()
}
