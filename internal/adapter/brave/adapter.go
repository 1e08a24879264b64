package brave

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	searchModels "tabkeep/internal/domain/models/search"
)

// Adapter integrates Brave web search as a fan-out platform and exposes the
// video/image endpoints the answer pipeline uses for media enrichment.
type Adapter struct {
	client *Client
}

// NewAdapter creates the Brave platform adapter.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// Platform implements search.PlatformAdapter.
func (a *Adapter) Platform() searchModels.Platform {
	return searchModels.PlatformBrave
}

// Search runs a Brave web search and normalizes the results. Engagement is
// position-based: Brave does not expose per-result metrics.
func (a *Adapter) Search(ctx context.Context, query string, count int) ([]searchModels.NormalizedResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("search_lang", "en")
	params.Set("safesearch", "moderate")
	params.Set("text_decorations", "false")

	body, err := a.client.get(ctx, "/web/search", params)
	if err != nil {
		return nil, err
	}

	var payload webSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode brave response: %w", err)
	}

	if payload.Web == nil {
		return nil, nil
	}

	results := make([]searchModels.NormalizedResult, 0, len(payload.Web.Results))
	for i, r := range payload.Web.Results {
		host := hostnameOf(r.URL)
		nr := searchModels.NormalizedResult{
			ID:          fmt.Sprintf("brave-%d-%s", i+1, host),
			Platform:    searchModels.PlatformBrave,
			Title:       r.Title,
			URL:         r.URL,
			Description: r.Description,
			Author:      host,
			AuthorURL:   "https://" + host,
			EngagementRaw: map[string]float64{
				"position": float64(i + 1),
			},
			EngagementScore: positionScore(i, 0.05),
			RelevanceScore:  0.5,
			FreshnessScore:  0.7,
			QualityScore:    0.8,
		}
		if r.Profile != nil {
			nr.Thumbnail = r.Profile.Img
		}
		if r.Age != "" {
			nr.Extras = map[string]any{"age": r.Age}
		}
		results = append(results, nr)
	}
	return results, nil
}

// News returns the news block riding on a web search response, capped at
// three entries.
func (a *Adapter) News(ctx context.Context, query string) ([]searchModels.SourceRef, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", "8")
	params.Set("search_lang", "en")
	params.Set("safesearch", "moderate")

	body, err := a.client.get(ctx, "/web/search", params)
	if err != nil {
		return nil, err
	}

	var payload webSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode brave response: %w", err)
	}
	if payload.News == nil {
		return nil, nil
	}

	items := payload.News.Results
	if len(items) > 3 {
		items = items[:3]
	}
	news := make([]searchModels.SourceRef, 0, len(items))
	for _, n := range items {
		ref := searchModels.SourceRef{
			Title:       n.Title,
			URL:         n.URL,
			Description: n.Description,
		}
		if n.MetaURL != nil {
			ref.Platform = n.MetaURL.Hostname
		}
		if n.Thumbnail != nil {
			ref.Thumbnail = n.Thumbnail.Src
		}
		news = append(news, ref)
	}
	return news, nil
}

// VideoSearch implements search.MediaSearcher.
func (a *Adapter) VideoSearch(ctx context.Context, query string, count int) ([]searchModels.VideoRef, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("safesearch", "moderate")

	body, err := a.client.get(ctx, "/videos/search", params)
	if err != nil {
		return nil, err
	}

	var payload videoSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode brave videos: %w", err)
	}

	videos := make([]searchModels.VideoRef, 0, len(payload.Results))
	for _, v := range payload.Results {
		ref := searchModels.VideoRef{Title: v.Title, URL: v.URL}
		if v.Thumbnail != nil {
			ref.Thumbnail = v.Thumbnail.Src
		}
		if v.Video != nil {
			ref.Duration = v.Video.Duration
		}
		if v.MetaURL != nil {
			ref.Publisher = v.MetaURL.Hostname
		}
		videos = append(videos, ref)
	}
	return videos, nil
}

// ImageSearch implements search.MediaSearcher.
func (a *Adapter) ImageSearch(ctx context.Context, query string, count int) ([]searchModels.ImageRef, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	params.Set("safesearch", "moderate")

	body, err := a.client.get(ctx, "/images/search", params)
	if err != nil {
		return nil, err
	}

	var payload imageSearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode brave images: %w", err)
	}

	images := make([]searchModels.ImageRef, 0, len(payload.Results))
	for _, img := range payload.Results {
		ref := searchModels.ImageRef{Title: img.Title, URL: img.URL, Source: img.Source}
		if img.Thumbnail != nil {
			ref.Thumbnail = img.Thumbnail.Src
		} else if img.Properties != nil {
			ref.Thumbnail = img.Properties.URL
		}
		images = append(images, ref)
	}
	return images, nil
}

// positionScore decays linearly with result position.
func positionScore(index int, step float64) float64 {
	s := 1.0 - float64(index)*step
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
