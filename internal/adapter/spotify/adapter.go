package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	searchModels "tabkeep/internal/domain/models/search"
)

const (
	defaultAPIURL  = "https://api.spotify.com/v1"
	defaultAuthURL = "https://accounts.spotify.com/api/token"
)

// Adapter integrates Spotify's search API using the client-credentials flow.
// The access token is cached until one minute before expiry.
type Adapter struct {
	clientID     string
	clientSecret string
	apiURL       string
	authURL      string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewAdapter creates the Spotify platform adapter.
func NewAdapter(clientID, clientSecret string) *Adapter {
	return &Adapter{
		clientID:     clientID,
		clientSecret: clientSecret,
		apiURL:       defaultAPIURL,
		authURL:      defaultAuthURL,
		httpClient:   &http.Client{},
	}
}

// WithBaseURLs overrides the API and auth hosts (tests).
func (a *Adapter) WithBaseURLs(apiURL, authURL string) *Adapter {
	a.apiURL = apiURL
	a.authURL = authURL
	return a
}

// Platform implements search.PlatformAdapter.
func (a *Adapter) Platform() searchModels.Platform {
	return searchModels.PlatformSpotify
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

type searchResponse struct {
	Error *struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Tracks  *page[track]  `json:"tracks,omitempty"`
	Albums  *page[album]  `json:"albums,omitempty"`
	Artists *page[artist] `json:"artists,omitempty"`
}

type page[T any] struct {
	Items []T `json:"items"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

type image struct {
	URL string `json:"url"`
}

type artistRef struct {
	Name         string       `json:"name"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type track struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Popularity   float64      `json:"popularity"`
	DurationMs   float64      `json:"duration_ms"`
	Explicit     bool         `json:"explicit"`
	TrackNumber  int          `json:"track_number"`
	PreviewURL   string       `json:"preview_url"`
	ExternalURLs externalURLs `json:"external_urls"`
	Artists      []artistRef  `json:"artists"`
	Album        *struct {
		Name        string  `json:"name"`
		ReleaseDate string  `json:"release_date"`
		Images      []image `json:"images"`
	} `json:"album,omitempty"`
}

type album struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Popularity           float64      `json:"popularity"`
	TotalTracks          float64      `json:"total_tracks"`
	ReleaseDate          string       `json:"release_date"`
	ReleaseDatePrecision string       `json:"release_date_precision"`
	ExternalURLs         externalURLs `json:"external_urls"`
	Artists              []artistRef  `json:"artists"`
	Images               []image      `json:"images"`
}

type artist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Popularity   float64      `json:"popularity"`
	Genres       []string     `json:"genres"`
	ExternalURLs externalURLs `json:"external_urls"`
	Images       []image      `json:"images"`
	Followers    *struct {
		Total float64 `json:"total"`
	} `json:"followers,omitempty"`
}

// token returns a valid access token, refreshing when within a minute of
// expiry.
func (a *Adapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry) {
		return a.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(a.clientID + ":" + a.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("spotify auth request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.Error != "" {
		return "", fmt.Errorf("spotify auth failed: %s", tok.ErrorDescription)
	}

	a.accessToken = tok.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return a.accessToken, nil
}

// Search queries Spotify across tracks, albums and artists, keeping 10/5/5
// of each. Engagement maps from Spotify's 0-100 popularity.
func (a *Adapter) Search(ctx context.Context, query string, count int) ([]searchModels.NormalizedResult, error) {
	if a.clientID == "" || a.clientSecret == "" {
		return nil, fmt.Errorf("Spotify credentials not configured")
	}

	accessToken, err := a.token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track,album,artist")
	params.Set("limit", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.apiURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode spotify response: %w", err)
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("spotify API error %d: %s", payload.Error.Status, payload.Error.Message)
	}

	var results []searchModels.NormalizedResult
	if payload.Tracks != nil {
		for _, t := range capped(payload.Tracks.Items, 10) {
			results = append(results, normalizeTrack(t))
		}
	}
	if payload.Albums != nil {
		for _, al := range capped(payload.Albums.Items, 5) {
			results = append(results, normalizeAlbum(al))
		}
	}
	if payload.Artists != nil {
		for _, ar := range capped(payload.Artists.Items, 5) {
			results = append(results, normalizeArtist(ar))
		}
	}
	return results, nil
}

func capped[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func artistNames(refs []artistRef) string {
	if len(refs) == 0 {
		return "Unknown Artist"
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return strings.Join(names, ", ")
}

func normalizeTrack(t track) searchModels.NormalizedResult {
	nr := searchModels.NormalizedResult{
		ID:              "spotify-track-" + t.ID,
		Platform:        searchModels.PlatformSpotify,
		Title:           t.Name,
		URL:             t.ExternalURLs.Spotify,
		Description:     "Track by " + artistNames(t.Artists),
		EngagementScore: t.Popularity / 100,
		EngagementRaw: map[string]float64{
			"popularity":  t.Popularity,
			"duration_ms": t.DurationMs,
		},
		RelevanceScore: 0.5,
		FreshnessScore: 0.6,
		QualityScore:   0.8,
		Extras: map[string]any{
			"type":        "track",
			"previewUrl":  t.PreviewURL,
			"explicit":    t.Explicit,
			"trackNumber": t.TrackNumber,
		},
	}
	if nr.Title == "" {
		nr.Title = "Untitled Track"
	}
	if len(t.Artists) > 0 {
		nr.Author = t.Artists[0].Name
		nr.AuthorURL = t.Artists[0].ExternalURLs.Spotify
	}
	if t.Album != nil {
		nr.Extras["albumName"] = t.Album.Name
		if len(t.Album.Images) > 0 {
			nr.Thumbnail = t.Album.Images[0].URL
		}
		if released := parseReleaseDate(t.Album.ReleaseDate); released != nil {
			nr.PublishedAt = released
		}
	}
	return nr
}

func normalizeAlbum(al album) searchModels.NormalizedResult {
	popularity := al.Popularity
	if popularity == 0 {
		popularity = 50
	}
	nr := searchModels.NormalizedResult{
		ID:              "spotify-album-" + al.ID,
		Platform:        searchModels.PlatformSpotify,
		Title:           al.Name,
		URL:             al.ExternalURLs.Spotify,
		Description:     "Album by " + artistNames(al.Artists),
		EngagementScore: popularity / 100,
		EngagementRaw: map[string]float64{
			"totalTracks": al.TotalTracks,
		},
		RelevanceScore: 0.5,
		FreshnessScore: 0.6,
		QualityScore:   0.8,
		Extras: map[string]any{
			"type":                 "album",
			"releaseDate":          al.ReleaseDate,
			"releaseDatePrecision": al.ReleaseDatePrecision,
		},
	}
	if nr.Title == "" {
		nr.Title = "Untitled Album"
	}
	if len(al.Artists) > 0 {
		nr.Author = al.Artists[0].Name
		nr.AuthorURL = al.Artists[0].ExternalURLs.Spotify
	}
	if len(al.Images) > 0 {
		nr.Thumbnail = al.Images[0].URL
	}
	if released := parseReleaseDate(al.ReleaseDate); released != nil {
		nr.PublishedAt = released
	}
	return nr
}

func normalizeArtist(ar artist) searchModels.NormalizedResult {
	popularity := ar.Popularity
	if popularity == 0 {
		popularity = 50
	}
	var followers float64
	if ar.Followers != nil {
		followers = ar.Followers.Total
	}
	description := strings.Join(ar.Genres, ", ")
	if description == "" {
		description = "Artist"
	}
	nr := searchModels.NormalizedResult{
		ID:              "spotify-artist-" + ar.ID,
		Platform:        searchModels.PlatformSpotify,
		Title:           ar.Name,
		URL:             ar.ExternalURLs.Spotify,
		Description:     fmt.Sprintf("%s - %.0f followers", description, followers),
		Author:          ar.Name,
		AuthorURL:       ar.ExternalURLs.Spotify,
		EngagementScore: popularity / 100,
		EngagementRaw: map[string]float64{
			"followers":  followers,
			"popularity": ar.Popularity,
		},
		RelevanceScore: 0.5,
		FreshnessScore: 0.5,
		QualityScore:   0.8,
		Extras: map[string]any{
			"type":   "artist",
			"genres": ar.Genres,
		},
	}
	if nr.Title == "" {
		nr.Title = "Untitled Artist"
	}
	if len(ar.Images) > 0 {
		nr.Thumbnail = ar.Images[0].URL
	}
	return nr
}

// parseReleaseDate handles Spotify's variable precision (year, month, day).
func parseReleaseDate(raw string) *time.Time {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
