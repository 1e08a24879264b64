package brave

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"tabkeep/internal/cache"
)

const (
	defaultBaseURL = "https://api.search.brave.com/res/v1"
	userAgent      = "tabkeep/1.0"
)

// Client wraps the Brave Search API. Responses are cached for the cache's
// TTL window so repeated queries don't burn API quota.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *cache.QueryCache
}

// NewClient creates a Brave API client. The cache may be nil to disable
// response caching.
func NewClient(apiKey string, queryCache *cache.QueryCache) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
		cache:      queryCache,
	}
}

// get performs one Brave API request, consulting the cache first. The
// per-request deadline comes from ctx; the fan-out executor owns it.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	cacheKey := cache.Key("brave"+endpoint, params.Encode())
	if c.cache != nil {
		if body, ok := c.cache.Get(cacheKey); ok {
			return body, nil
		}
	}

	reqURL, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("X-Subscription-Token", c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave request: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Detail != "" {
			return nil, fmt.Errorf("brave API %d: %s", resp.StatusCode, apiErr.Error.Detail)
		}
		return nil, fmt.Errorf("brave API returned status %d", resp.StatusCode)
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, body)
	}
	return body, nil
}
