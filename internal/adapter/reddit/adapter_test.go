package reddit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	searchModels "tabkeep/internal/domain/models/search"
)

func redditServer(t *testing.T, posts []map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search.json" {
			t.Errorf("path = %s, want /search.json", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("User-Agent = %q, want %q", ua, userAgent)
		}
		children := make([]map[string]any, len(posts))
		for i, p := range posts {
			children[i] = map[string]any{"data": p}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"children": children},
		})
	}))
}

func TestSearchNormalizesPosts(t *testing.T) {
	srv := redditServer(t, []map[string]any{
		{
			"id":           "abc",
			"title":        "Carbonara without cream",
			"selftext":     "Guanciale, eggs, pecorino.",
			"permalink":    "/r/cooking/comments/abc/",
			"subreddit":    "cooking",
			"author":       "chef",
			"score":        5000.0,
			"num_comments": 120.0,
			"upvote_ratio": 0.97,
			"thumbnail":    "https://thumbs.example.com/abc.jpg",
		},
	})
	defer srv.Close()

	results, err := NewAdapter().WithBaseURL(srv.URL).Search(context.Background(), "carbonara", 8)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	r := results[0]
	if r.ID != "reddit-abc" {
		t.Errorf("ID = %s", r.ID)
	}
	if r.Platform != searchModels.PlatformReddit {
		t.Errorf("Platform = %s", r.Platform)
	}
	if r.URL != "https://www.reddit.com/r/cooking/comments/abc/" {
		t.Errorf("URL = %s", r.URL)
	}
	// 5000 upvotes against the 10K ceiling
	if r.EngagementScore != 0.5 {
		t.Errorf("EngagementScore = %v, want 0.5", r.EngagementScore)
	}
	if r.Thumbnail != "https://thumbs.example.com/abc.jpg" {
		t.Errorf("Thumbnail = %s", r.Thumbnail)
	}
	if r.EngagementRaw["comments"] != 120 {
		t.Errorf("EngagementRaw = %v", r.EngagementRaw)
	}
}

func TestSearchFiltersNSFWAndCaps(t *testing.T) {
	posts := []map[string]any{
		{"id": "p1", "title": "ok one", "subreddit": "golang", "score": 10.0},
		{"id": "nsfw", "title": "hidden", "subreddit": "golang", "score": 99999.0, "over_18": true},
		{"id": "p2", "title": "ok two", "subreddit": "golang", "score": 10.0},
		{"id": "p3", "title": "ok three", "subreddit": "golang", "score": 10.0},
	}
	srv := redditServer(t, posts)
	defer srv.Close()

	results, err := NewAdapter().WithBaseURL(srv.URL).Search(context.Background(), "go", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (count cap after NSFW filter)", len(results))
	}
	if results[0].ID != "reddit-p1" || results[1].ID != "reddit-p2" {
		t.Errorf("results = %s, %s; the NSFW post should be skipped", results[0].ID, results[1].ID)
	}
}

func TestSearchDescriptionAndThumbnailFallbacks(t *testing.T) {
	srv := redditServer(t, []map[string]any{
		{
			"id":        "bare",
			"title":     "link post",
			"subreddit": "programming",
			"score":     50.0,
			"thumbnail": "self",
		},
	})
	defer srv.Close()

	results, err := NewAdapter().WithBaseURL(srv.URL).Search(context.Background(), "go", 8)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	r := results[0]
	if r.Description != "Posted in r/programming" {
		t.Errorf("Description = %q", r.Description)
	}
	if r.Thumbnail != "" {
		t.Errorf("Thumbnail = %q, want empty for placeholder values", r.Thumbnail)
	}
}

func TestSearchDescriptionTruncatesOnRuneBoundary(t *testing.T) {
	// Byte 300 lands inside the first multi-byte character, so a plain byte
	// slice would split it and emit invalid UTF-8.
	selftext := strings.Repeat("a", 299) + "日本語の説明"
	srv := redditServer(t, []map[string]any{
		{"id": "long", "title": "wall of text", "subreddit": "japan", "score": 10.0, "selftext": selftext},
	})
	defer srv.Close()

	results, err := NewAdapter().WithBaseURL(srv.URL).Search(context.Background(), "go", 8)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	d := results[0].Description
	if len(d) > 300 {
		t.Errorf("Description is %d bytes, want at most 300", len(d))
	}
	if !utf8.ValidString(d) {
		t.Errorf("Description is not valid UTF-8: %q", d)
	}
	if !strings.HasPrefix(selftext, d) {
		t.Errorf("truncation altered the text: %q", d)
	}
}

func TestSearchEngagementClampedToOne(t *testing.T) {
	srv := redditServer(t, []map[string]any{
		{"id": "viral", "title": "front page", "subreddit": "all", "score": 250000.0},
	})
	defer srv.Close()

	results, err := NewAdapter().WithBaseURL(srv.URL).Search(context.Background(), "go", 8)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results[0].EngagementScore != 1 {
		t.Errorf("EngagementScore = %v, want clamped to 1", results[0].EngagementScore)
	}
}

func TestSearchUpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewAdapter().WithBaseURL(srv.URL).Search(context.Background(), "go", 8); err == nil {
		t.Fatal("Search() should fail on a non-200 status")
	}
}
