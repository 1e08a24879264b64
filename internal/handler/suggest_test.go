package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	searchModels "tabkeep/internal/domain/models/search"
)

type stubSummarizer struct {
	suggestions []string
	err         error
}

func (s *stubSummarizer) Synthesize(ctx context.Context, query string, results []searchModels.NormalizedResult) (string, error) {
	return "", nil
}

func (s *stubSummarizer) SuggestQueries(ctx context.Context, query string) ([]string, error) {
	return s.suggestions, s.err
}

func postSuggest(t *testing.T, h *SuggestHandler, body string) []string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Suggest(rec, httptest.NewRequest(http.MethodPost, "/api/suggest", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, suggestions are always 200", rec.Code)
	}
	var payload struct {
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Suggestions == nil {
		t.Fatal("suggestions serialized as null, want an array")
	}
	return payload.Suggestions
}

func TestSuggestReturnsQueries(t *testing.T) {
	h := NewSuggestHandler(&stubSummarizer{
		suggestions: []string{"pasta carbonara recipe", "guanciale substitutes"},
	}, slog.New(slog.DiscardHandler))

	got := postSuggest(t, h, `{"query":"carbonara"}`)
	if len(got) != 2 || got[0] != "pasta carbonara recipe" {
		t.Errorf("suggestions = %v", got)
	}
}

func TestSuggestDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name       string
		summarizer *stubSummarizer
		body       string
	}{
		{"missing query", &stubSummarizer{suggestions: []string{"x"}}, `{}`},
		{"malformed json", &stubSummarizer{suggestions: []string{"x"}}, `{"query"`},
		{"completion failure", &stubSummarizer{err: errors.New("model down")}, `{"query":"carbonara"}`},
		{"nil suggestions", &stubSummarizer{}, `{"query":"carbonara"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSuggestHandler(tt.summarizer, slog.New(slog.DiscardHandler))
			if got := postSuggest(t, h, tt.body); len(got) != 0 {
				t.Errorf("suggestions = %v, want empty", got)
			}
		})
	}
}
