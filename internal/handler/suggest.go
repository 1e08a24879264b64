package handler

import (
	"log/slog"
	"net/http"

	aiSvc "tabkeep/internal/domain/services/ai"
	"tabkeep/internal/httputil"
)

// SuggestHandler serves related-query suggestions.
type SuggestHandler struct {
	summarizer aiSvc.Summarizer
	logger     *slog.Logger
}

// NewSuggestHandler creates a new SuggestHandler.
func NewSuggestHandler(summarizer aiSvc.Summarizer, logger *slog.Logger) *SuggestHandler {
	return &SuggestHandler{summarizer: summarizer, logger: logger}
}

type suggestRequest struct {
	Query string `json:"query"`
}

// Suggest handles POST /api/suggest. Suggestions are best-effort: a missing
// query, an unconfigured collaborator or a failed completion all yield an
// empty list rather than an error.
func (h *SuggestHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	empty := map[string]any{"suggestions": []string{}}

	var req suggestRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil || req.Query == "" {
		httputil.RespondJSON(w, http.StatusOK, empty)
		return
	}

	suggestions, err := h.summarizer.SuggestQueries(r.Context(), req.Query)
	if err != nil {
		h.logger.Debug("suggestion generation failed", "error", err)
		httputil.RespondJSON(w, http.StatusOK, empty)
		return
	}
	if suggestions == nil {
		suggestions = []string{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
