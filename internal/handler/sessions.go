package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"tabkeep/internal/config"
	searchModels "tabkeep/internal/domain/models/search"
	"tabkeep/internal/httputil"
	searchService "tabkeep/internal/service/search"
)

// SessionsHandler serves search session retrieval.
type SessionsHandler struct {
	recorder *searchService.Recorder
	logger   *slog.Logger
}

// NewSessionsHandler creates a new SessionsHandler. recorder may be nil when
// no database is configured; every route then reports 404.
func NewSessionsHandler(recorder *searchService.Recorder, logger *slog.Logger) *SessionsHandler {
	return &SessionsHandler{recorder: recorder, logger: logger}
}

// ListSessions handles GET /api/sessions.
func (h *SessionsHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		httputil.RespondError(w, http.StatusNotFound, "session persistence is not configured")
		return
	}

	limit := config.DefaultSessionListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= config.DefaultSessionListLimit {
			limit = n
		}
	}

	sessions, err := h.recorder.List(r.Context(), limit)
	if err != nil {
		handleError(w, err)
		return
	}
	if sessions == nil {
		sessions = []searchModels.SearchSession{}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"sessions": sessions,
	})
}

// GetSession handles GET /api/sessions/{id}. The response carries the session
// together with its per-platform outcome rows.
func (h *SessionsHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		httputil.RespondError(w, http.StatusNotFound, "session persistence is not configured")
		return
	}

	id := r.PathValue("id")
	session, err := h.recorder.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	outcomes, err := h.recorder.Outcomes(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to load platform outcomes", "session_id", id, "error", err)
		outcomes = nil
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"session":   session,
		"platforms": outcomes,
	})
}
