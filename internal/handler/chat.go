package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"tabkeep/internal/config"
	searchSvc "tabkeep/internal/domain/services/search"
	"tabkeep/internal/handler/sse"
	"tabkeep/internal/httputil"
	searchService "tabkeep/internal/service/search"
)

// ChatHandler serves the SSE answer stream.
type ChatHandler struct {
	pipeline      *searchService.Pipeline
	openAIEnabled bool
	sseConfig     *sse.Config
	logger        *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(pipeline *searchService.Pipeline, openAIEnabled bool, sseConfig *sse.Config, logger *slog.Logger) *ChatHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &ChatHandler{
		pipeline:      pipeline,
		openAIEnabled: openAIEnabled,
		sseConfig:     sseConfig,
		logger:        logger,
	}
}

// StreamChat handles POST /api/chat. Request errors (bad JSON, missing
// message, missing API key) are plain HTTP responses; once streaming starts,
// every failure is delivered as an SSE error event instead.
func (h *ChatHandler) StreamChat(w http.ResponseWriter, r *http.Request) {
	var req searchSvc.ChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validateChatRequest(&req); err != nil {
		respondValidationError(w, err)
		return
	}
	req.UserID = httputil.GetUserID(r)

	if !h.openAIEnabled {
		httputil.RespondError(w, http.StatusInternalServerError, "OpenAI API key not configured")
		return
	}

	writer, err := sse.NewStreamWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	keepAlive := sse.NewTickerKeepAlive(h.sseConfig.KeepAliveInterval)
	keepAlive.Start(writer, h.logger)
	defer keepAlive.Stop()

	if err := h.pipeline.Stream(r.Context(), req, writer); err != nil {
		// The connection is gone or the stream was already closed; nothing
		// more can reach the client.
		h.logger.Debug("chat stream ended early", "error", err)
	}
}

func validateChatRequest(req *searchSvc.ChatRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Message,
			validation.Required.Error("message is required"),
			validation.Length(1, config.MaxQueryLength),
		),
		validation.Field(&req.OptimizationMode,
			validation.In("", "speed", "balanced", "quality"),
		),
	)
}
