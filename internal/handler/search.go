package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"tabkeep/internal/config"
	searchModels "tabkeep/internal/domain/models/search"
	searchSvc "tabkeep/internal/domain/services/search"
	"tabkeep/internal/httputil"
	searchService "tabkeep/internal/service/search"
)

// SearchHandler serves the non-streaming multi-platform search.
type SearchHandler struct {
	service *searchService.MultiSearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(service *searchService.MultiSearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{service: service, logger: logger}
}

// MultiSearch handles POST /api/search.
func (h *SearchHandler) MultiSearch(w http.ResponseWriter, r *http.Request) {
	var req searchSvc.MultiSearchRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validateMultiSearchRequest(&req); err != nil {
		respondValidationError(w, err)
		return
	}
	req.UserID = httputil.GetUserID(r)

	resp, err := h.service.Search(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

func validateMultiSearchRequest(req *searchSvc.MultiSearchRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Query,
			validation.Required.Error("query is required"),
			validation.Length(1, config.MaxQueryLength),
		),
		validation.Field(&req.Platforms,
			validation.Required.Error("at least one platform is required"),
			validation.Each(validation.In(platformValues()...)),
		),
	)
}

func platformValues() []any {
	names := searchModels.PlatformStrings(searchModels.AllPlatforms)
	values := make([]any, len(names))
	for i, n := range names {
		values[i] = n
	}
	return values
}
