package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/nexusfind/backend/internal/models"
	"github.com/nexusfind/backend/internal/services"
)

type AdvisorHandler struct {
	advisor services.Advisor
	logger  *zap.Logger
}

// NewAdvisorHandler builds the handler. advisor may be nil.
func NewAdvisorHandler(advisor services.Advisor, logger *zap.Logger) *AdvisorHandler {
	return &AdvisorHandler{advisor: advisor, logger: logger.Named("advisor")}
}

func (h *AdvisorHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var req models.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}
	if h.advisor == nil {
		writeJSON(w, http.StatusServiceUnavailable, models.NewErrorResponse("AI suggestions are not configured"))
		return
	}

	out, err := h.advisor.OptimizeDescription(r.Context(), req.Description)
	if err != nil {
		h.logger.Warn("optimize failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, models.NewErrorResponse("Could not get suggestions from AI. Please try again."))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(out))
}
