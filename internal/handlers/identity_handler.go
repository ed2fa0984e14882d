package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/nexusfind/backend/internal/models"
	"github.com/nexusfind/backend/internal/services"
)

type IdentityHandler struct {
	identity *services.IdentityState
	advisor  services.Advisor
	logger   *zap.Logger
}

// NewIdentityHandler builds the handler. advisor may be nil.
func NewIdentityHandler(identity *services.IdentityState, advisor services.Advisor, logger *zap.Logger) *IdentityHandler {
	return &IdentityHandler{
		identity: identity,
		advisor:  advisor,
		logger:   logger.Named("identity"),
	}
}

func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := h.identity.Identity(r.Context())
	if err != nil {
		h.logger.Error("read identity", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to read identity"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(id))
}

// Verify records the self-asserted affiliation. The safeguards call is purely
// advisory: verification takes effect whether or not it succeeds.
func (h *IdentityHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	var resp models.VerifyResponse
	if h.advisor == nil {
		resp.AdvisoryError = services.ErrAdvisorNotConfigured.Error()
	} else if sg, err := h.advisor.VerificationSafeguards(ctx, req); err != nil {
		h.logger.Warn("safeguards unavailable", zap.Error(err))
		resp.AdvisoryError = "Could not get safeguards from AI. Please try again."
	} else {
		resp.Safeguards = sg
	}

	if err := h.identity.SetVerified(ctx, true, req.Institution); err != nil {
		h.logger.Error("persist verification", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to save verification"))
		return
	}

	id, err := h.identity.Identity(ctx)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to read identity"))
		return
	}
	resp.Identity = id

	h.logger.Info("verified", zap.String("userId", id.UserID), zap.String("institution", string(id.Institution)))
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(resp))
}

func (h *IdentityHandler) Unverify(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.Unverify(r.Context()); err != nil {
		h.logger.Error("clear verification", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to clear verification"))
		return
	}
	h.Me(w, r)
}
