package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nexusfind/backend/internal/imaging"
	"github.com/nexusfind/backend/internal/models"
	"github.com/nexusfind/backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeImageError maps image pipeline failures onto responses.
func writeImageError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrImageRejected):
		writeJSON(w, http.StatusUnprocessableEntity, models.NewErrorResponse("Photo rejected: violates community guidelines"))
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid image type. Allowed: JPEG, PNG, GIF, WebP"))
	default:
		logger.Error("image processing failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to process image"))
	}
}
