package handlers

import (
	"net/http"

	"github.com/nexusfind/backend/internal/models"
)

func ListInstitutions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.MetadataResponse{Institutions: models.Institutions}))
}

func ListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.MetadataResponse{Categories: models.ItemCategories}))
}
