package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nexusfind/backend/internal/middleware"
	"github.com/nexusfind/backend/internal/models"
	"github.com/nexusfind/backend/internal/services"
)

type ItemHandler struct {
	cache          *services.ItemCache
	identity       *services.IdentityState
	images         *services.ImageService
	maxUploadBytes int64
	logger         *zap.Logger
}

func NewItemHandler(cache *services.ItemCache, identity *services.IdentityState, images *services.ImageService, maxUploadBytes int64, logger *zap.Logger) *ItemHandler {
	return &ItemHandler{
		cache:          cache,
		identity:       identity,
		images:         images,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.Named("items"),
	}
}

// parseFilter reads institution, category, status and showResolved from the
// query string.
func parseFilter(q url.Values) (models.ItemFilter, map[string]string) {
	var f models.ItemFilter
	errs := make(map[string]string)

	if raw := q.Get("institution"); raw != "" {
		inst, ok := models.ParseInstitution(raw)
		if !ok {
			errs["institution"] = "Unknown institution."
		}
		f.Institution = inst
	}
	f.Category = q.Get("category")
	if raw := q.Get("status"); raw != "" {
		f.Status = models.ItemStatus(raw)
		if !f.Status.Valid() {
			errs["status"] = "Status must be lost or found."
		}
	}
	if raw := q.Get("showResolved"); raw != "" {
		show, err := strconv.ParseBool(raw)
		if err != nil {
			errs["showResolved"] = "showResolved must be true or false."
		}
		f.ShowResolved = show
	}
	return f, errs
}

func (h *ItemHandler) itemsResponse(filter models.ItemFilter, items []models.Item) models.ItemsResponse {
	visible := filter.Apply(items)
	lost, found := models.SplitByStatus(visible)
	return models.ItemsResponse{
		Items:    visible,
		Lost:     len(lost),
		Found:    len(found),
		Degraded: h.cache.Degraded(),
	}
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseFilter(r.URL.Query())
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(h.itemsResponse(filter, h.cache.Items())))
}

// StreamItems pushes one "items" server-sent event per cache snapshot until
// the client goes away.
func (h *ItemHandler) StreamItems(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseFilter(r.URL.Query())
	if len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for items := range h.cache.Watch(r.Context()) {
		data, err := json.Marshal(h.itemsResponse(filter, items))
		if err != nil {
			h.logger.Error("encode snapshot", zap.Error(err))
			return
		}
		if _, err := fmt.Fprintf(w, "event: items\ndata: %s\n\n", data); err != nil {
			return
		}
		flusher.Flush()
	}
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	v, err := h.identity.Verification(ctx)
	if err != nil {
		h.logger.Error("read verification", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to read verification state"))
		return
	}
	if !v.Verified {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Verify your institution before listing an item"))
		return
	}

	var draft models.ItemDraft
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		var ok bool
		if draft, ok = h.draftFromForm(w, r, userID); !ok {
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if draft.Institution == "" {
		draft.Institution = v.Institution
	}
	if strings.TrimSpace(draft.ImageURL) == "" {
		draft.ImageURL = models.PlaceholderImageURL
	}

	id, err := h.cache.AddItem(ctx, draft)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(verr.Fields))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list item"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(models.CreateItemResponse{ID: id}))
}

// draftFromForm reads a multipart listing. An attached "image" is stored and
// its URL used for the listing.
func (h *ItemHandler) draftFromForm(w http.ResponseWriter, r *http.Request, userID string) (models.ItemDraft, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("File too large or invalid form data"))
		return models.ItemDraft{}, false
	}

	draft := models.ItemDraft{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		ImageURL:    r.FormValue("imageUrl"),
		ImageHint:   r.FormValue("imageHint"),
		Status:      models.ItemStatus(r.FormValue("status")),
		Institution: models.Institution(r.FormValue("institution")),
		Category:    r.FormValue("category"),
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return draft, true
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid image upload"))
		return models.ItemDraft{}, false
	}
	defer file.Close()

	imageURL, err := h.images.Store(r.Context(), userID, header.Filename, file)
	if err != nil {
		writeImageError(w, h.logger, err)
		return models.ItemDraft{}, false
	}
	draft.ImageURL = imageURL
	return draft, true
}

// ResolveItem flips the resolved flag. Only the listing's owner may do it.
func (h *ItemHandler) ResolveItem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	itemID := chi.URLParam(r, "itemId")

	item, ok := h.cache.Lookup(itemID)
	if !ok {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item not found"))
		return
	}
	if item.UserID != userID {
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Not authorized to update this item"))
		return
	}

	resolved, err := h.cache.ToggleResolved(r.Context(), itemID)
	if errors.Is(err, services.ErrItemNotFound) {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Item not found"))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update item"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.ResolveItemResponse{ID: itemID, Resolved: resolved}))
}

func (h *ItemHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("File too large or invalid form data"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("No image file provided"))
		return
	}
	defer file.Close()

	imageURL, err := h.images.Store(r.Context(), userID, header.Filename, file)
	if err != nil {
		writeImageError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(models.ImageUploadResponse{URL: imageURL}))
}
