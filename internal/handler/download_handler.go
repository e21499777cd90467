package handler

import (
	"net/http"
	"strings"

	"studio-insight/internal/middleware"
	"studio-insight/internal/model"
	"studio-insight/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DownloadHandler exposes the gated digital content endpoints. All
// access decisions live in the access service; this layer only parses
// requests and translates denials.
type DownloadHandler struct {
	service service.AccessService
	logger  zerolog.Logger
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(service service.AccessService, logger zerolog.Logger) *DownloadHandler {
	return &DownloadHandler{
		service: service,
		logger:  logger.With().Str("handler", "download").Logger(),
	}
}

// ListProductFiles handles GET /api/products/{id}/digital requests.
func (h *DownloadHandler) ListProductFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger)
		return
	}

	user := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return
	}

	productID := strings.TrimPrefix(r.URL.Path, "/api/products/")
	productID = strings.TrimSuffix(productID, "/digital")
	if productID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "product ID is required", h.logger)
		return
	}

	files, err := h.service.ListProductFiles(r.Context(), user.ID, productID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, files)
}

// RequestDownload handles POST /api/downloads/{digitalProductID}
// requests. A granted request consumes one download slot and returns a
// short-lived URL.
func (h *DownloadHandler) RequestDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, h.logger)
		return
	}

	user := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/downloads/")
	digitalProductID, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid digital product ID format", h.logger)
		return
	}

	resp, err := h.service.RequestDownload(r.Context(), user.ID, digitalProductID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
