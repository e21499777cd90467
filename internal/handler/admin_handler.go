package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"studio-insight/internal/model"
	"studio-insight/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AdminHandler handles the back-office endpoints under /api/admin/.
// All routes behind it require the admin API key.
type AdminHandler struct {
	products service.ProductService
	orders   service.OrderService
	access   service.AccessService
	users    service.UserService
	logger   zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	products service.ProductService,
	orders service.OrderService,
	access service.AccessService,
	users service.UserService,
	logger zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		products: products,
		orders:   orders,
		access:   access,
		users:    users,
		logger:   logger.With().Str("handler", "admin").Logger(),
	}
}

// ServeHTTP dispatches /api/admin/ requests by sub-path.
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/admin/")

	switch {
	case path == "products" || strings.HasPrefix(path, "products/"):
		h.handleProducts(w, r, strings.TrimPrefix(strings.TrimPrefix(path, "products"), "/"))
	case path == "digital-products" || strings.HasPrefix(path, "digital-products/"):
		h.handleDigitalProducts(w, r, strings.TrimPrefix(strings.TrimPrefix(path, "digital-products"), "/"))
	case path == "stats/orders":
		h.orderStats(w, r)
	case path == "stats/top-products":
		h.topProducts(w, r)
	case path == "orders":
		h.ordersByDateRange(w, r)
	case strings.HasPrefix(path, "users/") && strings.HasSuffix(path, "/role"):
		h.setUserRole(w, r, strings.TrimSuffix(strings.TrimPrefix(path, "users/"), "/role"))
	default:
		writeError(w, http.StatusNotFound, model.ErrCodeInternalError, "not found", h.logger)
	}
}

func (h *AdminHandler) handleProducts(w http.ResponseWriter, r *http.Request, id string) {
	switch {
	case id == "" && r.Method == http.MethodPost:
		h.createProduct(w, r)
	case id != "" && r.Method == http.MethodPut:
		h.updateProduct(w, r, id)
	case id != "" && r.Method == http.MethodDelete:
		h.deleteProduct(w, r, id)
	default:
		methodNotAllowed(w, h.logger)
	}
}

func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.products.Create(r.Context(), &p); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request, id string) {
	var p model.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	p.ID = id

	if err := h.products.Update(r.Context(), &p); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.products.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) handleDigitalProducts(w http.ResponseWriter, r *http.Request, rest string) {
	switch {
	case rest == "" && r.Method == http.MethodPost:
		h.addDigitalProduct(w, r)
	case strings.HasSuffix(rest, "/stats") && r.Method == http.MethodGet:
		h.downloadStats(w, r, strings.TrimSuffix(rest, "/stats"))
	case rest != "" && r.Method == http.MethodDelete:
		h.removeDigitalProduct(w, r, rest)
	default:
		methodNotAllowed(w, h.logger)
	}
}

func (h *AdminHandler) addDigitalProduct(w http.ResponseWriter, r *http.Request) {
	var req model.AddDigitalProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	dp, err := h.access.AddDigitalProduct(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, dp)
}

func (h *AdminHandler) removeDigitalProduct(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid digital product ID format", h.logger)
		return
	}

	if err := h.access.RemoveDigitalProduct(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) downloadStats(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid digital product ID format", h.logger)
		return
	}

	stats, err := h.access.DownloadStats(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) orderStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger)
		return
	}

	stats, err := h.orders.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) topProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		var err error
		limit, err = strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid limit parameter", h.logger)
			return
		}
	}

	top, err := h.orders.TopProducts(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, top)
}

func (h *AdminHandler) ordersByDateRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger)
		return
	}

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid from parameter, expected RFC 3339", h.logger)
		return
	}

	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid to parameter, expected RFC 3339", h.logger)
		return
	}

	orders, err := h.orders.OrdersByDateRange(r.Context(), from, to)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *AdminHandler) setUserRole(w http.ResponseWriter, r *http.Request, idStr string) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, h.logger)
		return
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid user ID format", h.logger)
		return
	}

	var req struct {
		Role model.UserRole `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.users.SetRole(r.Context(), id, req.Role); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

