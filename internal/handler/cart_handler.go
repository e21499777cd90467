package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"studio-insight/internal/middleware"
	"studio-insight/internal/model"
	"studio-insight/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart HTTP requests. The acting user always comes
// from the authentication middleware, never from the request body.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// ServeHTTP dispatches /api/cart and /api/cart/{productID} requests.
func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return
	}

	productID := strings.TrimPrefix(r.URL.Path, "/api/cart")
	productID = strings.TrimPrefix(productID, "/")

	switch {
	case productID == "" && r.Method == http.MethodGet:
		h.get(w, r, user)
	case productID == "" && r.Method == http.MethodPost:
		h.add(w, r, user)
	case productID != "" && r.Method == http.MethodPut:
		h.update(w, r, user, productID)
	case productID != "" && r.Method == http.MethodDelete:
		h.remove(w, r, user, productID)
	default:
		methodNotAllowed(w, h.logger)
	}
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request, user *model.User) {
	cart, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req model.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "productId is required", h.logger)
		return
	}

	// An omitted quantity means a single unit.
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	if err := h.service.Add(r.Context(), user.ID, req.ProductID, quantity); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	cart, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request, user *model.User, productID string) {
	var req model.UpdateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.UpdateQuantity(r.Context(), user.ID, productID, req.Quantity); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	cart, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request, user *model.User, productID string) {
	if err := h.service.Remove(r.Context(), user.ID, productID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	cart, err := h.service.Get(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}
