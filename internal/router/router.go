package router

import (
	"net/http"
	"strings"

	"studio-insight/internal/handler"
	"studio-insight/internal/middleware"
	"studio-insight/internal/service"

	"github.com/rs/zerolog"
)

// Config carries the router's auth settings. The admin and webhook
// zones use separate API keys so a leaked webhook key never grants
// back-office access.
type Config struct {
	AdminAPIKey   string
	WebhookAPIKey string
}

// New creates the HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	downloadHandler *handler.DownloadHandler,
	userHandler *handler.UserHandler,
	adminHandler *handler.AdminHandler,
	users service.UserService,
	cfg Config,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Public catalogue and registration
	mux.HandleFunc("/api/users", userHandler.Register)
	mux.HandleFunc("/api/users/login", userHandler.Login)

	userAuth := middleware.UserAuth(users, logger)

	// /api/products is public, but /api/products/{id}/digital needs an
	// authenticated purchaser.
	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/digital") {
			userAuth(http.HandlerFunc(downloadHandler.ListProductFiles)).ServeHTTP(w, r)
			return
		}
		if r.URL.Path != "/api/products" && r.URL.Path != "/api/products/" {
			productHandler.GetByID(w, r)
			return
		}
		productHandler.List(w, r)
	}
	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	// User endpoints behind identity resolution
	mux.Handle("/api/cart", userAuth(cartHandler))
	mux.Handle("/api/cart/", userAuth(cartHandler))
	mux.Handle("/api/checkout", userAuth(http.HandlerFunc(orderHandler.Checkout)))
	mux.Handle("/api/orders", userAuth(http.HandlerFunc(orderHandler.List)))
	mux.Handle("/api/orders/", userAuth(http.HandlerFunc(orderHandler.GetByID)))
	mux.Handle("/api/downloads/", userAuth(http.HandlerFunc(downloadHandler.RequestDownload)))

	// Webhook zone
	webhookAuth := middleware.APIKeyAuth(cfg.WebhookAPIKey, logger)
	mux.Handle("/api/webhooks/payment", webhookAuth(http.HandlerFunc(orderHandler.Webhook)))

	// Admin zone
	adminAuth := middleware.APIKeyAuth(cfg.AdminAPIKey, logger)
	mux.Handle("/api/admin/", adminAuth(adminHandler))

	// Apply middleware in order: Recovery -> Logging -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
