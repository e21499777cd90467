package service

import (
	"context"
	"time"

	"studio-insight/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// List retrieves products matching the filter with pagination.
	List(ctx context.Context, filter model.ProductFilter, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Create adds a new product to the catalogue (admin).
	Create(ctx context.Context, p *model.Product) error

	// Update rewrites a product's fields (admin).
	Update(ctx context.Context, p *model.Product) error

	// Delete removes a product from the catalogue (admin).
	Delete(ctx context.Context, id string) error
}

// CartService defines operations on a user's cart. Every operation
// takes the authenticated user identity as an explicit argument.
type CartService interface {
	// Add puts quantity units of a product into the user's cart,
	// incrementing any existing row.
	Add(ctx context.Context, userID uuid.UUID, productID string, quantity int) error

	// UpdateQuantity sets a cart row's quantity; zero or negative
	// removes the row.
	UpdateQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) error

	// Remove deletes a cart row; a no-op when absent.
	Remove(ctx context.Context, userID uuid.UUID, productID string) error

	// Get returns the cart priced against the live catalogue.
	Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
}

// OrderService defines checkout and order lifecycle operations.
type OrderService interface {
	// Checkout snapshots the user's cart into a pending order, freezes
	// prices, clears the cart and returns the payment redirect.
	Checkout(ctx context.Context, userID uuid.UUID, currency string) (*model.CheckoutResponse, error)

	// UpdateStatus applies a payment-provider status transition.
	// Repeating an already-applied transition is an idempotent no-op.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, paymentID *string) (*model.Order, error)

	// GetOrder retrieves an order with items; only the owner may read it.
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderResponse, error)

	// ListUserOrders retrieves all of the user's orders, newest first.
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error)

	// Stats aggregates revenue over paid orders (admin).
	Stats(ctx context.Context) (*model.OrderStats, error)

	// TopProducts ranks products by paid quantity (admin).
	TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error)

	// OrdersByDateRange lists paid orders in [from, to) (admin).
	OrdersByDateRange(ctx context.Context, from, to time.Time) ([]model.Order, error)
}

// AccessService is the single authority for download and content
// eligibility. No endpoint serves a digital file by any other path.
type AccessService interface {
	// HasUserPurchasedProduct reports whether the user holds a paid
	// order containing the product. Gates content viewing.
	HasUserPurchasedProduct(ctx context.Context, userID uuid.UUID, productID string) (bool, error)

	// CanUserDownload reports whether all download conditions hold:
	// file exists, product purchased, limit not exhausted, not expired.
	// Read-only; consumes no download slot.
	CanUserDownload(ctx context.Context, userID, digitalProductID uuid.UUID) (bool, error)

	// ListProductFiles returns a product's digital files, but only to a
	// user who has purchased the product.
	ListProductFiles(ctx context.Context, userID uuid.UUID, productID string) ([]model.DigitalProduct, error)

	// RequestDownload runs the eligibility chain, consumes a download
	// slot atomically and returns a temporary download reference. Any
	// failed condition is a hard denial.
	RequestDownload(ctx context.Context, userID, digitalProductID uuid.UUID) (*model.DownloadResponse, error)

	// AddDigitalProduct registers a downloadable file (admin).
	AddDigitalProduct(ctx context.Context, req *model.AddDigitalProductRequest) (*model.DigitalProduct, error)

	// RemoveDigitalProduct deletes a downloadable file (admin).
	RemoveDigitalProduct(ctx context.Context, id uuid.UUID) error

	// DownloadStats aggregates download usage for a file (admin).
	DownloadStats(ctx context.Context, id uuid.UUID) (*model.DownloadStats, error)
}

// UserService defines account operations.
type UserService interface {
	// Register creates an account with a bcrypt-hashed password.
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)

	// GetByID retrieves a user.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// Authenticate verifies an email/password pair.
	Authenticate(ctx context.Context, email, password string) (*model.User, error)

	// SetRole changes a user's role (admin).
	SetRole(ctx context.Context, id uuid.UUID, role model.UserRole) error
}
