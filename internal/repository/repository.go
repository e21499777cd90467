package repository

import (
	"context"
	"time"

	"studio-insight/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// List retrieves products matching the filter with pagination support.
	List(ctx context.Context, filter model.ProductFilter, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, p *model.Product) error

	// Update rewrites a product's mutable fields. Returns false when absent.
	Update(ctx context.Context, p *model.Product) (bool, error)

	// Delete removes a product. Returns false when absent.
	Delete(ctx context.Context, id string) (bool, error)
}

// CartRepository defines the interface for per-user cart rows.
// All mutations are expressed as single atomic statements so concurrent
// requests for the same (user, product) pair never lose an update.
type CartRepository interface {
	// Add increments the quantity for (userID, productID), creating the
	// row when it does not exist.
	Add(ctx context.Context, userID uuid.UUID, productID string, quantity int) error

	// SetQuantity sets the quantity directly; a quantity <= 0 deletes
	// the row instead of storing it.
	SetQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) error

	// Remove deletes the row; a no-op when absent.
	Remove(ctx context.Context, userID uuid.UUID, productID string) error

	// Lines returns the user's cart rows joined with live catalogue data.
	Lines(ctx context.Context, userID uuid.UUID) ([]model.CartLine, error)

	// Clear deletes all rows for the user.
	Clear(ctx context.Context, userID uuid.UUID) error
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	// Returns a nil order when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// ListByUser retrieves all of a user's orders with their items,
	// newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error)

	// TransitionStatus atomically moves an order from one status to
	// another. The update is predicated on the current status, so a
	// duplicate delivery of the same transition affects zero rows.
	// Moving into paid stamps paidAt, records the payment id and
	// increments product sales counters, all in one transaction.
	// Returns true when a row actually transitioned.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, paymentID *string) (bool, error)

	// HasPaidOrderForProduct reports whether the user has any paid order
	// containing the product.
	HasPaidOrderForProduct(ctx context.Context, userID uuid.UUID, productID string) (bool, error)

	// Stats aggregates count, revenue and average value over paid orders.
	Stats(ctx context.Context) (*model.OrderStats, error)

	// TopProducts ranks products by quantity sold across paid orders.
	TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error)

	// ListByDateRange retrieves paid orders created within [from, to).
	ListByDateRange(ctx context.Context, from, to time.Time) ([]model.Order, error)
}

// DigitalProductRepository defines the interface for downloadable files
// and per-user download tracking.
type DigitalProductRepository interface {
	// Create registers a downloadable file under a product.
	Create(ctx context.Context, dp *model.DigitalProduct) error

	// GetByID retrieves a digital product. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.DigitalProduct, error)

	// ListByProduct retrieves all files registered under a product.
	ListByProduct(ctx context.Context, productID string) ([]model.DigitalProduct, error)

	// Delete removes a digital product. Returns false when absent.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// GetDownloadCount returns the user's download count for the file,
	// zero when no row exists.
	GetDownloadCount(ctx context.Context, userID, digitalProductID uuid.UUID) (int, error)

	// IncrementDownload upserts the user's download row in a single
	// conditional statement: it creates the row with count 1, or
	// increments only while the count is below limit. A nil limit never
	// blocks. Returns false when the limit was already exhausted.
	IncrementDownload(ctx context.Context, userID, digitalProductID uuid.UUID, limit *int) (bool, error)

	// Stats aggregates total downloads and distinct users for the file.
	Stats(ctx context.Context, digitalProductID uuid.UUID) (*model.DownloadStats, error)
}

// UserRepository defines the interface for account data access.
type UserRepository interface {
	// Create inserts a new user. Returns model.ErrEmailTaken when the
	// email is already registered (case-insensitive).
	Create(ctx context.Context, u *model.User) error

	// GetByID retrieves a user by ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// GetByEmail retrieves a user by email, case-insensitively.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// UpdateRole changes a user's role. Returns false when absent.
	UpdateRole(ctx context.Context, id uuid.UUID, role model.UserRole) (bool, error)
}
