package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusPaid     OrderStatus = "paid"
	OrderStatusFailed   OrderStatus = "failed"
	OrderStatusRefunded OrderStatus = "refunded"
)

// Valid reports whether the status is a known lifecycle state.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusFailed, OrderStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle permits moving from s
// to target. Permitted: pending→paid, pending→failed, paid→refunded.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusPaid || target == OrderStatusFailed
	case OrderStatusPaid:
		return target == OrderStatusRefunded
	}
	return false
}

// Order represents a purchase attempt. Monetary values are frozen at
// creation time and never recomputed from the catalogue.
type Order struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"userId" db:"user_id"`
	TotalAmount int64       `json:"totalAmount" db:"total_amount"`
	Currency    string      `json:"currency" db:"currency"`
	Status      OrderStatus `json:"status" db:"status"`
	PaymentID   *string     `json:"paymentId,omitempty" db:"payment_id"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	PaidAt      *time.Time  `json:"paidAt,omitempty" db:"paid_at"`
}

// OrderItem is a priced line in an order. UnitPrice is the catalogue
// price captured when the order was created.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice int64     `json:"unitPrice" db:"unit_price"`
}

// OrderResponse is an order with its line items.
type OrderResponse struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}

// CheckoutRequest is the payload for POST /api/checkout.
type CheckoutRequest struct {
	Currency string `json:"currency,omitempty"`
}

// CheckoutResponse returns the created pending order and the payment
// provider redirect URL.
type CheckoutResponse struct {
	OrderID     uuid.UUID `json:"orderId"`
	TotalAmount int64     `json:"totalAmount"`
	Currency    string    `json:"currency"`
	RedirectURL string    `json:"redirectUrl"`
}

// PaymentWebhookRequest is the payload delivered by the payment
// provider. Delivery is at-least-once; processing must be idempotent.
type PaymentWebhookRequest struct {
	OrderID   uuid.UUID   `json:"orderId"`
	Status    OrderStatus `json:"status"`
	PaymentID *string     `json:"paymentId,omitempty"`
}

// OrderStats aggregates revenue over paid orders only.
type OrderStats struct {
	PaidOrders   int   `json:"paidOrders"`
	TotalRevenue int64 `json:"totalRevenue"`
	AverageValue int64 `json:"averageValue"`
}

// TopProduct ranks a product by paid-order quantity.
type TopProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Revenue   int64  `json:"revenue"`
}
