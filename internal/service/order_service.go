package service

import (
	"context"
	"fmt"
	"time"

	"studio-insight/internal/model"
	"studio-insight/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutConfig holds the payment-provider settings used at checkout.
type CheckoutConfig struct {
	RedirectBaseURL string
	DefaultCurrency string
}

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	checkout  CheckoutConfig
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	checkout CheckoutConfig,
	logger zerolog.Logger,
) OrderService {
	if checkout.DefaultCurrency == "" {
		checkout.DefaultCurrency = "usd"
	}
	return &orderService{
		orderRepo: orderRepo,
		cartRepo:  cartRepo,
		checkout:  checkout,
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// Checkout snapshots the user's cart into a pending order. This is the
// price-freezing boundary: line prices are copied from the live
// catalogue here and never re-read afterwards.
func (s *orderService) Checkout(ctx context.Context, userID uuid.UUID, currency string) (*model.CheckoutResponse, error) {
	lines, err := s.cartRepo.Lines(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to load cart for checkout")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	if len(lines) == 0 {
		s.logger.Warn().Str("user_id", userID.String()).Msg("checkout attempted with empty cart")
		return nil, model.ErrEmptyOrder
	}

	for _, l := range lines {
		if !l.IsActive {
			s.logger.Warn().
				Str("user_id", userID.String()).
				Str("product_id", l.ProductID).
				Msg("checkout attempted with inactive product")
			return nil, model.ErrProductNotFound
		}
	}

	if currency == "" {
		currency = s.checkout.DefaultCurrency
	}

	order := &model.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Currency:  currency,
		Status:    model.OrderStatusPending,
		CreatedAt: time.Now(),
	}

	items := make([]model.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
		order.TotalAmount += int64(l.Quantity) * l.UnitPrice
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Cart clearing happens after commit; a failure here leaves a stale
	// cart but never a broken order.
	if clearErr := s.cartRepo.Clear(ctx, userID); clearErr != nil {
		s.logger.Warn().Err(clearErr).Str("user_id", userID.String()).Msg("failed to clear cart after checkout")
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Int64("total_amount", order.TotalAmount).
		Int("item_count", len(items)).
		Msg("order created")

	return &model.CheckoutResponse{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		RedirectURL: fmt.Sprintf("%s?order=%s", s.checkout.RedirectBaseURL, order.ID),
	}, nil
}

// UpdateStatus applies a payment-provider status transition. Repeating
// an already-applied transition returns the order unchanged; an
// impossible transition is a conflict.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus, paymentID *string) (*model.Order, error) {
	if !status.Valid() || status == model.OrderStatusPending {
		return nil, model.ErrInvalidTransition
	}

	order, _, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to load order")
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		s.logger.Warn().Str("order_id", orderID.String()).Msg("status update for unknown order")
		return nil, model.ErrOrderNotFound
	}

	// At-least-once webhook delivery: the same transition arriving
	// again is acknowledged without side effects.
	if order.Status == status {
		s.logger.Info().
			Str("order_id", orderID.String()).
			Str("status", string(status)).
			Msg("duplicate status update ignored")
		return order, nil
	}

	if !order.Status.CanTransitionTo(status) {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("from", string(order.Status)).
			Str("to", string(status)).
			Msg("invalid status transition rejected")
		return nil, model.ErrInvalidTransition
	}

	transitioned, err := s.orderRepo.TransitionStatus(ctx, orderID, order.Status, status, paymentID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to transition order status")
		return nil, fmt.Errorf("failed to transition order status: %w", err)
	}

	updated, _, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	if updated == nil {
		return nil, model.ErrOrderNotFound
	}

	if !transitioned && updated.Status != status {
		// Lost a race against a conflicting transition.
		return nil, model.ErrInvalidTransition
	}

	return updated, nil
}

// GetOrder retrieves an order with items; only the owner may read it.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if order.UserID != userID {
		s.logger.Warn().
			Str("order_id", orderID.String()).
			Str("user_id", userID.String()).
			Msg("order access by non-owner denied")
		return nil, model.ErrForbidden
	}

	return &model.OrderResponse{Order: *order, Items: items}, nil
}

// ListUserOrders retrieves all of the user's orders, newest first.
func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]model.OrderResponse, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list user orders: %w", err)
	}

	return orders, nil
}

// Stats aggregates revenue over paid orders.
func (s *orderService) Stats(ctx context.Context) (*model.OrderStats, error) {
	stats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get order stats")
		return nil, fmt.Errorf("failed to get order stats: %w", err)
	}
	return stats, nil
}

// TopProducts ranks products by paid quantity.
func (s *orderService) TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}

	top, err := s.orderRepo.TopProducts(ctx, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get top products")
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	return top, nil
}

// OrdersByDateRange lists paid orders in [from, to).
func (s *orderService) OrdersByDateRange(ctx context.Context, from, to time.Time) ([]model.Order, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("invalid date range: %s is not before %s", from, to)
	}

	orders, err := s.orderRepo.ListByDateRange(ctx, from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders by date range")
		return nil, fmt.Errorf("failed to list orders by date range: %w", err)
	}
	return orders, nil
}
