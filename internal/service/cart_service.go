package service

import (
	"context"
	"fmt"

	"studio-insight/internal/model"
	"studio-insight/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Add puts quantity units of a product into the user's cart. Unknown
// and inactive products are rejected; the quantity increment itself is
// atomic in the repository.
func (s *cartService) Add(ctx context.Context, userID uuid.UUID, productID string, quantity int) error {
	if quantity <= 0 {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("invalid quantity")
		return model.ErrInvalidQuantity
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to look up product")
		return fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil || !product.IsActive {
		s.logger.Warn().Str("product_id", productID).Msg("product not available for cart")
		return model.ErrProductNotFound
	}

	if err := s.cartRepo.Add(ctx, userID, productID, quantity); err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID).
			Msg("failed to add to cart")
		return fmt.Errorf("failed to add to cart: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("product_id", productID).
		Int("quantity", quantity).
		Msg("added to cart")

	return nil
}

// UpdateQuantity sets a cart row's quantity directly; zero or negative
// removes the row.
func (s *cartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, productID string, quantity int) error {
	if quantity > 0 {
		product, err := s.productRepo.GetByID(ctx, productID)
		if err != nil {
			s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to look up product")
			return fmt.Errorf("failed to look up product: %w", err)
		}
		if product == nil {
			return model.ErrProductNotFound
		}
	}

	if err := s.cartRepo.SetQuantity(ctx, userID, productID, quantity); err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID).
			Msg("failed to update cart quantity")
		return fmt.Errorf("failed to update cart quantity: %w", err)
	}

	return nil
}

// Remove deletes a cart row; removing an absent row is not an error.
func (s *cartService) Remove(ctx context.Context, userID uuid.UUID, productID string) error {
	if err := s.cartRepo.Remove(ctx, userID, productID); err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID).
			Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return nil
}

// Get returns the cart priced against the live catalogue. The item
// count is the summed quantity across lines.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	lines, err := s.cartRepo.Lines(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to load cart")
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	cart := &model.Cart{Lines: lines}
	for _, l := range lines {
		cart.Total += l.Subtotal
		cart.ItemCount += l.Quantity
	}

	s.logger.Debug().
		Str("user_id", userID.String()).
		Int("lines", len(lines)).
		Int64("total", cart.Total).
		Msg("cart loaded")

	return cart, nil
}
