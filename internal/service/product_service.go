package service

import (
	"context"
	"fmt"
	"time"

	"studio-insight/internal/cache"
	"studio-insight/internal/model"
	"studio-insight/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService with an optional Redis
// read-through cache in front of the repository.
type productService struct {
	productRepo repository.ProductRepository
	cache       *cache.ProductCache
	logger      zerolog.Logger
}

// NewProductService creates a new product service. cache may be nil,
// in which case all reads go straight to the database.
func NewProductService(productRepo repository.ProductRepository, productCache *cache.ProductCache, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       productCache,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves products matching the filter with pagination.
func (s *productService) List(ctx context.Context, filter model.ProductFilter, limit, offset int) ([]model.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	// Only the storefront's featured listing is cached. Admin listings
	// and filtered queries always hit the database.
	cacheable := s.cache != nil && filter.Featured != nil && *filter.Featured &&
		filter.Type == nil && filter.ActiveOnly
	if cacheable {
		if products, ok := s.cache.GetFeatured(ctx, limit, offset); ok {
			s.logger.Debug().Int("count", len(products)).Msg("featured listing cache hit")
			return products, nil
		}
	}

	products, err := s.productRepo.List(ctx, filter, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("listed products")

	if cacheable {
		// Cache write failures never fail the read path.
		_ = s.cache.SetFeatured(ctx, limit, offset, products)
	}

	return products, nil
}

// GetByID retrieves a single product by ID, consulting the cache first.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	if s.cache != nil {
		if p, ok := s.cache.Get(ctx, id); ok {
			s.logger.Debug().Str("product_id", id).Msg("product cache hit")
			return p, nil
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	if s.cache != nil {
		// Cache write failures never fail the read path.
		_ = s.cache.Set(ctx, product)
	}

	return product, nil
}

// Create adds a new product to the catalogue.
func (s *productService) Create(ctx context.Context, p *model.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.SalesCount = 0

	if err := s.productRepo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.InvalidateFeatured(ctx)
	}

	s.logger.Info().Str("product_id", p.ID).Str("type", string(p.Type)).Msg("product created")
	return nil
}

// Update rewrites a product's fields and drops it from the cache.
func (s *productService) Update(ctx context.Context, p *model.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	p.UpdatedAt = time.Now()

	updated, err := s.productRepo.Update(ctx, p)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if !updated {
		return model.ErrProductNotFound
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, p.ID)
		_ = s.cache.InvalidateFeatured(ctx)
	}

	s.logger.Info().Str("product_id", p.ID).Msg("product updated")
	return nil
}

// Delete removes a product from the catalogue and the cache.
func (s *productService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return model.ErrProductNotFound
	}

	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return model.ErrProductNotFound
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, id)
		_ = s.cache.InvalidateFeatured(ctx)
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	return nil
}

func validateProduct(p *model.Product) error {
	if p == nil {
		return model.NewValidationError("product is required")
	}
	if p.ID == "" {
		return model.NewValidationError("product ID is required")
	}
	if p.Name == "" {
		return model.NewValidationError("product name is required")
	}
	if p.Price < 0 {
		return model.NewValidationError("product price must not be negative")
	}
	if !p.Type.Valid() {
		return model.NewValidationError(fmt.Sprintf("unknown product type: %s", p.Type))
	}
	return nil
}
