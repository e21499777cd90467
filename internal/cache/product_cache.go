package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"studio-insight/internal/model"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long catalogue entries stay cached when no TTL is
// configured. Catalogue data changes rarely outside admin edits, which
// invalidate explicitly.
const DefaultTTL = 5 * time.Minute

const (
	keyPrefix         = "studioinsight:product:"
	featuredKeyPrefix = "studioinsight:featured:"
)

func featuredKey(limit, offset int) string {
	return fmt.Sprintf("%s%d:%d", featuredKeyPrefix, limit, offset)
}

// ProductCache is a Redis-backed read-through cache for catalogue
// products. All failures degrade to a miss: the caller falls through to
// the database and the storefront keeps working without Redis.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewProductCache creates a Redis-backed product cache.
func NewProductCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *ProductCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProductCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "product-cache").Logger(),
	}
}

// Get retrieves a cached product by ID. Returns the product and true on
// a hit, nil and false otherwise.
func (c *ProductCache) Get(ctx context.Context, id string) (*model.Product, bool) {
	data, err := c.client.Get(ctx, keyPrefix+id).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("product_id", id).Msg("cache read failed, treating as miss")
		return nil, false
	}

	var p model.Product
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		c.logger.Warn().Err(err).Str("product_id", id).Msg("cache entry corrupt, treating as miss")
		return nil, false
	}

	return &p, true
}

// Set stores a product in the cache.
func (c *ProductCache) Set(ctx context.Context, p *model.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, keyPrefix+p.ID, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("product_id", p.ID).Msg("cache write failed")
		return err
	}

	return nil
}

// Invalidate drops a product from the cache. Called on every admin
// write so the storefront never serves a stale or deleted product.
func (c *ProductCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		c.logger.Warn().Err(err).Str("product_id", id).Msg("cache invalidation failed")
		return err
	}
	return nil
}

// GetFeatured retrieves a cached featured-listing page. Returns the
// page and true on a hit, nil and false otherwise.
func (c *ProductCache) GetFeatured(ctx context.Context, limit, offset int) ([]model.Product, bool) {
	key := featuredKey(limit, offset)
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		return nil, false
	}

	var products []model.Product
	if err := json.Unmarshal([]byte(data), &products); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupt, treating as miss")
		return nil, false
	}

	return products, true
}

// SetFeatured stores a featured-listing page in the cache.
func (c *ProductCache) SetFeatured(ctx context.Context, limit, offset int, products []model.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}

	key := featuredKey(limit, offset)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return err
	}

	return nil
}

// InvalidateFeatured drops every cached featured-listing page. Pages
// are keyed per limit and offset, so any catalogue write clears them
// all rather than guessing which pages a product appears on.
func (c *ProductCache) InvalidateFeatured(ctx context.Context) error {
	keys, err := c.client.Keys(ctx, featuredKeyPrefix+"*").Result()
	if err != nil {
		c.logger.Warn().Err(err).Msg("featured cache scan failed")
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn().Err(err).Int("keys", len(keys)).Msg("featured cache invalidation failed")
		return err
	}
	return nil
}
