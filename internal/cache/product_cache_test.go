package cache

import (
	"context"
	"testing"
	"time"

	"studio-insight/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return mr, client
}

func cachedProduct() *model.Product {
	return &model.Product{
		ID:       "course-1",
		Name:     "Insight Fundamentals",
		Price:    9700,
		Type:     model.ProductTypeCourse,
		IsActive: true,
	}
}

func TestProductCache_SetAndGet(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewProductCache(client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	p := cachedProduct()
	require.NoError(t, cache.Set(ctx, p))

	got, ok := cache.Get(ctx, "course-1")
	require.True(t, ok)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, p.Price, got.Price)
	assert.Equal(t, p.Type, got.Type)
}

func TestProductCache_Miss(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewProductCache(client, time.Minute, zerolog.Nop())

	got, ok := cache.Get(context.Background(), "nope")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestProductCache_Invalidate(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewProductCache(client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, cachedProduct()))
	require.NoError(t, cache.Invalidate(ctx, "course-1"))

	_, ok := cache.Get(ctx, "course-1")
	assert.False(t, ok)
}

func TestProductCache_EntriesExpire(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewProductCache(client, time.Second, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, cachedProduct()))

	mr.FastForward(2 * time.Second)

	_, ok := cache.Get(ctx, "course-1")
	assert.False(t, ok)
}

func TestProductCache_FeaturedSetAndGet(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewProductCache(client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	page := []model.Product{*cachedProduct()}
	require.NoError(t, cache.SetFeatured(ctx, 20, 0, page))

	got, ok := cache.GetFeatured(ctx, 20, 0)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "course-1", got[0].ID)

	// A different page is a separate entry and misses.
	_, ok = cache.GetFeatured(ctx, 20, 20)
	assert.False(t, ok)
}

func TestProductCache_InvalidateFeatured(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewProductCache(client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	page := []model.Product{*cachedProduct()}
	require.NoError(t, cache.SetFeatured(ctx, 20, 0, page))
	require.NoError(t, cache.SetFeatured(ctx, 20, 20, page))
	require.NoError(t, cache.Set(ctx, cachedProduct()))

	require.NoError(t, cache.InvalidateFeatured(ctx))

	_, ok := cache.GetFeatured(ctx, 20, 0)
	assert.False(t, ok)
	_, ok = cache.GetFeatured(ctx, 20, 20)
	assert.False(t, ok)

	// Per-product entries survive a featured invalidation.
	_, ok = cache.Get(ctx, "course-1")
	assert.True(t, ok)
}

func TestProductCache_RedisDownDegradesToMiss(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer client.Close()

	cache := NewProductCache(client, time.Minute, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, cachedProduct()))

	mr.Close()

	got, ok := cache.Get(ctx, "course-1")
	assert.False(t, ok)
	assert.Nil(t, got)

	// Writes fail loudly but do not panic
	assert.Error(t, cache.Set(ctx, cachedProduct()))
}
