package service

import (
	"context"
	"testing"
	"time"

	"studio-insight/internal/cache"
	"studio-insight/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testProductCache(t *testing.T) *cache.ProductCache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewProductCache(client, time.Minute, zerolog.Nop())
}

func TestProductService_GetByID_CacheMissThenHit(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, testProductCache(t), zerolog.Nop())

	p := activeProduct("video-editing-course", 4900)
	mockProductRepo.On("GetByID", ctx, "video-editing-course").Return(p, nil).Once()

	got, err := service.GetByID(ctx, "video-editing-course")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	// Second read is served from the cache; the repository expectation
	// above allows exactly one call.
	got, err = service.GetByID(ctx, "video-editing-course")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	mockProductRepo.AssertExpectations(t)
}

func TestProductService_GetByID_NilCache(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, nil, zerolog.Nop())

	p := activeProduct("video-editing-course", 4900)
	mockProductRepo.On("GetByID", ctx, "video-editing-course").Return(p, nil)

	got, err := service.GetByID(ctx, "video-editing-course")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, nil, zerolog.Nop())

	mockProductRepo.On("GetByID", ctx, "missing").Return(nil, nil)

	got, err := service.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrProductNotFound)
	assert.Nil(t, got)
}

func TestProductService_Update_InvalidatesCache(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, testProductCache(t), zerolog.Nop())

	p := activeProduct("video-editing-course", 4900)
	mockProductRepo.On("GetByID", ctx, "video-editing-course").Return(p, nil).Twice()
	mockProductRepo.On("Update", ctx, mock.AnythingOfType("*model.Product")).Return(true, nil)

	_, err := service.GetByID(ctx, "video-editing-course")
	require.NoError(t, err)

	updated := activeProduct("video-editing-course", 5900)
	require.NoError(t, service.Update(ctx, updated))

	// The cached copy was dropped, so this read goes back to the repository.
	_, err = service.GetByID(ctx, "video-editing-course")
	require.NoError(t, err)

	mockProductRepo.AssertExpectations(t)
}

func TestProductService_List_FeaturedCacheMissThenHit(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, testProductCache(t), zerolog.Nop())

	featured := true
	filter := model.ProductFilter{ActiveOnly: true, Featured: &featured}
	page := []model.Product{*activeProduct("video-editing-course", 4900)}
	mockProductRepo.On("List", ctx, filter, 20, 0).Return(page, nil).Once()

	got, err := service.List(ctx, filter, 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Second read is served from the cache; the repository expectation
	// above allows exactly one call.
	got, err = service.List(ctx, filter, 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "video-editing-course", got[0].ID)

	mockProductRepo.AssertExpectations(t)
}

func TestProductService_List_FilteredListingsBypassCache(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, testProductCache(t), zerolog.Nop())

	featured := true
	courseType := model.ProductTypeCourse
	typed := model.ProductFilter{ActiveOnly: true, Featured: &featured, Type: &courseType}
	admin := model.ProductFilter{Featured: &featured}

	mockProductRepo.On("List", ctx, typed, 20, 0).Return([]model.Product{}, nil).Twice()
	mockProductRepo.On("List", ctx, admin, 20, 0).Return([]model.Product{}, nil).Twice()

	for i := 0; i < 2; i++ {
		_, err := service.List(ctx, typed, 20, 0)
		require.NoError(t, err)
		_, err = service.List(ctx, admin, 20, 0)
		require.NoError(t, err)
	}

	mockProductRepo.AssertExpectations(t)
}

func TestProductService_Update_InvalidatesFeaturedListing(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, testProductCache(t), zerolog.Nop())

	featured := true
	filter := model.ProductFilter{ActiveOnly: true, Featured: &featured}
	page := []model.Product{*activeProduct("video-editing-course", 4900)}
	mockProductRepo.On("List", ctx, filter, 20, 0).Return(page, nil).Twice()
	mockProductRepo.On("Update", ctx, mock.AnythingOfType("*model.Product")).Return(true, nil)

	_, err := service.List(ctx, filter, 20, 0)
	require.NoError(t, err)

	require.NoError(t, service.Update(ctx, activeProduct("video-editing-course", 5900)))

	// The cached page was dropped, so this read goes back to the repository.
	_, err = service.List(ctx, filter, 20, 0)
	require.NoError(t, err)

	mockProductRepo.AssertExpectations(t)
}

func TestProductService_List_ClampsPagination(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, nil, zerolog.Nop())

	filter := model.ProductFilter{ActiveOnly: true}
	mockProductRepo.On("List", ctx, filter, 20, 0).Return([]model.Product{}, nil).Once()
	mockProductRepo.On("List", ctx, filter, 100, 0).Return([]model.Product{}, nil).Once()

	_, err := service.List(ctx, filter, 0, -5)
	require.NoError(t, err)

	_, err = service.List(ctx, filter, 1000, 0)
	require.NoError(t, err)

	mockProductRepo.AssertExpectations(t)
}

func TestProductService_Create_Validation(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, nil, zerolog.Nop())

	tests := []struct {
		name string
		p    *model.Product
	}{
		{"nil product", nil},
		{"missing id", &model.Product{Name: "x", Price: 100, Type: model.ProductTypeCourse}},
		{"missing name", &model.Product{ID: "x", Price: 100, Type: model.ProductTypeCourse}},
		{"negative price", &model.Product{ID: "x", Name: "x", Price: -1, Type: model.ProductTypeCourse}},
		{"bad type", &model.Product{ID: "x", Name: "x", Price: 100, Type: "subscription"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Create(ctx, tt.p)
			require.Error(t, err)

			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, model.ErrCodeValidation, domainErr.Code)
		})
	}

	mockProductRepo.AssertNotCalled(t, "Create")
}

func TestProductService_Delete_NotFound(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	service := NewProductService(mockProductRepo, nil, zerolog.Nop())

	mockProductRepo.On("Delete", ctx, "missing").Return(false, nil)

	assert.ErrorIs(t, service.Delete(ctx, "missing"), model.ErrProductNotFound)
}
