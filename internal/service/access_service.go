package service

import (
	"context"
	"fmt"
	"time"

	"studio-insight/internal/model"
	"studio-insight/internal/repository"
	"studio-insight/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// accessService implements AccessService. It is the only code path that
// decides download and content eligibility; handlers never consult the
// repositories directly for this.
type accessService struct {
	digitalRepo repository.DigitalProductRepository
	orderRepo   repository.OrderRepository
	fileStore   storage.FileStore
	presignTTL  time.Duration
	now         func() time.Time
	logger      zerolog.Logger
}

// NewAccessService creates a new access control service.
func NewAccessService(
	digitalRepo repository.DigitalProductRepository,
	orderRepo repository.OrderRepository,
	fileStore storage.FileStore,
	presignTTL time.Duration,
	logger zerolog.Logger,
) AccessService {
	return &accessService{
		digitalRepo: digitalRepo,
		orderRepo:   orderRepo,
		fileStore:   fileStore,
		presignTTL:  presignTTL,
		now:         time.Now,
		logger:      logger.With().Str("service", "access").Logger(),
	}
}

// HasUserPurchasedProduct reports whether the user holds a paid order
// containing the product. Orders in pending, failed or refunded state
// never grant access.
func (s *accessService) HasUserPurchasedProduct(ctx context.Context, userID uuid.UUID, productID string) (bool, error) {
	purchased, err := s.orderRepo.HasPaidOrderForProduct(ctx, userID, productID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("product_id", productID).
			Msg("purchase check failed")
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return purchased, nil
}

// CanUserDownload reports whether every download condition holds. It is
// read-only and consumes no download slot.
func (s *accessService) CanUserDownload(ctx context.Context, userID, digitalProductID uuid.UUID) (bool, error) {
	dp, err := s.digitalRepo.GetByID(ctx, digitalProductID)
	if err != nil {
		return false, fmt.Errorf("failed to load digital product: %w", err)
	}
	if dp == nil {
		return false, nil
	}

	if denied := s.checkExpiry(dp, userID); denied {
		return false, nil
	}

	purchased, err := s.HasUserPurchasedProduct(ctx, userID, dp.ProductID)
	if err != nil {
		return false, err
	}
	if !purchased {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Str("digital_product_id", digitalProductID.String()).
			Msg("download denied: no paid order")
		return false, nil
	}

	if dp.DownloadLimit != nil {
		count, err := s.digitalRepo.GetDownloadCount(ctx, userID, digitalProductID)
		if err != nil {
			return false, fmt.Errorf("failed to load download count: %w", err)
		}
		if count >= *dp.DownloadLimit {
			s.logger.Warn().
				Str("user_id", userID.String()).
				Str("digital_product_id", digitalProductID.String()).
				Int("count", count).
				Int("limit", *dp.DownloadLimit).
				Msg("download denied: limit exhausted")
			return false, nil
		}
	}

	return true, nil
}

// checkExpiry reports true when the file has an expiry and now is at or
// past it.
func (s *accessService) checkExpiry(dp *model.DigitalProduct, userID uuid.UUID) bool {
	if dp.ExpiresAt != nil && !s.now().Before(*dp.ExpiresAt) {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Str("digital_product_id", dp.ID.String()).
			Time("expires_at", *dp.ExpiresAt).
			Msg("download denied: file expired")
		return true
	}
	return false
}

// ListProductFiles returns a product's digital files, but only to a
// user who has purchased the product.
func (s *accessService) ListProductFiles(ctx context.Context, userID uuid.UUID, productID string) ([]model.DigitalProduct, error) {
	purchased, err := s.HasUserPurchasedProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Str("product_id", productID).
			Msg("file listing denied: no paid order")
		return nil, model.ErrNotPurchased
	}

	files, err := s.digitalRepo.ListByProduct(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to list digital products")
		return nil, fmt.Errorf("failed to list digital products: %w", err)
	}

	return files, nil
}

// RequestDownload runs the full eligibility chain and consumes a
// download slot. The limit check and the count increment are one
// conditional statement in the repository, so two concurrent requests
// cannot both take the last slot. Any failed condition is a hard
// denial; there is no fallback to allow.
func (s *accessService) RequestDownload(ctx context.Context, userID, digitalProductID uuid.UUID) (*model.DownloadResponse, error) {
	dp, err := s.digitalRepo.GetByID(ctx, digitalProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load digital product: %w", err)
	}
	if dp == nil {
		return nil, model.ErrDigitalProductNotFound
	}

	if denied := s.checkExpiry(dp, userID); denied {
		return nil, model.ErrDownloadDenied
	}

	purchased, err := s.HasUserPurchasedProduct(ctx, userID, dp.ProductID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Str("digital_product_id", digitalProductID.String()).
			Msg("download denied: no paid order")
		return nil, model.ErrDownloadDenied
	}

	if dp.DownloadLimit != nil && *dp.DownloadLimit < 1 {
		return nil, model.ErrDownloadDenied
	}

	granted, err := s.digitalRepo.IncrementDownload(ctx, userID, digitalProductID, dp.DownloadLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to record download: %w", err)
	}
	if !granted {
		return nil, model.ErrDownloadDenied
	}

	url, expiresAt, err := s.fileStore.PresignDownload(ctx, dp.FileKey, s.presignTTL)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("digital_product_id", digitalProductID.String()).
			Msg("failed to presign download")
		return nil, fmt.Errorf("failed to presign download: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("digital_product_id", digitalProductID.String()).
		Str("file_name", dp.FileName).
		Msg("download granted")

	return &model.DownloadResponse{
		URL:       url,
		FileName:  dp.FileName,
		ExpiresAt: expiresAt,
	}, nil
}

// AddDigitalProduct registers a downloadable file under a product.
func (s *accessService) AddDigitalProduct(ctx context.Context, req *model.AddDigitalProductRequest) (*model.DigitalProduct, error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}
	if req.ProductID == "" {
		return nil, model.NewValidationError("product ID is required")
	}
	if req.FileName == "" || req.FileKey == "" {
		return nil, model.NewValidationError("file name and file key are required")
	}
	if req.DownloadLimit != nil && *req.DownloadLimit < 1 {
		return nil, model.NewValidationError("download limit must be at least 1")
	}

	dp := &model.DigitalProduct{
		ID:            uuid.New(),
		ProductID:     req.ProductID,
		FileName:      req.FileName,
		FileType:      req.FileType,
		FileSize:      req.FileSize,
		FileKey:       req.FileKey,
		DownloadLimit: req.DownloadLimit,
		ExpiresAt:     req.ExpiresAt,
		CreatedAt:     s.now(),
	}

	if err := s.digitalRepo.Create(ctx, dp); err != nil {
		s.logger.Error().Err(err).Str("product_id", req.ProductID).Msg("failed to add digital product")
		return nil, fmt.Errorf("failed to add digital product: %w", err)
	}

	s.logger.Info().
		Str("digital_product_id", dp.ID.String()).
		Str("product_id", dp.ProductID).
		Str("file_name", dp.FileName).
		Msg("digital product registered")

	return dp, nil
}

// RemoveDigitalProduct deletes a downloadable file.
func (s *accessService) RemoveDigitalProduct(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.digitalRepo.Delete(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("digital_product_id", id.String()).Msg("failed to delete digital product")
		return fmt.Errorf("failed to delete digital product: %w", err)
	}
	if !deleted {
		return model.ErrDigitalProductNotFound
	}

	s.logger.Info().Str("digital_product_id", id.String()).Msg("digital product deleted")
	return nil
}

// DownloadStats aggregates download usage for a file.
func (s *accessService) DownloadStats(ctx context.Context, id uuid.UUID) (*model.DownloadStats, error) {
	dp, err := s.digitalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load digital product: %w", err)
	}
	if dp == nil {
		return nil, model.ErrDigitalProductNotFound
	}

	stats, err := s.digitalRepo.Stats(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("digital_product_id", id.String()).Msg("failed to load download stats")
		return nil, fmt.Errorf("failed to load download stats: %w", err)
	}

	return stats, nil
}
