package repository

import (
	"context"
	"fmt"

	"studio-insight/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// digitalProductRepository implements DigitalProductRepository using PostgreSQL.
type digitalProductRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDigitalProductRepository creates a new PostgreSQL-backed digital product repository.
func NewDigitalProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) DigitalProductRepository {
	return &digitalProductRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "digital_product").Logger(),
	}
}

const digitalProductColumns = `id, product_id, file_name, file_type, file_size, file_key,
	download_limit, expires_at, created_at`

func scanDigitalProduct(row pgx.Row) (*model.DigitalProduct, error) {
	var dp model.DigitalProduct
	err := row.Scan(
		&dp.ID, &dp.ProductID, &dp.FileName, &dp.FileType, &dp.FileSize,
		&dp.FileKey, &dp.DownloadLimit, &dp.ExpiresAt, &dp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &dp, nil
}

// Create registers a downloadable file under a product.
func (r *digitalProductRepository) Create(ctx context.Context, dp *model.DigitalProduct) error {
	query := `
		INSERT INTO digital_products (id, product_id, file_name, file_type, file_size,
			file_key, download_limit, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		dp.ID, dp.ProductID, dp.FileName, dp.FileType, dp.FileSize,
		dp.FileKey, dp.DownloadLimit, dp.ExpiresAt, dp.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("digital_product_id", dp.ID.String()).
			Str("product_id", dp.ProductID).
			Msg("failed to create digital product")
		return fmt.Errorf("failed to create digital product: %w", err)
	}

	r.logger.Debug().
		Str("digital_product_id", dp.ID.String()).
		Str("file_name", dp.FileName).
		Msg("digital product created")

	return nil
}

// GetByID retrieves a digital product.
func (r *digitalProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.DigitalProduct, error) {
	query := fmt.Sprintf(`SELECT %s FROM digital_products WHERE id = $1`, digitalProductColumns)

	dp, err := scanDigitalProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("digital_product_id", id.String()).Msg("digital product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("digital_product_id", id.String()).Msg("failed to query digital product")
		return nil, fmt.Errorf("failed to query digital product: %w", err)
	}

	return dp, nil
}

// ListByProduct retrieves all files registered under a product.
func (r *digitalProductRepository) ListByProduct(ctx context.Context, productID string) ([]model.DigitalProduct, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM digital_products
		WHERE product_id = $1
		ORDER BY created_at
	`, digitalProductColumns)

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID).Msg("failed to query digital products")
		return nil, fmt.Errorf("failed to query digital products: %w", err)
	}
	defer rows.Close()

	var dps []model.DigitalProduct
	for rows.Next() {
		dp, err := scanDigitalProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan digital product row")
			return nil, fmt.Errorf("failed to scan digital product: %w", err)
		}
		dps = append(dps, *dp)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating digital product rows")
		return nil, fmt.Errorf("error iterating digital products: %w", err)
	}

	return dps, nil
}

// Delete removes a digital product and its download rows.
func (r *digitalProductRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM digital_products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("digital_product_id", id.String()).Msg("failed to delete digital product")
		return false, fmt.Errorf("failed to delete digital product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// GetDownloadCount returns the user's download count, zero when no row exists.
func (r *digitalProductRepository) GetDownloadCount(ctx context.Context, userID, digitalProductID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(
			(SELECT download_count FROM user_downloads WHERE user_id = $1 AND digital_product_id = $2),
			0)
	`

	var count int
	err := r.pool.QueryRow(ctx, query, userID, digitalProductID).Scan(&count)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("digital_product_id", digitalProductID.String()).
			Msg("failed to query download count")
		return 0, fmt.Errorf("failed to query download count: %w", err)
	}

	return count, nil
}

// IncrementDownload upserts the user's download row in one conditional
// statement. The WHERE clause on the conflict update keeps two concurrent
// downloads from both taking the last slot under a download limit.
func (r *digitalProductRepository) IncrementDownload(ctx context.Context, userID, digitalProductID uuid.UUID, limit *int) (bool, error) {
	query := `
		INSERT INTO user_downloads (user_id, digital_product_id, download_count, last_downloaded_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (user_id, digital_product_id)
		DO UPDATE SET download_count = user_downloads.download_count + 1, last_downloaded_at = NOW()
		WHERE $3::int IS NULL OR user_downloads.download_count < $3::int
	`

	tag, err := r.pool.Exec(ctx, query, userID, digitalProductID, limit)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID.String()).
			Str("digital_product_id", digitalProductID.String()).
			Msg("failed to increment download count")
		return false, fmt.Errorf("failed to increment download count: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().
			Str("user_id", userID.String()).
			Str("digital_product_id", digitalProductID.String()).
			Msg("download limit exhausted")
		return false, nil
	}

	return true, nil
}

// Stats aggregates total downloads and distinct users for the file.
func (r *digitalProductRepository) Stats(ctx context.Context, digitalProductID uuid.UUID) (*model.DownloadStats, error) {
	query := `
		SELECT COALESCE(SUM(download_count), 0), COUNT(DISTINCT user_id)
		FROM user_downloads
		WHERE digital_product_id = $1
	`

	var stats model.DownloadStats
	err := r.pool.QueryRow(ctx, query, digitalProductID).Scan(&stats.TotalDownloads, &stats.UniqueUsers)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("digital_product_id", digitalProductID.String()).
			Msg("failed to query download stats")
		return nil, fmt.Errorf("failed to query download stats: %w", err)
	}

	return &stats, nil
}
