package storage

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// FileStore issues temporary download references for stored digital
// product files. Callers must run the access gate before asking for a
// URL; the store itself performs no authorisation.
type FileStore interface {
	// PresignDownload returns a short-lived URL for the object at key,
	// along with the instant the URL stops working.
	PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error)
}

// presignAPI is the slice of the S3 presign client this store uses.
type presignAPI interface {
	PresignGetObject(ctx context.Context, input *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// s3Store implements FileStore against AWS S3 using presigned GETs.
type s3Store struct {
	presigner presignAPI
	bucket    string
	prefix    string
	logger    zerolog.Logger
}

// NewS3Store creates an S3-backed file store. prefix is prepended to
// every object key.
func NewS3Store(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (FileStore, error) {
	logger = logger.With().Str("component", "s3-file-store").Logger()

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("prefix", prefix).
		Msg("S3 file store initialised")

	return &s3Store{
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		prefix:    prefix,
		logger:    logger,
	}, nil
}

// PresignDownload returns a presigned GET URL for the object at key.
func (s *s3Store) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	objectKey := s.prefix + key

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Msg("failed to presign download URL")
		return "", time.Time{}, fmt.Errorf("failed to presign download URL (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}

	expiresAt := time.Now().Add(ttl)

	s.logger.Debug().
		Str("key", objectKey).
		Time("expires_at", expiresAt).
		Msg("download URL presigned")

	return req.URL, expiresAt, nil
}
