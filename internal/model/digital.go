package model

import (
	"time"

	"github.com/google/uuid"
)

// DigitalProduct is a downloadable file attached to a catalogue
// product. DownloadLimit and ExpiresAt are optional; nil means
// unlimited / never expires.
type DigitalProduct struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ProductID     string     `json:"productId" db:"product_id"`
	FileName      string     `json:"fileName" db:"file_name"`
	FileType      string     `json:"fileType" db:"file_type"`
	FileSize      int64      `json:"fileSize" db:"file_size"`
	FileKey       string     `json:"-" db:"file_key"`
	DownloadLimit *int       `json:"downloadLimit,omitempty" db:"download_limit"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
}

// DownloadStats aggregates download usage across users.
type DownloadStats struct {
	TotalDownloads int `json:"totalDownloads"`
	UniqueUsers    int `json:"uniqueUsers"`
}

// AddDigitalProductRequest is the admin payload for registering a file.
type AddDigitalProductRequest struct {
	ProductID     string     `json:"productId"`
	FileName      string     `json:"fileName"`
	FileType      string     `json:"fileType"`
	FileSize      int64      `json:"fileSize"`
	FileKey       string     `json:"fileKey"`
	DownloadLimit *int       `json:"downloadLimit,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// DownloadResponse carries a short-lived download reference.
type DownloadResponse struct {
	URL       string    `json:"url"`
	FileName  string    `json:"fileName"`
	ExpiresAt time.Time `json:"expiresAt"`
}
