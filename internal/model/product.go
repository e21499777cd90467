package model

import "time"

// ProductType identifies the kind of catalogue product.
type ProductType string

const (
	ProductTypeCourse ProductType = "course"
	ProductTypeEbook  ProductType = "ebook"
	ProductTypeReview ProductType = "review"
)

// Valid reports whether the product type is one of the known kinds.
func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeCourse, ProductTypeEbook, ProductTypeReview:
		return true
	}
	return false
}

// Product represents a catalogue product. Prices are integer minor
// currency units (cents), never floats.
type Product struct {
	ID           string      `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Description  string      `json:"description" db:"description"`
	Price        int64       `json:"price" db:"price"`
	Type         ProductType `json:"type" db:"type"`
	Category     *string     `json:"category,omitempty" db:"category"`
	IsActive     bool        `json:"isActive" db:"is_active"`
	Featured     bool        `json:"featured" db:"featured"`
	ComingSoon   bool        `json:"comingSoon" db:"coming_soon"`
	SalesCount   int         `json:"salesCount" db:"sales_count"`
	Duration     *string     `json:"duration,omitempty" db:"duration"`
	Level        *string     `json:"level,omitempty" db:"level"`
	StudentCount *int        `json:"studentCount,omitempty" db:"student_count"`
	LessonCount  *int        `json:"lessonCount,omitempty" db:"lesson_count"`
	ExternalURL  *string     `json:"externalUrl,omitempty" db:"external_url"`
	ImageURL     *string     `json:"imageUrl,omitempty" db:"image_url"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}

// ProductFilter narrows catalogue listings.
type ProductFilter struct {
	Type       *ProductType
	ActiveOnly bool
	Featured   *bool
}
