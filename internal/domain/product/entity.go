// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a catalog entry. The catalog is read-only for this service.
type Product struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	SKU            string         `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name           string         `gorm:"not null;size:255" json:"name"`
	Description    string         `gorm:"type:text" json:"description"`
	Image          string         `gorm:"size:500" json:"image"`
	Includes       string         `gorm:"size:500" json:"includes"`
	Price          int64          `gorm:"not null" json:"price"`                  // Price in cents
	PriceReference string         `gorm:"size:255;index" json:"price_reference"` // Stripe price id
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}
