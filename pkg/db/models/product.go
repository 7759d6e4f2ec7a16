package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog row served to the storefront. Ratings are aggregated
// upstream; a NULL average means the product has never been rated.
type Product struct {
	ID            string          `gorm:"column:id;primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	Description   string          `gorm:"column:description;not null;default:''"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Category      string          `gorm:"column:category;not null;index:products_category_idx"`
	Brand         string          `gorm:"column:brand;not null;index:products_brand_idx"`
	Available     bool            `gorm:"column:available;not null"`
	Quantity      int             `gorm:"column:quantity;not null;default:0"`
	RatingAverage *float64        `gorm:"column:rating_average"`
	RatingCount   int             `gorm:"column:rating_count;not null;default:0"`
	ImageURL      *string         `gorm:"column:image_url"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
