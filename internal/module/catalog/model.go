package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable base product. Size/color combinations live on
// ProductVariant; prices are always per variant.
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category" gorm:"index"`
	Active      bool      `json:"active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Variants []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName returns the database table name.
func (Product) TableName() string {
	return "products"
}

// ProductVariant is a purchasable size/color combination of a product.
type ProductVariant struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	SKU       string          `json:"sku" gorm:"uniqueIndex;not null"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(14,2)"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName returns the database table name.
func (ProductVariant) TableName() string {
	return "product_variants"
}
