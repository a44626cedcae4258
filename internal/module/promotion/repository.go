package promotion

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for promotion data access.
type Repository interface {
	// FindActiveForProduct returns promotions whose [start,end] window
	// contains the given day for the given product. An empty result
	// means the product is not excluded from return/exchange.
	FindActiveForProduct(ctx context.Context, productID uuid.UUID, day time.Time) ([]*Promotion, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new promotion repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindActiveForProduct(ctx context.Context, productID uuid.UUID, day time.Time) ([]*Promotion, error) {
	var promotions []*Promotion
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND start_date <= ? AND end_date >= ?", productID, day, day).
		Find(&promotions).Error
	return promotions, err
}
