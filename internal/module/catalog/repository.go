package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines the interface for catalog data access.
type Repository interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	GetProductWithVariants(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, category string, limit, offset int) ([]*Product, int64, error)

	GetVariant(ctx context.Context, id uuid.UUID) (*ProductVariant, error)
	GetCurrentPrice(ctx context.Context, variantID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) GetProductWithVariants(ctx context.Context, id uuid.UUID) (*Product, error) {
	var product Product
	err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) ListProducts(ctx context.Context, category string, limit, offset int) ([]*Product, int64, error) {
	var products []*Product
	var total int64

	query := r.db.WithContext(ctx).Model(&Product{}).Where("active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Variants").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *repository) GetVariant(ctx context.Context, id uuid.UUID) (*ProductVariant, error) {
	var variant ProductVariant
	err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}
	return &variant, nil
}

func (r *repository) GetCurrentPrice(ctx context.Context, variantID uuid.UUID) (decimal.Decimal, error) {
	variant, err := r.GetVariant(ctx, variantID)
	if err != nil {
		return decimal.Zero, err
	}
	return variant.Price, nil
}
