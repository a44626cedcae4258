package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines the interface for order data access.
type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderWithLines(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, int64, error)
	UpdateOrder(ctx context.Context, order *Order) error
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	AddOrderLine(ctx context.Context, line *OrderLine) error
	GetLine(ctx context.Context, orderID, variantID uuid.UUID) (*OrderLine, error)
	GetUnitPrice(ctx context.Context, orderID, variantID uuid.UUID) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new order repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrder(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) GetOrderWithLines(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrdersByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, int64, error) {
	var orders []*Order
	var total int64

	query := r.db.WithContext(ctx).Model(&Order{}).Where("customer_id = ?", customerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Lines").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *repository) UpdateOrder(ctx context.Context, order *Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *repository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) AddOrderLine(ctx context.Context, line *OrderLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) GetLine(ctx context.Context, orderID, variantID uuid.UUID) (*OrderLine, error) {
	var line OrderLine
	err := r.db.WithContext(ctx).
		First(&line, "order_id = ? AND variant_id = ?", orderID, variantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineNotFound
		}
		return nil, err
	}
	return &line, nil
}

func (r *repository) GetUnitPrice(ctx context.Context, orderID, variantID uuid.UUID) (decimal.Decimal, error) {
	line, err := r.GetLine(ctx, orderID, variantID)
	if err != nil {
		return decimal.Zero, err
	}
	return line.UnitPrice, nil
}
