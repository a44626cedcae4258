package loyalty

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/random"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrCardNotFound is returned when the customer has no loyalty card.
var ErrCardNotFound = errors.New("loyalty card not found")

// Repository defines the interface for loyalty card data access.
type Repository interface {
	GetByCustomer(ctx context.Context, customerID uuid.UUID) (*LoyaltyCard, error)
	Create(ctx context.Context, customerID uuid.UUID) (*LoyaltyCard, error)
	Credit(ctx context.Context, customerID uuid.UUID, points decimal.Decimal) (*LoyaltyCard, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new loyalty repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByCustomer(ctx context.Context, customerID uuid.UUID) (*LoyaltyCard, error) {
	var card LoyaltyCard
	err := r.db.WithContext(ctx).First(&card, "customer_id = ?", customerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return &card, nil
}

func (r *repository) Create(ctx context.Context, customerID uuid.UUID) (*LoyaltyCard, error) {
	now := time.Now()
	card := &LoyaltyCard{
		ID:         uuid.New(),
		CardNo:     fmt.Sprintf("LC-%s-%s", now.Format("20060102"), random.UpperAlphaNum(5)),
		CustomerID: customerID,
		Points:     decimal.Zero,
		IssuedAt:   now,
		UpdatedAt:  now,
	}
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}

func (r *repository) Credit(ctx context.Context, customerID uuid.UUID, points decimal.Decimal) (*LoyaltyCard, error) {
	card, err := r.GetByCustomer(ctx, customerID)
	if errors.Is(err, ErrCardNotFound) {
		card, err = r.Create(ctx, customerID)
	}
	if err != nil {
		return nil, err
	}

	card.Points = card.Points.Add(points)
	card.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(card).Error; err != nil {
		return nil, err
	}
	return card, nil
}
