package promotion

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Promotion is a time-bounded discount covering a product. Items bought
// under an active promotion are excluded from return and exchange.
type Promotion struct {
	ID              uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID       uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	Name            string          `json:"name" gorm:"not null"`
	DiscountPercent decimal.Decimal `json:"discount_percent" gorm:"type:numeric(5,2)"`
	StartDate       time.Time       `json:"start_date" gorm:"not null"`
	EndDate         time.Time       `json:"end_date" gorm:"not null"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TableName returns the database table name.
func (Promotion) TableName() string {
	return "promotions"
}

// ActiveOn returns true if the promotion window [start,end] contains
// the given day.
func (p *Promotion) ActiveOn(day time.Time) bool {
	return !day.Before(p.StartDate) && !day.After(p.EndDate)
}
