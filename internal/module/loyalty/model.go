package loyalty

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoyaltyCard tracks accumulated points for a customer. Tier computation
// happens in a separate service; this module only stores the balance.
type LoyaltyCard struct {
	ID         uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CardNo     string          `json:"card_no" gorm:"uniqueIndex;not null"`
	CustomerID uuid.UUID       `json:"customer_id" gorm:"type:uuid;not null;uniqueIndex"`
	Points     decimal.Decimal `json:"points" gorm:"type:numeric(14,2)"`
	IssuedAt   time.Time       `json:"issued_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName returns the database table name.
func (LoyaltyCard) TableName() string {
	return "loyalty_cards"
}
