package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the overall status of an order.
type Status string

const (
	StatusPending              Status = "pending"
	StatusConfirmed            Status = "confirmed"
	StatusShipping             Status = "shipping"
	StatusDelivered            Status = "delivered"
	StatusProcessingAfterSales Status = "processing_aftersales"
	StatusCanceled             Status = "canceled"
)

// DeliveryStatus tracks fulfillment separately from the overall status,
// since an order under return/exchange processing is still delivered.
type DeliveryStatus string

const (
	DeliveryPreparing DeliveryStatus = "preparing"
	DeliveryShipping  DeliveryStatus = "shipping"
	DeliveryDelivered DeliveryStatus = "delivered"
)

// Order represents a customer purchase.
type Order struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNo        string          `json:"order_no" gorm:"uniqueIndex;not null"`
	CustomerID     uuid.UUID       `json:"customer_id" gorm:"type:uuid;not null;index"`
	Status         Status          `json:"status" gorm:"not null;default:pending"`
	DeliveryStatus DeliveryStatus  `json:"delivery_status" gorm:"not null;default:preparing"`
	Total          decimal.Decimal `json:"total" gorm:"type:numeric(14,2)"`
	Currency       string          `json:"currency" gorm:"default:VND"`
	DeliveredAt    *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Relations
	Lines []OrderLine `json:"lines,omitempty" gorm:"foreignKey:OrderID"`
}

// TableName returns the database table name.
func (Order) TableName() string {
	return "orders"
}

// IsDelivered returns true if the order has been delivered.
func (o *Order) IsDelivered() bool {
	return o.DeliveryStatus == DeliveryDelivered
}

// OrderLine is the persisted record of one variant, quantity and
// price-paid within an order.
type OrderLine struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	VariantID uuid.UUID       `json:"variant_id" gorm:"type:uuid;not null;index"`
	Quantity  int             `json:"quantity" gorm:"not null"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric(14,2)"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:numeric(14,2)"` // quantity * unit_price
	CreatedAt time.Time       `json:"created_at"`
}

// TableName returns the database table name.
func (OrderLine) TableName() string {
	return "order_lines"
}
