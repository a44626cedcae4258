package aftersales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnRequest is one customer attempt to send back a delivered item
// for a refund.
type ReturnRequest struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestNo string    `json:"request_no" gorm:"uniqueIndex;not null"`

	OrderID    uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	CustomerID uuid.UUID `json:"customer_id" gorm:"type:uuid;not null;index"`
	VariantID  uuid.UUID `json:"variant_id" gorm:"type:uuid;not null"`
	Quantity   int       `json:"quantity" gorm:"not null"`

	Reason           string `json:"reason" gorm:"not null"`
	StaffNote        string `json:"staff_note"`
	RejectionReason  string `json:"rejection_reason"`
	InvalidityReason string `json:"invalidity_reason"`

	Status           ReturnStatus      `json:"status" gorm:"not null;default:pending;index"`
	StatusInspection *InspectionStatus `json:"status_inspection,omitempty"`

	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ReceivedAt  *time.Time `json:"received_at,omitempty"`
	InspectedAt *time.Time `json:"inspected_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`

	// RefundAmount is computed from the original order line, never
	// user-supplied.
	RefundAmount *decimal.Decimal `json:"refund_amount,omitempty" gorm:"type:numeric(14,2)"`
	RefundMethod string           `json:"refund_method,omitempty"`

	ReturnShippingAddress string `json:"return_shipping_address,omitempty"`
	PackagingInstructions string `json:"packaging_instructions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (ReturnRequest) TableName() string {
	return "return_requests"
}

// ExchangeRequest is one customer attempt to swap a delivered item for
// a different size/color of the same product.
type ExchangeRequest struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestNo string    `json:"request_no" gorm:"uniqueIndex;not null"`

	OrderID      uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	CustomerID   uuid.UUID `json:"customer_id" gorm:"type:uuid;not null;index"`
	OldVariantID uuid.UUID `json:"old_variant_id" gorm:"type:uuid;not null"`
	NewVariantID uuid.UUID `json:"new_variant_id" gorm:"type:uuid;not null"`
	Quantity     int       `json:"quantity" gorm:"not null"`

	Reason           string `json:"reason" gorm:"not null"`
	StaffNote        string `json:"staff_note"`
	RejectionReason  string `json:"rejection_reason"`
	InvalidityReason string `json:"invalidity_reason"`

	Status             ExchangeStatus     `json:"status" gorm:"not null;default:pending;index"`
	StatusInspection   *InspectionStatus  `json:"status_inspection,omitempty"`
	ExtraPaymentStatus ExtraPaymentStatus `json:"extra_payment_status" gorm:"default:none"`

	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	OldReceivedAt  *time.Time `json:"old_received_at,omitempty"`
	InspectedAt    *time.Time `json:"inspected_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`

	// NewOrderID is set at most once; after that the replacement order
	// is the sole source of truth for delivery of the new item.
	NewOrderID        *uuid.UUID `json:"new_order_id,omitempty" gorm:"type:uuid"`
	NewOrderCreatedAt *time.Time `json:"new_order_created_at,omitempty"`

	ReturnShippingAddress string `json:"return_shipping_address,omitempty"`
	PackagingInstructions string `json:"packaging_instructions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (ExchangeRequest) TableName() string {
	return "exchange_requests"
}

// AuditLogEntry is an append-only record of a workflow transition.
// Entries are never updated or deleted.
type AuditLogEntry struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RequestID  uuid.UUID   `json:"request_id" gorm:"type:uuid;not null;index"`
	Kind       RequestKind `json:"kind" gorm:"not null"`
	Action     Action      `json:"action" gorm:"not null"`
	FromStatus string      `json:"from_status"`
	ToStatus   string      `json:"to_status"`
	Note       string      `json:"note"`
	ActorType  ActorType   `json:"actor_type" gorm:"not null"`
	ActorID    *uuid.UUID  `json:"actor_id,omitempty" gorm:"type:uuid"`
	CreatedAt  time.Time   `json:"created_at" gorm:"index"`
}

// TableName returns the database table name.
func (AuditLogEntry) TableName() string {
	return "aftersales_audit_log"
}

// Actor is whoever triggered a transition.
type Actor struct {
	Type ActorType
	ID   *uuid.UUID
}

// SystemActor is the actor recorded for automated transitions.
var SystemActor = Actor{Type: ActorSystem}
