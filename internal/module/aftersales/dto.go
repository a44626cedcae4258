package aftersales

import "github.com/google/uuid"

// CreateReturnDTO is the request body for creating a return request.
type CreateReturnDTO struct {
	OrderID    uuid.UUID `json:"order_id" binding:"required"`
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
	VariantID  uuid.UUID `json:"variant_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
	Reason     string    `json:"reason" binding:"required"`
}

// CreateExchangeDTO is the request body for creating an exchange request.
type CreateExchangeDTO struct {
	OrderID      uuid.UUID `json:"order_id" binding:"required"`
	CustomerID   uuid.UUID `json:"customer_id" binding:"required"`
	OldVariantID uuid.UUID `json:"old_variant_id" binding:"required"`
	NewVariantID uuid.UUID `json:"new_variant_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"required,min=1"`
	Reason       string    `json:"reason" binding:"required"`
}

// AcceptDTO is the request body for approving a request. All fields
// are optional; staff may approve without return-shipping details.
type AcceptDTO struct {
	ShippingAddress       string `json:"shipping_address"`
	PackagingInstructions string `json:"packaging_instructions"`
}

// RejectDTO is the request body for declining a request.
type RejectDTO struct {
	Reason string `json:"reason"`
}

// MarkInvalidDTO is the request body for failing an inspection.
type MarkInvalidDTO struct {
	Note string `json:"note"`
}

// ProcessRefundDTO is the request body for executing a refund.
type ProcessRefundDTO struct {
	Method string `json:"method" binding:"required"`
}
