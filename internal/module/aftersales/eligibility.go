package aftersales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/order"
	apperrors "github.com/diemthanh21/shopthoitrang-sub001/internal/shared/errors"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/random"
	"github.com/google/uuid"
)

// CreateReturnInput is the creation payload for a return request.
type CreateReturnInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	VariantID  uuid.UUID
	Quantity   int
	Reason     string
}

// CreateExchangeInput is the creation payload for an exchange request.
type CreateExchangeInput struct {
	OrderID      uuid.UUID
	CustomerID   uuid.UUID
	OldVariantID uuid.UUID
	NewVariantID uuid.UUID
	Quantity     int
	Reason       string
}

// EligibilityValidator gates request creation. All checks run in order
// and fail fast; nothing is persisted until every check passes.
type EligibilityValidator struct {
	orders     OrderStore
	variants   VariantStore
	promotions PromotionStore
	window     time.Duration

	// now is replaceable in tests
	now func() time.Time
}

// NewEligibilityValidator creates a new eligibility validator.
func NewEligibilityValidator(orders OrderStore, variants VariantStore, promotions PromotionStore, window time.Duration) *EligibilityValidator {
	return &EligibilityValidator{
		orders:     orders,
		variants:   variants,
		promotions: promotions,
		window:     window,
		now:        time.Now,
	}
}

// ValidateReturn checks a return creation payload and returns the
// normalized request with its initial status.
func (v *EligibilityValidator) ValidateReturn(ctx context.Context, input CreateReturnInput) (*ReturnRequest, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.ValidationError("reason is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.ValidationError("quantity must be positive")
	}

	ord, err := v.checkOrder(ctx, input.OrderID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	variant, err := v.variants.GetVariant(ctx, input.VariantID)
	if err != nil {
		return nil, apperrors.NotFound("product variant")
	}

	line, err := v.orders.GetLine(ctx, input.OrderID, input.VariantID)
	if err != nil {
		return nil, apperrors.ValidationError("variant was not purchased on this order")
	}
	if input.Quantity > line.Quantity {
		return nil, apperrors.ValidationError(
			fmt.Sprintf("quantity %d exceeds ordered quantity %d", input.Quantity, line.Quantity))
	}

	if err := v.checkPromotion(ctx, variant.ProductID); err != nil {
		return nil, err
	}

	now := v.now()
	return &ReturnRequest{
		ID:         uuid.New(),
		RequestNo:  generateRequestNo("RTN"),
		OrderID:    ord.ID,
		CustomerID: input.CustomerID,
		VariantID:  input.VariantID,
		Quantity:   input.Quantity,
		Reason:     strings.TrimSpace(input.Reason),
		Status:     ReturnPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ValidateExchange checks an exchange creation payload and returns the
// normalized request with its initial status.
func (v *EligibilityValidator) ValidateExchange(ctx context.Context, input CreateExchangeInput) (*ExchangeRequest, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, apperrors.ValidationError("reason is required")
	}
	if input.Quantity <= 0 {
		return nil, apperrors.ValidationError("quantity must be positive")
	}

	ord, err := v.checkOrder(ctx, input.OrderID, input.CustomerID)
	if err != nil {
		return nil, err
	}

	oldVariant, err := v.variants.GetVariant(ctx, input.OldVariantID)
	if err != nil {
		return nil, apperrors.NotFound("old product variant")
	}
	newVariant, err := v.variants.GetVariant(ctx, input.NewVariantID)
	if err != nil {
		return nil, apperrors.NotFound("new product variant")
	}

	// Exchanges are size/color swaps only, never a different product.
	if oldVariant.ProductID != newVariant.ProductID {
		return nil, apperrors.ValidationError("old and new variants must belong to the same product")
	}

	line, err := v.orders.GetLine(ctx, input.OrderID, input.OldVariantID)
	if err != nil {
		return nil, apperrors.ValidationError("variant was not purchased on this order")
	}
	if input.Quantity > line.Quantity {
		return nil, apperrors.ValidationError(
			fmt.Sprintf("quantity %d exceeds ordered quantity %d", input.Quantity, line.Quantity))
	}

	if err := v.checkPromotion(ctx, oldVariant.ProductID); err != nil {
		return nil, err
	}

	now := v.now()
	return &ExchangeRequest{
		ID:                 uuid.New(),
		RequestNo:          generateRequestNo("EXC"),
		OrderID:            ord.ID,
		CustomerID:         input.CustomerID,
		OldVariantID:       input.OldVariantID,
		NewVariantID:       input.NewVariantID,
		Quantity:           input.Quantity,
		Reason:             strings.TrimSpace(input.Reason),
		Status:             ExchangePending,
		ExtraPaymentStatus: ExtraPaymentNone,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// checkOrder verifies ownership, delivery state and the request window.
func (v *EligibilityValidator) checkOrder(ctx context.Context, orderID, customerID uuid.UUID) (*order.Order, error) {
	ord, err := v.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, apperrors.NotFound("order")
	}
	if ord.CustomerID != customerID {
		return nil, apperrors.Forbidden("order does not belong to this customer")
	}
	if !ord.IsDelivered() {
		return nil, apperrors.InvalidState("order has not been delivered")
	}
	// No delivery timestamp means the window cannot be evaluated; fail closed.
	if ord.DeliveredAt == nil {
		return nil, apperrors.InvalidState("order has no recorded delivery date")
	}
	if v.now().Sub(*ord.DeliveredAt) > v.window {
		return nil, apperrors.WindowExpired("")
	}
	return ord, nil
}

// checkPromotion rejects products covered by a promotion active today.
func (v *EligibilityValidator) checkPromotion(ctx context.Context, productID uuid.UUID) error {
	promos, err := v.promotions.FindActiveForProduct(ctx, productID, v.now())
	if err != nil {
		return apperrors.Internal("failed to check promotions", err)
	}
	if len(promos) > 0 {
		return apperrors.PromotionExcluded("")
	}
	return nil
}

func generateRequestNo(prefix string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102"), random.UpperAlphaNum(5))
}
