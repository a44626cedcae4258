package order

import (
	"context"
	"fmt"
	"time"

	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/random"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service implements order operations.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new order service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetOrder returns an order with its lines.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	return s.repo.GetOrderWithLines(ctx, orderID)
}

// ListOrders returns orders for a customer.
func (s *Service) ListOrders(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, int64, error) {
	return s.repo.ListOrdersByCustomer(ctx, customerID, limit, offset)
}

// GetLine returns the order line for a variant on an order.
func (s *Service) GetLine(ctx context.Context, orderID, variantID uuid.UUID) (*OrderLine, error) {
	return s.repo.GetLine(ctx, orderID, variantID)
}

// GetUnitPrice returns the price charged for a variant on an order line.
func (s *Service) GetUnitPrice(ctx context.Context, orderID, variantID uuid.UUID) (decimal.Decimal, error) {
	return s.repo.GetUnitPrice(ctx, orderID, variantID)
}

// SetStatus updates the overall status of an order.
func (s *Service) SetStatus(ctx context.Context, orderID uuid.UUID, status Status) error {
	return s.repo.SetStatus(ctx, orderID, status)
}

// CreateReplacementOrder creates a new order with a single line for the
// given variant at the given unit price. Used by the exchange workflow
// to ship the replacement item; the price is the one charged on the
// original order line, not the current catalog price.
func (s *Service) CreateReplacementOrder(ctx context.Context, customerID, variantID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*Order, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	amount := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	now := time.Now()

	ord := &Order{
		ID:             uuid.New(),
		OrderNo:        generateOrderNo(),
		CustomerID:     customerID,
		Status:         StatusConfirmed,
		DeliveryStatus: DeliveryPreparing,
		Total:          amount,
		Currency:       "VND",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreateOrder(ctx, ord); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	line := &OrderLine{
		ID:        uuid.New(),
		OrderID:   ord.ID,
		VariantID: variantID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    amount,
		CreatedAt: now,
	}
	if err := s.repo.AddOrderLine(ctx, line); err != nil {
		return nil, fmt.Errorf("create order line: %w", err)
	}
	ord.Lines = []OrderLine{*line}

	s.logger.Info("replacement order created",
		zap.String("order_id", ord.ID.String()),
		zap.String("order_no", ord.OrderNo),
		zap.String("customer_id", customerID.String()),
	)

	return ord, nil
}

func generateOrderNo() string {
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), random.UpperAlphaNum(5))
}
