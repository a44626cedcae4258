package aftersales

import (
	"context"
	"fmt"
	"time"

	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/order"
	apperrors "github.com/diemthanh21/shopthoitrang-sub001/internal/shared/errors"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExchangeService runs the exchange request state machine.
//
//	PENDING -> APPROVED_AWAITING_OLD_SHIPMENT -> OLD_RECEIVED_AWAITING_INSPECTION
//	        -> {INVALID | AWAITING_NEW_ORDER} -> NEW_ORDER_SHIPPING -> COMPLETED
//	PENDING -> REJECTED
//
// Completion happens either by staff action or by the delivery sync,
// which closes exchanges whose replacement order has been delivered.
type ExchangeService struct {
	repo      Repository
	orders    OrderStore
	variants  VariantStore
	validator *EligibilityValidator
	audit     *AuditWriter
	notifier  *Notifier
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewExchangeService creates a new exchange workflow service.
func NewExchangeService(repo Repository, orders OrderStore, variants VariantStore, validator *EligibilityValidator, audit *AuditWriter, notifier *Notifier, logger *zap.Logger, m *metrics.Metrics) *ExchangeService {
	return &ExchangeService{
		repo:      repo,
		orders:    orders,
		variants:  variants,
		validator: validator,
		audit:     audit,
		notifier:  notifier,
		logger:    logger,
		metrics:   m,
	}
}

// Create validates eligibility and persists a new pending exchange request.
func (s *ExchangeService) Create(ctx context.Context, input CreateExchangeInput, actor Actor) (*ExchangeRequest, error) {
	req, err := s.validator.ValidateExchange(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateExchange(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to create exchange request", err)
	}

	s.audit.Append(ctx, req.ID, KindExchange, ActionCreate, "", string(ExchangePending), req.Reason, actor)
	s.markOrderProcessing(ctx, req.OrderID)
	s.notifier.Notify(ctx, req.CustomerID,
		fmt.Sprintf("We received your exchange request %s and will review it shortly.", req.RequestNo))
	s.recordTransition(ActionCreate)

	return req, nil
}

// Accept approves a pending exchange and tells the customer where to
// ship the old item.
func (s *ExchangeService) Accept(ctx context.Context, id uuid.UUID, shippingAddress, packagingInstructions string, actor Actor) (*ExchangeRequest, error) {
	req, err := s.getForTransition(ctx, id, ExchangePending, ActionAccept)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = ExchangeApprovedAwaitingOldShipment
	req.ApprovedAt = &now
	req.ReturnShippingAddress = shippingAddress
	req.PackagingInstructions = packagingInstructions
	req.UpdatedAt = now

	if err := s.repo.UpdateExchange(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update exchange request", err)
	}

	s.audit.Append(ctx, req.ID, KindExchange, ActionAccept,
		string(ExchangePending), string(ExchangeApprovedAwaitingOldShipment), "", actor)

	msg := fmt.Sprintf("Your exchange request %s has been approved. Please ship the item to: %s.", req.RequestNo, shippingAddress)
	if packagingInstructions != "" {
		msg += " " + packagingInstructions
	}
	s.notifier.Notify(ctx, req.CustomerID, msg)
	s.recordTransition(ActionAccept)

	return req, nil
}

// Reject declines a pending exchange. Terminal.
func (s *ExchangeService) Reject(ctx context.Context, id uuid.UUID, reason string, actor Actor) (*ExchangeRequest, error) {
	req, err := s.getForTransition(ctx, id, ExchangePending, ActionReject)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = ExchangeRejected
	req.ApprovedAt = &now // decision timestamp
	req.RejectionReason = reason
	req.UpdatedAt = now

	if err := s.repo.UpdateExchange(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update exchange request", err)
	}

	s.audit.Append(ctx, req.ID, KindExchange, ActionReject,
		string(ExchangePending), string(ExchangeRejected), reason, actor)
	s.reconcileOrder(ctx, req.OrderID)

	msg := fmt.Sprintf("Your exchange request %s has been declined.", req.RequestNo)
	if reason != "" {
		msg += " Reason: " + reason
	}
	s.notifier.Notify(ctx, req.CustomerID, msg)
	s.recordTransition(ActionReject)

	return req, nil
}

// MarkReceivedOld records arrival of the old item at the warehouse.
func (s *ExchangeService) MarkReceivedOld(ctx context.Context, id uuid.UUID, actor Actor) (*ExchangeRequest, error) {
	req, err := s.getForTransition(ctx, id, ExchangeApprovedAwaitingOldShipment, ActionMarkReceived)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = ExchangeOldReceivedAwaitingInspection
	req.OldReceivedAt = &now
	req.UpdatedAt = now

	if err := s.repo.UpdateExchange(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update exchange request", err)
	}

	s.audit.Append(ctx, req.ID, KindExchange, ActionMarkReceived,
		string(ExchangeApprovedAwaitingOldShipment), string(ExchangeOldReceivedAwaitingInspection), "", actor)
	s.notifier.Notify(ctx, req.CustomerID,
		fmt.Sprintf("We received the item for exchange request %s. It is now being inspected.", req.RequestNo))
	s.recordTransition(ActionMarkReceived)

	return req, nil
}

// MarkInvalid fails the inspection. Terminal.
func (s *ExchangeService) MarkInvalid(ctx context.Context, id uuid.UUID, note string, actor Actor) (*ExchangeRequest, error) {
	req, err := s.getForTransition(ctx, id, ExchangeOldReceivedAwaitingInspection, ActionMarkInvalid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inspection := InspectionInvalid
	req.Status = ExchangeInvalid
	req.StatusInspection = &inspection
	req.InspectedAt = &now
	req.InvalidityReason = note
	req.UpdatedAt = now

	if err := s.repo.UpdateExchange(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update exchange request", err)
	}

	s.audit.Append(ctx, req.ID, KindExchange, ActionMarkInvalid,
		string(ExchangeOldReceivedAwaitingInspection), string(ExchangeInvalid), note, actor)
	s.reconcileOrder(ctx, req.OrderID)

	msg := fmt.Sprintf("The item for exchange request %s did not pass inspection.", req.RequestNo)
	if note != "" {
		msg += " " + note
	}
	s.notifier.Notify(ctx, req.CustomerID, msg)
	s.recordTransition(ActionMarkInvalid)

	return req, nil
}

// MarkValid passes the inspection; the replacement order can now be
// created.
func (s *ExchangeService) MarkValid(ctx context.Context, id uuid.UUID, actor Actor) (*ExchangeRequest, error) {
	req, err := s.getForTransition(ctx, id, ExchangeOldReceivedAwaitingInspection, ActionMarkValid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inspection := InspectionEligible
	req.Status = ExchangeAwaitingNewOrder
	req.StatusInspection = &inspection
	req.InspectedAt = &now
	req.UpdatedAt = now

	if err := s.repo.UpdateExchange(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update exchange request", err)
	}

	s.audit.Append(ctx, req.ID, KindExchange, ActionMarkValid,
		string(ExchangeOldReceivedAwaitingInspection), string(ExchangeAwaitingNewOrder), "", actor)
	s.notifier.Notify(ctx, req.CustomerID,
		fmt.Sprintf("The item for exchange request %s passed inspection. Your replacement is being prepared.", req.RequestNo))
	s.recordTransition(ActionMarkValid)

	return req, nil
}

// CreateNewOrder creates the replacement order for the new variant,
// priced at the original order-line unit price, and moves the request
// into its shipping stage. The replacement order is created at most
// once per request; the status guard enforces that.
func (s *ExchangeService) CreateNewOrder(ctx context.Context, id uuid.UUID, actor Actor) (*ExchangeRequest, error) {
	req, err := s.getForTransition(ctx, id, ExchangeAwaitingNewOrder, ActionCreateNewOrder)
	if err != nil {
		return nil, err
	}

	unitPrice, err := s.orders.GetUnitPrice(ctx, req.OrderID, req.OldVariantID)
	if err != nil {
		return nil, apperrors.NotFound("order line")
	}

	newOrder, err := s.orders.CreateReplacementOrder(ctx, req.CustomerID, req.NewVariantID, req.Quantity, unitPrice)
	if err != nil {
		return nil, apperrors.Internal("failed to create replacement order", err)
	}

	now := time.Now()
	req.Status = ExchangeNewOrderShipping
	req.NewOrderID = &newOrder.ID
	req.NewOrderCreatedAt = &now
	req.UpdatedAt = now

	if err := s.repo.UpdateExchange(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update exchange request", err)
	}

	s.audit.Append(ctx, req.ID, KindExchange, ActionCreateNewOrder,
		string(ExchangeAwaitingNewOrder), string(ExchangeNewOrderShipping),
		fmt.Sprintf("replacement order %s", newOrder.OrderNo), actor)
	s.notifier.Notify(ctx, req.CustomerID,
		fmt.Sprintf("Your replacement order %s for exchange request %s is on its way.", newOrder.OrderNo, req.RequestNo))
	s.recordTransition(ActionCreateNewOrder)

	return req, nil
}

// MarkComplete closes an exchange manually. It works from any
// non-terminal stage so staff can resolve stuck requests; terminal
// requests stay immutable.
func (s *ExchangeService) MarkComplete(ctx context.Context, id uuid.UUID, actor Actor) (*ExchangeRequest, error) {
	req, err := s.repo.GetExchange(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("exchange request")
	}
	if req.Status.IsTerminal() {
		if s.metrics != nil {
			s.metrics.RecordConflict(string(KindExchange), string(ActionComplete))
		}
		return nil, apperrors.Conflict(
			fmt.Sprintf("exchange request is already %s", req.Status))
	}

	if err := s.complete(ctx, req, ActionComplete, actor); err != nil {
		return nil, apperrors.Internal("failed to update exchange request", err)
	}
	s.recordTransition(ActionComplete)
	return req, nil
}

// SyncComplete scans exchanges whose replacement order is shipping and
// closes the ones that have been delivered. Idempotent: already closed
// requests are never touched, and a request whose order is still in
// transit is silently skipped with no audit entry. Returns the number
// of requests completed.
func (s *ExchangeService) SyncComplete(ctx context.Context) (int, error) {
	reqs, err := s.repo.ListShippingExchanges(ctx)
	if err != nil {
		return 0, apperrors.Internal("failed to list shipping exchanges", err)
	}

	completed := 0
	for _, req := range reqs {
		if req.NewOrderID == nil {
			continue
		}
		newOrder, err := s.orders.GetOrder(ctx, *req.NewOrderID)
		if err != nil {
			s.logger.Warn("delivery sync could not load replacement order",
				zap.String("exchange_id", req.ID.String()),
				zap.String("order_id", req.NewOrderID.String()),
				zap.Error(err),
			)
			continue
		}
		if !newOrder.IsDelivered() {
			continue
		}

		// One bad row must not abort the rest of the batch.
		if err := s.complete(ctx, req, ActionAutoComplete, SystemActor); err != nil {
			s.logger.Error("delivery sync could not complete exchange request",
				zap.String("exchange_id", req.ID.String()), zap.Error(err))
			continue
		}
		s.recordTransition(ActionAutoComplete)
		completed++
	}

	if completed > 0 {
		s.logger.Info("delivery sync completed exchanges", zap.Int("count", completed))
	}
	return completed, nil
}

// SyncOne reconciles a single exchange against its replacement order.
// Non-throwing on unmet conditions: a request that is not shipping, has
// no replacement order, or whose order is still in transit comes back
// unchanged with no audit entry.
func (s *ExchangeService) SyncOne(ctx context.Context, id uuid.UUID) (*ExchangeRequest, error) {
	req, err := s.repo.GetExchange(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("exchange request")
	}
	if req.Status != ExchangeNewOrderShipping || req.NewOrderID == nil {
		return req, nil
	}

	newOrder, err := s.orders.GetOrder(ctx, *req.NewOrderID)
	if err != nil {
		s.logger.Warn("delivery sync could not load replacement order",
			zap.String("exchange_id", req.ID.String()),
			zap.String("order_id", req.NewOrderID.String()),
			zap.Error(err),
		)
		return req, nil
	}
	if !newOrder.IsDelivered() {
		return req, nil
	}

	if err := s.complete(ctx, req, ActionAutoComplete, SystemActor); err != nil {
		return nil, apperrors.Internal("failed to update exchange request", err)
	}
	s.recordTransition(ActionAutoComplete)
	return req, nil
}

// DiffResult is the price-difference preview for an exchange.
type DiffResult struct {
	OriginalUnitPrice decimal.Decimal    `json:"original_unit_price"`
	NewUnitPrice      decimal.Decimal    `json:"new_unit_price"`
	Quantity          int                `json:"quantity"`
	Difference        decimal.Decimal    `json:"difference"`
	Settlement        ExtraPaymentStatus `json:"settlement"`
}

// DiffPreview compares the current catalog price of the new variant
// with what the customer paid for the old one. Positive difference
// means the customer owes an extra payment; negative means a partial
// refund is due. Read-only: nothing is persisted.
func (s *ExchangeService) DiffPreview(ctx context.Context, id uuid.UUID) (*DiffResult, error) {
	req, err := s.repo.GetExchange(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("exchange request")
	}

	originalPrice, err := s.orders.GetUnitPrice(ctx, req.OrderID, req.OldVariantID)
	if err != nil {
		return nil, apperrors.NotFound("order line")
	}
	newPrice, err := s.variants.GetCurrentPrice(ctx, req.NewVariantID)
	if err != nil {
		return nil, apperrors.NotFound("new product variant")
	}

	qty := decimal.NewFromInt(int64(req.Quantity))
	diff := newPrice.Sub(originalPrice).Mul(qty)

	settlement := ExtraPaymentNone
	switch {
	case diff.IsPositive():
		settlement = ExtraPaymentRequested
	case diff.IsNegative():
		settlement = ExtraPaymentRefundDue
	}

	return &DiffResult{
		OriginalUnitPrice: originalPrice,
		NewUnitPrice:      newPrice,
		Quantity:          req.Quantity,
		Difference:        diff,
		Settlement:        settlement,
	}, nil
}

// Get returns an exchange request by id.
func (s *ExchangeService) Get(ctx context.Context, id uuid.UUID) (*ExchangeRequest, error) {
	req, err := s.repo.GetExchange(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("exchange request")
	}
	return req, nil
}

// ListByCustomer returns a customer's exchange requests, newest first.
func (s *ExchangeService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ExchangeRequest, error) {
	return s.repo.ListExchangesByCustomer(ctx, customerID)
}

// ListLogs returns the audit trail for a request, oldest first.
func (s *ExchangeService) ListLogs(ctx context.Context, requestID uuid.UUID) ([]*AuditLogEntry, error) {
	return s.audit.List(ctx, requestID)
}

// --- Helpers ---

// complete persists the terminal completed state and fires the side
// effects. On a failed write the in-memory record is restored and the
// error is returned for the caller to handle.
func (s *ExchangeService) complete(ctx context.Context, req *ExchangeRequest, action Action, actor Actor) error {
	from := req.Status
	now := time.Now()
	req.Status = ExchangeCompleted
	req.CompletedAt = &now
	req.UpdatedAt = now

	if err := s.repo.UpdateExchange(ctx, req); err != nil {
		req.Status = from
		req.CompletedAt = nil
		return err
	}

	s.audit.Append(ctx, req.ID, KindExchange, action,
		string(from), string(ExchangeCompleted), "", actor)
	s.reconcileOrder(ctx, req.OrderID)
	s.notifier.Notify(ctx, req.CustomerID,
		fmt.Sprintf("Your exchange request %s is complete. Thank you for shopping with us.", req.RequestNo))
	return nil
}

// getForTransition loads the request and enforces the source status.
func (s *ExchangeService) getForTransition(ctx context.Context, id uuid.UUID, source ExchangeStatus, action Action) (*ExchangeRequest, error) {
	req, err := s.repo.GetExchange(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("exchange request")
	}
	if req.Status != source {
		if s.metrics != nil {
			s.metrics.RecordConflict(string(KindExchange), string(action))
		}
		return nil, apperrors.Conflict(
			fmt.Sprintf("exchange request is %s, expected %s", req.Status, source))
	}
	return req, nil
}

// reconcileOrder reverts the parent order to delivered when no open
// request remains. Best-effort.
func (s *ExchangeService) reconcileOrder(ctx context.Context, orderID uuid.UUID) {
	open, err := s.repo.CountOpenForOrder(ctx, orderID)
	if err != nil {
		s.logger.Warn("order reconciliation failed",
			zap.String("order_id", orderID.String()), zap.Error(err))
		return
	}
	if open > 0 {
		return
	}
	if err := s.orders.SetStatus(ctx, orderID, order.StatusDelivered); err != nil {
		s.logger.Warn("failed to revert order status",
			zap.String("order_id", orderID.String()), zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.OpenRequestsReconciled.Inc()
	}
}

// markOrderProcessing flags the parent order while a request is open.
// Best-effort.
func (s *ExchangeService) markOrderProcessing(ctx context.Context, orderID uuid.UUID) {
	if err := s.orders.SetStatus(ctx, orderID, order.StatusProcessingAfterSales); err != nil {
		s.logger.Warn("failed to mark order as processing after-sales",
			zap.String("order_id", orderID.String()), zap.Error(err))
	}
}

func (s *ExchangeService) recordTransition(action Action) {
	if s.metrics != nil {
		s.metrics.RecordTransition(string(KindExchange), string(action))
	}
}
