package aftersales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/order"
	apperrors "github.com/diemthanh21/shopthoitrang-sub001/internal/shared/errors"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReturnService runs the return request state machine.
//
//	PENDING -> APPROVED_AWAITING_SHIPMENT -> RECEIVED_AWAITING_INSPECTION
//	        -> {INVALID | ELIGIBLE_FOR_REFUND} -> REFUNDED
//	PENDING -> REJECTED
//
// Every transition checks its source status and raises a conflict on
// mismatch, persists strictly before dispatching the notification, and
// records an audit entry best-effort.
type ReturnService struct {
	repo      Repository
	orders    OrderStore
	validator *EligibilityValidator
	audit     *AuditWriter
	notifier  *Notifier
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewReturnService creates a new return workflow service.
func NewReturnService(repo Repository, orders OrderStore, validator *EligibilityValidator, audit *AuditWriter, notifier *Notifier, logger *zap.Logger, m *metrics.Metrics) *ReturnService {
	return &ReturnService{
		repo:      repo,
		orders:    orders,
		validator: validator,
		audit:     audit,
		notifier:  notifier,
		logger:    logger,
		metrics:   m,
	}
}

// Create validates eligibility and persists a new pending return request.
func (s *ReturnService) Create(ctx context.Context, input CreateReturnInput, actor Actor) (*ReturnRequest, error) {
	req, err := s.validator.ValidateReturn(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateReturn(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to create return request", err)
	}

	s.audit.Append(ctx, req.ID, KindReturn, ActionCreate, "", string(ReturnPending), req.Reason, actor)
	s.markOrderProcessing(ctx, req.OrderID)
	s.notifier.Notify(ctx, req.CustomerID,
		fmt.Sprintf("We received your return request %s and will review it shortly.", req.RequestNo))
	s.recordTransition(ActionCreate)

	return req, nil
}

// Accept approves a pending return and tells the customer where to
// ship the goods.
func (s *ReturnService) Accept(ctx context.Context, id uuid.UUID, shippingAddress, packagingInstructions string, actor Actor) (*ReturnRequest, error) {
	req, err := s.getForTransition(ctx, id, ReturnPending, ActionAccept)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = ReturnApprovedAwaitingShipment
	req.ApprovedAt = &now
	req.ReturnShippingAddress = shippingAddress
	req.PackagingInstructions = packagingInstructions
	req.UpdatedAt = now

	if err := s.repo.UpdateReturn(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update return request", err)
	}

	s.audit.Append(ctx, req.ID, KindReturn, ActionAccept,
		string(ReturnPending), string(ReturnApprovedAwaitingShipment), "", actor)

	msg := fmt.Sprintf("Your return request %s has been approved. Please ship the item to: %s.", req.RequestNo, shippingAddress)
	if packagingInstructions != "" {
		msg += " " + packagingInstructions
	}
	s.notifier.Notify(ctx, req.CustomerID, msg)
	s.recordTransition(ActionAccept)

	return req, nil
}

// Reject declines a pending return. Terminal.
func (s *ReturnService) Reject(ctx context.Context, id uuid.UUID, reason string, actor Actor) (*ReturnRequest, error) {
	req, err := s.getForTransition(ctx, id, ReturnPending, ActionReject)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = ReturnRejected
	req.ApprovedAt = &now // decision timestamp
	req.RejectionReason = reason
	req.UpdatedAt = now

	if err := s.repo.UpdateReturn(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update return request", err)
	}

	s.audit.Append(ctx, req.ID, KindReturn, ActionReject,
		string(ReturnPending), string(ReturnRejected), reason, actor)
	s.ReconcileOrder(ctx, req.OrderID)

	msg := fmt.Sprintf("Your return request %s has been declined.", req.RequestNo)
	if reason != "" {
		msg += " Reason: " + reason
	}
	s.notifier.Notify(ctx, req.CustomerID, msg)
	s.recordTransition(ActionReject)

	return req, nil
}

// MarkReceived records arrival of the returned goods at the warehouse.
func (s *ReturnService) MarkReceived(ctx context.Context, id uuid.UUID, actor Actor) (*ReturnRequest, error) {
	req, err := s.getForTransition(ctx, id, ReturnApprovedAwaitingShipment, ActionMarkReceived)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	req.Status = ReturnReceivedAwaitingInspection
	req.ReceivedAt = &now
	req.UpdatedAt = now

	if err := s.repo.UpdateReturn(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update return request", err)
	}

	s.audit.Append(ctx, req.ID, KindReturn, ActionMarkReceived,
		string(ReturnApprovedAwaitingShipment), string(ReturnReceivedAwaitingInspection), "", actor)
	s.notifier.Notify(ctx, req.CustomerID,
		fmt.Sprintf("We received the item for return request %s. It is now being inspected.", req.RequestNo))
	s.recordTransition(ActionMarkReceived)

	return req, nil
}

// MarkInvalid fails the inspection. Terminal.
func (s *ReturnService) MarkInvalid(ctx context.Context, id uuid.UUID, note string, actor Actor) (*ReturnRequest, error) {
	req, err := s.getForTransition(ctx, id, ReturnReceivedAwaitingInspection, ActionMarkInvalid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inspection := InspectionInvalid
	req.Status = ReturnInvalid
	req.StatusInspection = &inspection
	req.InspectedAt = &now
	req.InvalidityReason = note
	req.UpdatedAt = now

	if err := s.repo.UpdateReturn(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update return request", err)
	}

	s.audit.Append(ctx, req.ID, KindReturn, ActionMarkInvalid,
		string(ReturnReceivedAwaitingInspection), string(ReturnInvalid), note, actor)
	s.ReconcileOrder(ctx, req.OrderID)

	msg := fmt.Sprintf("The item for return request %s did not pass inspection.", req.RequestNo)
	if note != "" {
		msg += " " + note
	}
	s.notifier.Notify(ctx, req.CustomerID, msg)
	s.recordTransition(ActionMarkInvalid)

	return req, nil
}

// MarkValid passes the inspection, making the request refundable.
func (s *ReturnService) MarkValid(ctx context.Context, id uuid.UUID, actor Actor) (*ReturnRequest, error) {
	req, err := s.getForTransition(ctx, id, ReturnReceivedAwaitingInspection, ActionMarkValid)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inspection := InspectionEligible
	req.Status = ReturnEligibleForRefund
	req.StatusInspection = &inspection
	req.InspectedAt = &now
	req.UpdatedAt = now

	if err := s.repo.UpdateReturn(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update return request", err)
	}

	s.audit.Append(ctx, req.ID, KindReturn, ActionMarkValid,
		string(ReturnReceivedAwaitingInspection), string(ReturnEligibleForRefund), "", actor)
	s.notifier.Notify(ctx, req.CustomerID,
		fmt.Sprintf("The item for return request %s passed inspection. Your refund is being prepared.", req.RequestNo))
	s.recordTransition(ActionMarkValid)

	return req, nil
}

// CalculateRefund computes and persists the refund amount from the
// original order line price. Does not change the status.
func (s *ReturnService) CalculateRefund(ctx context.Context, id uuid.UUID, actor Actor) (*ReturnRequest, error) {
	req, err := s.getForTransition(ctx, id, ReturnEligibleForRefund, ActionCalculateRefund)
	if err != nil {
		return nil, err
	}

	amount, err := s.computeRefund(ctx, req)
	if err != nil {
		return nil, err
	}

	req.RefundAmount = &amount
	req.UpdatedAt = time.Now()

	if err := s.repo.UpdateReturn(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update return request", err)
	}

	s.audit.Append(ctx, req.ID, KindReturn, ActionCalculateRefund,
		string(ReturnEligibleForRefund), string(ReturnEligibleForRefund),
		fmt.Sprintf("refund amount %s", amount.String()), actor)
	s.recordTransition(ActionCalculateRefund)

	return req, nil
}

// RefundPreview recomputes the refund amount without persisting it.
func (s *ReturnService) RefundPreview(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	req, err := s.repo.GetReturn(ctx, id)
	if err != nil {
		return decimal.Zero, apperrors.NotFound("return request")
	}
	return s.computeRefund(ctx, req)
}

// ProcessRefund moves the request to its refunded terminal state. The
// refund amount must already be computed.
func (s *ReturnService) ProcessRefund(ctx context.Context, id uuid.UUID, method string, actor Actor) (*ReturnRequest, error) {
	req, err := s.getForTransition(ctx, id, ReturnEligibleForRefund, ActionProcessRefund)
	if err != nil {
		return nil, err
	}
	if req.RefundAmount == nil {
		return nil, apperrors.InvalidState("refund amount has not been calculated")
	}
	if strings.TrimSpace(method) == "" {
		return nil, apperrors.ValidationError("refund method is required")
	}

	now := time.Now()
	req.Status = ReturnRefunded
	req.RefundMethod = method
	req.RefundedAt = &now
	req.UpdatedAt = now

	if err := s.repo.UpdateReturn(ctx, req); err != nil {
		return nil, apperrors.Internal("failed to update return request", err)
	}

	s.audit.Append(ctx, req.ID, KindReturn, ActionProcessRefund,
		string(ReturnEligibleForRefund), string(ReturnRefunded),
		fmt.Sprintf("refunded %s via %s", req.RefundAmount.String(), method), actor)
	s.ReconcileOrder(ctx, req.OrderID)

	s.notifier.Notify(ctx, req.CustomerID,
		fmt.Sprintf("Your refund of %s for return request %s has been processed via %s.",
			req.RefundAmount.String(), req.RequestNo, method))

	if s.metrics != nil {
		amount, _ := req.RefundAmount.Float64()
		s.metrics.RecordRefund(method, amount)
	}
	s.recordTransition(ActionProcessRefund)

	return req, nil
}

// Get returns a return request by id.
func (s *ReturnService) Get(ctx context.Context, id uuid.UUID) (*ReturnRequest, error) {
	req, err := s.repo.GetReturn(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("return request")
	}
	return req, nil
}

// ListByCustomer returns a customer's return requests, newest first.
func (s *ReturnService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ReturnRequest, error) {
	return s.repo.ListReturnsByCustomer(ctx, customerID)
}

// ListLogs returns the audit trail for a request, oldest first.
func (s *ReturnService) ListLogs(ctx context.Context, requestID uuid.UUID) ([]*AuditLogEntry, error) {
	return s.audit.List(ctx, requestID)
}

// ReconcileOrder reverts the parent order to delivered when no open
// return or exchange remains. Best-effort and idempotent; callable
// after any terminal transition.
func (s *ReturnService) ReconcileOrder(ctx context.Context, orderID uuid.UUID) {
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

// --- Helpers ---

// getForTransition loads the request and enforces the source status.
func (s *ReturnService) getForTransition(ctx context.Context, id uuid.UUID, source ReturnStatus, action Action) (*ReturnRequest, error) {
	req, err := s.repo.GetReturn(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("return request")
	}
	if req.Status != source {
		if s.metrics != nil {
			s.metrics.RecordConflict(string(KindReturn), string(action))
		}
		return nil, apperrors.Conflict(
			fmt.Sprintf("return request is %s, expected %s", req.Status, source))
	}
	return req, nil
}

// computeRefund multiplies the original order-line unit price by the
// requested quantity. The live catalog price is deliberately not used:
// refunds reflect what the customer actually paid.
func (s *ReturnService) computeRefund(ctx context.Context, req *ReturnRequest) (decimal.Decimal, error) {
	unitPrice, err := s.orders.GetUnitPrice(ctx, req.OrderID, req.VariantID)
	if err != nil {
		return decimal.Zero, apperrors.NotFound("order line")
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity))), nil
}

// markOrderProcessing flags the parent order while a request is open.
// Best-effort.
func (s *ReturnService) markOrderProcessing(ctx context.Context, orderID uuid.UUID) {
	if err := s.orders.SetStatus(ctx, orderID, order.StatusProcessingAfterSales); err != nil {
		s.logger.Warn("failed to mark order as processing after-sales",
			zap.String("order_id", orderID.String()), zap.Error(err))
	}
}

func (s *ReturnService) recordTransition(action Action) {
	if s.metrics != nil {
		s.metrics.RecordTransition(string(KindReturn), string(action))
	}
}
