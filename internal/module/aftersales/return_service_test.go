package aftersales

import (
	"context"
	"errors"
	"testing"

	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/order"
	apperrors "github.com/diemthanh21/shopthoitrang-sub001/internal/shared/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStaff = Actor{Type: ActorStaff}

func TestReturnService_HappyPath(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	req, err := env.returns.Create(ctx, env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)
	assert.Equal(t, ReturnPending, req.Status)

	// Creation flips the parent order into after-sales processing.
	assert.Equal(t, order.StatusProcessingAfterSales, env.orders.orders[env.orderID].Status)

	req, err = env.returns.Accept(ctx, req.ID, "123 Warehouse St", "Use original box", testStaff)
	require.NoError(t, err)
	assert.Equal(t, ReturnApprovedAwaitingShipment, req.Status)
	assert.NotNil(t, req.ApprovedAt)
	assert.Equal(t, "123 Warehouse St", req.ReturnShippingAddress)

	req, err = env.returns.MarkReceived(ctx, req.ID, testStaff)
	require.NoError(t, err)
	assert.Equal(t, ReturnReceivedAwaitingInspection, req.Status)
	assert.NotNil(t, req.ReceivedAt)

	req, err = env.returns.MarkValid(ctx, req.ID, testStaff)
	require.NoError(t, err)
	assert.Equal(t, ReturnEligibleForRefund, req.Status)
	require.NotNil(t, req.StatusInspection)
	assert.Equal(t, InspectionEligible, *req.StatusInspection)

	req, err = env.returns.CalculateRefund(ctx, req.ID, testStaff)
	require.NoError(t, err)
	require.NotNil(t, req.RefundAmount)
	// Refund uses the order-line price, not the current catalog price.
	assert.True(t, req.RefundAmount.Equal(decimal.NewFromInt(150000)),
		"got %s", req.RefundAmount)

	req, err = env.returns.ProcessRefund(ctx, req.ID, "bank_transfer", testStaff)
	require.NoError(t, err)
	assert.Equal(t, ReturnRefunded, req.Status)
	assert.NotNil(t, req.RefundedAt)
	assert.Equal(t, "bank_transfer", req.RefundMethod)

	// Terminal transition reverts the parent order.
	assert.Equal(t, order.StatusDelivered, env.orders.orders[env.orderID].Status)

	// One audit entry per transition, in order.
	audits := env.repo.auditsFor(req.ID)
	require.Len(t, audits, 6)
	assert.Equal(t, ActionCreate, audits[0].Action)
	assert.Equal(t, ActionAccept, audits[1].Action)
	assert.Equal(t, ActionMarkReceived, audits[2].Action)
	assert.Equal(t, ActionMarkValid, audits[3].Action)
	assert.Equal(t, ActionCalculateRefund, audits[4].Action)
	assert.Equal(t, ActionProcessRefund, audits[5].Action)

	// Customer was notified along the way.
	assert.NotEmpty(t, env.convos.messagesFor(env.customerID))
}

func TestReturnService_RefundScalesWithQuantity(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	input := env.createReturn()
	input.Quantity = 2
	req, err := env.returns.Create(ctx, input, Actor{Type: ActorCustomer})
	require.NoError(t, err)

	_, err = env.returns.Accept(ctx, req.ID, "addr", "", testStaff)
	require.NoError(t, err)
	_, err = env.returns.MarkReceived(ctx, req.ID, testStaff)
	require.NoError(t, err)
	_, err = env.returns.MarkValid(ctx, req.ID, testStaff)
	require.NoError(t, err)

	req, err = env.returns.CalculateRefund(ctx, req.ID, testStaff)
	require.NoError(t, err)
	assert.True(t, req.RefundAmount.Equal(decimal.NewFromInt(300000)))
}

func TestReturnService_WrongSourceStatusConflicts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	req, err := env.returns.Create(ctx, env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)

	// MarkReceived requires the approved stage; the request is pending.
	_, err = env.returns.MarkReceived(ctx, req.ID, testStaff)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	// The stored record is unmodified.
	stored, err := env.repo.GetReturn(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, ReturnPending, stored.Status)
	assert.Nil(t, stored.ReceivedAt)

	// No audit entry for the failed transition.
	assert.Len(t, env.repo.auditsFor(req.ID), 1)
}

func TestReturnService_Reject(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	req, err := env.returns.Create(ctx, env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)

	req, err = env.returns.Reject(ctx, req.ID, "outside policy", testStaff)
	require.NoError(t, err)
	assert.Equal(t, ReturnRejected, req.Status)
	assert.Equal(t, "outside policy", req.RejectionReason)

	// Rejection is terminal: nothing else may run.
	_, err = env.returns.Accept(ctx, req.ID, "addr", "", testStaff)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	_, err = env.returns.Reject(ctx, req.ID, "again", testStaff)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	// Parent order reverted since no request remains open.
	assert.Equal(t, order.StatusDelivered, env.orders.orders[env.orderID].Status)
}

func TestReturnService_MarkInvalid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	req, err := env.returns.Create(ctx, env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)
	_, err = env.returns.Accept(ctx, req.ID, "addr", "", testStaff)
	require.NoError(t, err)
	_, err = env.returns.MarkReceived(ctx, req.ID, testStaff)
	require.NoError(t, err)

	req, err = env.returns.MarkInvalid(ctx, req.ID, "item was worn", testStaff)
	require.NoError(t, err)
	assert.Equal(t, ReturnInvalid, req.Status)
	require.NotNil(t, req.StatusInspection)
	assert.Equal(t, InspectionInvalid, *req.StatusInspection)
	assert.Equal(t, "item was worn", req.InvalidityReason)

	_, err = env.returns.MarkValid(ctx, req.ID, testStaff)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestReturnService_ProcessRefundRequiresCalculation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	req, err := env.returns.Create(ctx, env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)
	_, err = env.returns.Accept(ctx, req.ID, "addr", "", testStaff)
	require.NoError(t, err)
	_, err = env.returns.MarkReceived(ctx, req.ID, testStaff)
	require.NoError(t, err)
	_, err = env.returns.MarkValid(ctx, req.ID, testStaff)
	require.NoError(t, err)

	_, err = env.returns.ProcessRefund(ctx, req.ID, "bank_transfer", testStaff)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidState))

	// Still eligible, not refunded.
	stored, err := env.repo.GetReturn(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, ReturnEligibleForRefund, stored.Status)
}

func TestReturnService_RefundPreviewDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	req, err := env.returns.Create(ctx, env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)

	amount, err := env.returns.RefundPreview(ctx, req.ID)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.NewFromInt(150000)))

	stored, err := env.repo.GetReturn(ctx, req.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefundAmount)
}

func TestReturnService_ReconcileWaitsForAllRequests(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	first, err := env.returns.Create(ctx, env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)
	second, err := env.returns.Create(ctx, env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)

	_, err = env.returns.Reject(ctx, first.ID, "policy", testStaff)
	require.NoError(t, err)
	// Second request still open, order stays in processing.
	assert.Equal(t, order.StatusProcessingAfterSales, env.orders.orders[env.orderID].Status)

	_, err = env.returns.Reject(ctx, second.ID, "policy", testStaff)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, env.orders.orders[env.orderID].Status)
}

func TestReturnService_AuditFailureDoesNotBlockTransition(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	env.repo.failAudit = true

	req, err := env.returns.Create(ctx, env.createReturn(), Actor{Type: ActorCustomer})
	require.NoError(t, err)
	assert.Equal(t, ReturnPending, req.Status)
	assert.Empty(t, env.repo.auditsFor(req.ID))
}

func TestReturnService_NotFound(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	_, err := env.returns.Get(ctx, uuid.New())
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = env.returns.Accept(ctx, uuid.New(), "addr", "", testStaff)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
