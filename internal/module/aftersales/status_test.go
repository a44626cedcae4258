package aftersales

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturnStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   ReturnStatus
		terminal bool
	}{
		{ReturnPending, false},
		{ReturnApprovedAwaitingShipment, false},
		{ReturnReceivedAwaitingInspection, false},
		{ReturnEligibleForRefund, false},
		{ReturnRefunded, true},
		{ReturnRejected, true},
		{ReturnInvalid, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestExchangeStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   ExchangeStatus
		terminal bool
	}{
		{ExchangePending, false},
		{ExchangeApprovedAwaitingOldShipment, false},
		{ExchangeOldReceivedAwaitingInspection, false},
		{ExchangeAwaitingNewOrder, false},
		{ExchangeNewOrderShipping, false},
		{ExchangeCompleted, true},
		{ExchangeRejected, true},
		{ExchangeInvalid, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}
