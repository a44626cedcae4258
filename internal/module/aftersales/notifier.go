package aftersales

import (
	"context"
	"errors"
	"time"

	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/chat"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/shared/metrics"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Notifier delivers transition messages into the customer's support
// conversation. It never returns an error to the workflow: a messaging
// outage must not block or roll back a committed transition, so calls
// run through a circuit breaker and failures are only logged.
type Notifier struct {
	conversations  ConversationStore
	defaultStaffID uuid.UUID
	breaker        *gobreaker.CircuitBreaker[any]
	logger         *zap.Logger
	metrics        *metrics.Metrics
}

// NewNotifier creates a new notification dispatcher. defaultStaffID
// owns conversations created for customers who have none yet.
func NewNotifier(conversations ConversationStore, defaultStaffID uuid.UUID, logger *zap.Logger, m *metrics.Metrics) *Notifier {
	settings := gobreaker.Settings{
		Name:        "aftersales-notifier",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}

	return &Notifier{
		conversations:  conversations,
		defaultStaffID: defaultStaffID,
		breaker:        gobreaker.NewCircuitBreaker[any](settings),
		logger:         logger,
		metrics:        m,
	}
}

// Notify posts a system-authored message to the customer's latest
// conversation, creating one if necessary.
func (n *Notifier) Notify(ctx context.Context, customerID uuid.UUID, text string) {
	_, err := n.breaker.Execute(func() (any, error) {
		return nil, n.deliver(ctx, customerID, text)
	})
	if err != nil {
		n.logger.Warn("notification dispatch failed",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
	}
	if n.metrics != nil {
		n.metrics.RecordNotification(err == nil)
	}
}

func (n *Notifier) deliver(ctx context.Context, customerID uuid.UUID, text string) error {
	conv, err := n.conversations.FindLatestConversation(ctx, customerID)
	if errors.Is(err, chat.ErrConversationNotFound) {
		conv, err = n.conversations.CreateConversation(ctx, customerID, n.defaultStaffID)
	}
	if err != nil {
		return err
	}
	return n.conversations.PostSystemMessage(ctx, conv.ID, text)
}
