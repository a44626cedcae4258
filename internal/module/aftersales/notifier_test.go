package aftersales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotifier(t *testing.T) {
	ctx := context.Background()

	t.Run("creates conversation on first message", func(t *testing.T) {
		convos := newMemConversations()
		staffID := uuid.New()
		n := NewNotifier(convos, staffID, zap.NewNop(), nil)
		customerID := uuid.New()

		n.Notify(ctx, customerID, "hello")

		conv, ok := convos.convos[customerID]
		require.True(t, ok)
		assert.Equal(t, staffID, conv.StaffID)
		assert.Equal(t, []string{"hello"}, convos.messages[conv.ID])
	})

	t.Run("reuses existing conversation", func(t *testing.T) {
		convos := newMemConversations()
		n := NewNotifier(convos, uuid.New(), zap.NewNop(), nil)
		customerID := uuid.New()

		n.Notify(ctx, customerID, "first")
		n.Notify(ctx, customerID, "second")

		assert.Len(t, convos.convos, 1)
		assert.Len(t, convos.messagesFor(customerID), 2)
	})

	t.Run("swallows delivery failures", func(t *testing.T) {
		convos := newMemConversations()
		convos.fail = true
		n := NewNotifier(convos, uuid.New(), zap.NewNop(), nil)

		// Must not panic or propagate, even once the breaker opens.
		for i := 0; i < 10; i++ {
			n.Notify(ctx, uuid.New(), "unreachable")
		}
		assert.Empty(t, convos.messages)
	})

	t.Run("recovers after transient failure", func(t *testing.T) {
		convos := newMemConversations()
		n := NewNotifier(convos, uuid.New(), zap.NewNop(), nil)
		customerID := uuid.New()

		convos.fail = true
		n.Notify(ctx, customerID, "lost")
		convos.fail = false
		n.Notify(ctx, customerID, "delivered")

		assert.Equal(t, []string{"delivered"}, convos.messagesFor(customerID))
	})
}
