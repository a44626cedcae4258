package aftersales

import (
	"context"
	"time"

	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/catalog"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/chat"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/order"
	"github.com/diemthanh21/shopthoitrang-sub001/internal/module/promotion"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStore is the read/write contract the workflows require of the
// order module. Satisfied by *order.Service.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
	SetStatus(ctx context.Context, id uuid.UUID, status order.Status) error
	GetLine(ctx context.Context, orderID, variantID uuid.UUID) (*order.OrderLine, error)
	GetUnitPrice(ctx context.Context, orderID, variantID uuid.UUID) (decimal.Decimal, error)
	CreateReplacementOrder(ctx context.Context, customerID, variantID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*order.Order, error)
}

// VariantStore resolves product variants and current catalog prices.
// Satisfied by catalog.Repository.
type VariantStore interface {
	GetVariant(ctx context.Context, id uuid.UUID) (*catalog.ProductVariant, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	GetCurrentPrice(ctx context.Context, variantID uuid.UUID) (decimal.Decimal, error)
}

// PromotionStore looks up active promotions for the promotional-item
// exclusion check. Satisfied by promotion.Repository.
type PromotionStore interface {
	FindActiveForProduct(ctx context.Context, productID uuid.UUID, day time.Time) ([]*promotion.Promotion, error)
}

// ConversationStore is the messaging contract used by the notification
// dispatcher. Satisfied by chat.Repository.
type ConversationStore interface {
	FindLatestConversation(ctx context.Context, customerID uuid.UUID) (*chat.Conversation, error)
	CreateConversation(ctx context.Context, customerID, staffID uuid.UUID) (*chat.Conversation, error)
	PostSystemMessage(ctx context.Context, conversationID uuid.UUID, body string) error
}
