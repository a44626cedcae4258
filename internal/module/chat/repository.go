package chat

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrConversationNotFound is returned when the customer has no conversation.
var ErrConversationNotFound = errors.New("conversation not found")

// Repository defines the interface for conversation data access.
type Repository interface {
	FindLatestConversation(ctx context.Context, customerID uuid.UUID) (*Conversation, error)
	CreateConversation(ctx context.Context, customerID, staffID uuid.UUID) (*Conversation, error)
	PostSystemMessage(ctx context.Context, conversationID uuid.UUID, body string) error
	GetConversationWithMessages(ctx context.Context, id uuid.UUID) (*Conversation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new chat repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindLatestConversation(ctx context.Context, customerID uuid.UUID) (*Conversation, error) {
	var conv Conversation
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *repository) CreateConversation(ctx context.Context, customerID, staffID uuid.UUID) (*Conversation, error) {
	now := time.Now()
	conv := &Conversation{
		ID:         uuid.New(),
		CustomerID: customerID,
		StaffID:    staffID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		return nil, err
	}
	return conv, nil
}

func (r *repository) PostSystemMessage(ctx context.Context, conversationID uuid.UUID, body string) error {
	msg := &Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderType:     SenderSystem,
		Body:           body,
		CreatedAt:      time.Now(),
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *repository) GetConversationWithMessages(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	var conv Conversation
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC")
		}).
		First(&conv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}
