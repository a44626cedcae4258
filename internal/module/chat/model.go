package chat

import (
	"time"

	"github.com/google/uuid"
)

// SenderType identifies who authored a message.
type SenderType string

const (
	SenderCustomer SenderType = "customer"
	SenderStaff    SenderType = "staff"
	SenderSystem   SenderType = "system"
)

// Conversation is a support thread between a customer and a staff owner.
type Conversation struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID uuid.UUID `json:"customer_id" gorm:"type:uuid;not null;index"`
	StaffID    uuid.UUID `json:"staff_id" gorm:"type:uuid;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:ConversationID"`
}

// TableName returns the database table name.
func (Conversation) TableName() string {
	return "conversations"
}

// Message is a single message inside a conversation.
type Message struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationID uuid.UUID  `json:"conversation_id" gorm:"type:uuid;not null;index"`
	SenderType     SenderType `json:"sender_type" gorm:"not null"`
	SenderID       *uuid.UUID `json:"sender_id,omitempty" gorm:"type:uuid"`
	Body           string     `json:"body" gorm:"not null"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TableName returns the database table name.
func (Message) TableName() string {
	return "messages"
}
