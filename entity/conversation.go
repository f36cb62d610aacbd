package entity

import (
	"time"

	"github.com/google/uuid"
)

// Conversation statuses.
const (
	ConversationOpen   = "open"
	ConversationClosed = "closed"
)

// Conversation contexts.
const (
	ContextSales     = "sales"
	ContextPostSales = "post_sales"
)

// Deal statuses.
const (
	DealOpen = "open"
	DealWon  = "won"
	DealLost = "lost"
)

// Conversation channels.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelInternal = "internal"
)

// LastMessageSummary is the denormalized preview shown in the conversation list.
type LastMessageSummary struct {
	Text string    `json:"text" bson:"text"`
	At   time.Time `json:"at" bson:"at"`
}

// Conversation is a durable thread between one customer and the agency.
type Conversation struct {
	ID          string              `json:"id" bson:"_id"`
	Name        string              `json:"name" bson:"name" validate:"omitempty"`
	Phone       string              `json:"phone" bson:"phone" validate:"omitempty"`
	Email       string              `json:"email" bson:"email" validate:"omitempty,email"`
	Company     string              `json:"company" bson:"company" validate:"omitempty"`
	Channel     string              `json:"channel" bson:"channel"`
	Status      string              `json:"status" bson:"status"`
	AssignedTo  string              `json:"assigned_to" bson:"assigned_to"`
	Context     string              `json:"context" bson:"context"`
	DealStatus  string              `json:"deal_status" bson:"deal_status"`
	LastMessage *LastMessageSummary `json:"last_message" bson:"last_message"`
	UnreadCount int                 `json:"unread_count" bson:"unread_count"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}

// NewConversation creates an open sales conversation for a customer contact.
func NewConversation(name, phone, email, channel string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:         uuid.NewString(),
		Name:       name,
		Phone:      phone,
		Email:      email,
		Channel:    channel,
		Status:     ConversationOpen,
		Context:    ContextSales,
		DealStatus: DealOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (c *Conversation) IsClosed() bool {
	return c.Status == ConversationClosed
}

func (c *Conversation) IsAssigned() bool {
	return c.AssignedTo != ""
}
