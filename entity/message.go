package entity

import (
	"time"

	"github.com/google/uuid"
)

// Message types.
const (
	TypeText        = "text"
	TypeImage       = "image"
	TypeVideo       = "video"
	TypeAudio       = "audio"
	TypeDocument    = "document"
	TypeTemplate    = "template"
	TypeInteractive = "interactive"
	TypeReaction    = "reaction"
)

// Message directions.
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Message statuses. Status only moves forward along
// pending -> sent -> delivered -> read, or pending -> failed.
const (
	StatusPending   = "pending"
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
	StatusFailed    = "failed"
	StatusScheduled = "scheduled"
)

// Message is one unit of communication within a conversation.
// Content is immutable after creation; only status and the provider
// message id are mutated afterwards.
type Message struct {
	ID             string     `json:"id" bson:"_id"`
	ConversationID string     `json:"conversation_id" bson:"conversation_id"`
	Content        string     `json:"content" bson:"content"`
	Type           string     `json:"type" bson:"type"`
	Direction      string     `json:"direction" bson:"direction"`
	Status         string     `json:"status" bson:"status"`
	SenderID       string     `json:"sender_id,omitempty" bson:"sender_id,omitempty"`
	MediaURL       string     `json:"media_url,omitempty" bson:"media_url,omitempty"`
	MediaName      string     `json:"media_name,omitempty" bson:"media_name,omitempty"`
	ProviderID     string     `json:"provider_id,omitempty" bson:"provider_id,omitempty"`
	ScheduledFor   *time.Time `json:"scheduled_for,omitempty" bson:"scheduled_for,omitempty"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
}

// NewOutbound creates an outbound message in pending state with a local id.
// The record must be persisted before any dispatch is attempted.
func NewOutbound(conversationID, senderID, msgType, content string) *Message {
	return &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        content,
		Type:           msgType,
		Direction:      DirectionOut,
		Status:         StatusPending,
		SenderID:       senderID,
		CreatedAt:      time.Now(),
	}
}

// NewInbound creates a customer-originated message.
func NewInbound(conversationID, msgType, content string) *Message {
	return &Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        content,
		Type:           msgType,
		Direction:      DirectionIn,
		Status:         StatusDelivered,
		CreatedAt:      time.Now(),
	}
}

// IsTerminal reports whether the status may no longer change.
func (m *Message) IsTerminal() bool {
	return m.Status == StatusFailed || m.Status == StatusRead
}

func (m *Message) Preview() *LastMessageSummary {
	text := m.Content
	if text == "" && m.MediaName != "" {
		text = m.MediaName
	}
	return &LastMessageSummary{Text: text, At: m.CreatedAt}
}
