package events

import (
	"time"

	"LeadDesk/entity"
)

// Meta identifies and correlates a platform event.
type Meta struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Type          string    `json:"type"`
	Time          time.Time `json:"time"`
}

// Envelope is the uniform wire shape for platform events.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// Event types and routing keys.
const (
	TypeMessageStatus        = "inbox.message.status"
	TypeConversationAssigned = "inbox.conversation.assigned"
)

// MessageStatusV1 reports a message delivery-status change.
type MessageStatusV1 struct {
	ConversationID string    `json:"conversation_id"`
	MessageID      string    `json:"message_id"`
	Type           string    `json:"type"`
	Direction      string    `json:"direction"`
	Status         string    `json:"status"`
	ProviderID     string    `json:"provider_id,omitempty"`
	At             time.Time `json:"at"`
}

// ConversationAssignedV1 reports an assignment change. An empty AgentID
// means the conversation was returned to the unassigned pool.
type ConversationAssignedV1 struct {
	ConversationID string    `json:"conversation_id"`
	AgentID        string    `json:"agent_id"`
	AssignedAt     time.Time `json:"assigned_at"`
}

func messageStatus(msg *entity.Message) MessageStatusV1 {
	return MessageStatusV1{
		ConversationID: msg.ConversationID,
		MessageID:      msg.ID,
		Type:           msg.Type,
		Direction:      msg.Direction,
		Status:         msg.Status,
		ProviderID:     msg.ProviderID,
		At:             time.Now().UTC(),
	}
}
