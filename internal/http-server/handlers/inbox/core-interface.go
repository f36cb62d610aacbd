package inbox

import (
	"LeadDesk/entity"
	"LeadDesk/internal/service/delivery"
	"context"
)

type Core interface {
	Conversations() ([]entity.Conversation, error)
	CreateConversation(name, phone, email, channel string) (*entity.Conversation, error)
	SetConversationStatus(conversationID, status string) error
	SetDealStatus(conversationID, dealStatus string) error

	Messages(conversationID string) ([]entity.Message, error)
	OlderMessages(conversationID string) ([]entity.Message, error)
	SelectConversation(conversationID string) error
	SetVisible(visible bool) error
	MarkRead(username, conversationID string) error

	SessionWindow(conversationID string) (*entity.SessionStatus, error)

	SendText(req delivery.TextRequest) (*entity.Message, error)
	SendMedia(req delivery.MediaRequest) (*entity.Message, error)
	SendTemplate(req delivery.TemplateRequest) (*entity.Message, error)
	SendInteractive(req delivery.InteractiveRequest) (*entity.Message, error)
	ScheduleMessage(req delivery.ScheduleRequest) (*entity.Message, error)
	DueScheduledMessages() ([]entity.Message, error)

	RecordInbound(phone, name, msgType, content string) (*entity.Message, error)
	SuggestReply(ctx context.Context, conversationID string) (string, error)

	Agents() ([]entity.Agent, error)
	UpsertAgent(agent *entity.Agent) error

	Assign(conversationID, agentID string) error
	ActiveLeadsCount() (map[string]int, error)
	DistributeUnassignedLeads() (int, int, error)
}
