package core

import (
	"LeadDesk/entity"
	"LeadDesk/internal/lib/sl"
	"LeadDesk/internal/service/delivery"
	"LeadDesk/internal/state"
	"context"
	"log/slog"
	"time"
)

// Repository is what the core needs from storage.
type Repository interface {
	CheckApiKey(key string) (string, error)
	GenerateApiKey(username string) (string, error)

	CreateConversation(conv *entity.Conversation) error
	GetConversation(id string) (*entity.Conversation, error)
	FindConversationByPhone(phone string) (*entity.Conversation, error)
	GetConversations(limit int) ([]entity.Conversation, error)
	SetConversationStatus(conversationID, status string) error
	SetDealStatus(conversationID, dealStatus string) error
	MarkConversationRead(conversationID string) error

	RecordInbound(msg *entity.Message) error
	GetMessages(conversationID string, limit int) ([]entity.Message, error)
	LastInboundAt(conversationID string) (*time.Time, error)
	HasTemplateSince(conversationID string, since time.Time) (bool, error)
	DueScheduledMessages(now time.Time) ([]entity.Message, error)

	GetDistributionSettings() (*entity.DistributionSettings, error)
	UpdateDistributionSettings(settings *entity.DistributionSettings) error

	GetAgents() ([]entity.Agent, error)
	UpsertAgent(agent *entity.Agent) error
}

// DeliveryService is the save-first send pipeline.
type DeliveryService interface {
	SendText(req delivery.TextRequest) (*entity.Message, error)
	SendMedia(req delivery.MediaRequest) (*entity.Message, error)
	SendTemplate(req delivery.TemplateRequest) (*entity.Message, error)
	SendInteractive(req delivery.InteractiveRequest) (*entity.Message, error)
	ScheduleMessage(req delivery.ScheduleRequest) (*entity.Message, error)
}

// AssignmentService balances agent workload.
type AssignmentService interface {
	Assign(conversationID, agentID string) error
	ActiveLeadsCount() (map[string]int, error)
	DistributeUnassignedLeads() (assigned, failed int, err error)
}

// SubscriptionManager owns the live console streams.
type SubscriptionManager interface {
	Init() error
	SelectConversation(id string) error
	SetVisible(visible bool) error
	LoadOlderMessages(conversationID string) error
}

// AuthService resolves console tokens.
type AuthService interface {
	AuthenticateByToken(token string) (*entity.UserAuth, error)
	ValidateToken(token string) (string, error)
}

// SuggestService drafts replies from conversation history.
type SuggestService interface {
	SuggestReply(ctx context.Context, conv *entity.Conversation, history []entity.Message) (string, error)
}

// Broadcaster pushes events to connected console clients.
type Broadcaster interface {
	BroadcastMessage(msg entity.Message)
	BroadcastMessageStatus(msg entity.Message)
	BroadcastConversation(conv entity.Conversation)
	BroadcastAssignment(conversationID, agentID string)
	BroadcastReadReceipt(username, conversationID string)
}

// EventPublisher emits platform events to the broker.
type EventPublisher interface {
	MessageStatus(conv *entity.Conversation, msg *entity.Message)
	ConversationAssigned(conversationID, agentID string)
}

// Core wires the inbox subsystem together and implements the HTTP handler
// interfaces.
type Core struct {
	repo          Repository
	deliverySvc   DeliveryService
	assignmentSvc AssignmentService
	subscriptions SubscriptionManager
	authService   AuthService
	suggestSvc    SuggestService
	hub           Broadcaster
	publisher     EventPublisher
	store         *state.Store
	messageLimit  int
	log           *slog.Logger
}

func New(log *slog.Logger, store *state.Store, messageLimit int) *Core {
	return &Core{
		log:          log.With(sl.Module("core")),
		store:        store,
		messageLimit: messageLimit,
	}
}

func (c *Core) SetRepository(repo Repository)                  { c.repo = repo }
func (c *Core) SetDeliveryService(svc DeliveryService)         { c.deliverySvc = svc }
func (c *Core) SetAssignmentService(svc AssignmentService)     { c.assignmentSvc = svc }
func (c *Core) SetSubscriptionManager(mgr SubscriptionManager) { c.subscriptions = mgr }
func (c *Core) SetAuthService(svc AuthService)                 { c.authService = svc }
func (c *Core) SetSuggestService(svc SuggestService)           { c.suggestSvc = svc }
func (c *Core) SetBroadcaster(hub Broadcaster)                 { c.hub = hub }
func (c *Core) SetEventPublisher(publisher EventPublisher)     { c.publisher = publisher }

// AuthenticateByToken implements the authenticate middleware contract.
func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	return c.authService.AuthenticateByToken(token)
}

// ValidateToken implements the websocket authenticator contract.
func (c *Core) ValidateToken(token string) (string, error) {
	return c.authService.ValidateToken(token)
}

// GenerateApiKey issues (or returns) the API key of a console user.
func (c *Core) GenerateApiKey(username string) (string, error) {
	return c.repo.GenerateApiKey(username)
}

// MessageStatus implements delivery.Publisher: fan persisted status changes
// out to the console and the event bus.
func (c *Core) MessageStatus(conv *entity.Conversation, msg *entity.Message) {
	if c.hub != nil {
		if msg.Status == entity.StatusPending || msg.Status == entity.StatusScheduled {
			c.hub.BroadcastMessage(*msg)
		} else {
			c.hub.BroadcastMessageStatus(*msg)
		}
	}
	if c.publisher != nil {
		c.publisher.MessageStatus(conv, msg)
	}
}

// ConversationAssigned implements assignment.Events.
func (c *Core) ConversationAssigned(conversationID, agentID string) {
	if c.hub != nil {
		c.hub.BroadcastAssignment(conversationID, agentID)
	}
	if c.publisher != nil {
		c.publisher.ConversationAssigned(conversationID, agentID)
	}
}
