package core

import (
	"LeadDesk/entity"
	"LeadDesk/internal/lib/sl"
	"LeadDesk/internal/service/delivery"
	"LeadDesk/internal/service/session"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ErrSessionExpired is returned when a free-form send is attempted outside
// the provider's 24-hour session window.
var ErrSessionExpired = fmt.Errorf("session window expired")

// ErrSuggestUnavailable is returned when no suggestion backend is configured.
var ErrSuggestUnavailable = fmt.Errorf("suggestions not configured")

// Conversations returns the console's current conversation list.
func (c *Core) Conversations() ([]entity.Conversation, error) {
	// Prefer the live store; fall back to the repository before Init ran.
	if conversations := c.store.Conversations(); len(conversations) > 0 {
		return conversations, nil
	}
	return c.repo.GetConversations(0)
}

// CreateConversation opens a conversation manually.
func (c *Core) CreateConversation(name, phone, email, channelName string) (*entity.Conversation, error) {
	conv := entity.NewConversation(name, phone, email, channelName)
	if err := c.repo.CreateConversation(conv); err != nil {
		return nil, err
	}
	c.store.UpsertConversation(*conv)
	if c.hub != nil {
		c.hub.BroadcastConversation(*conv)
	}
	return conv, nil
}

// Messages returns the loaded message window of a conversation.
func (c *Core) Messages(conversationID string) ([]entity.Message, error) {
	if window := c.store.Messages(conversationID); len(window) > 0 {
		return window, nil
	}
	return c.repo.GetMessages(conversationID, c.messageLimit)
}

// OlderMessages loads one more page into the window and returns it.
func (c *Core) OlderMessages(conversationID string) ([]entity.Message, error) {
	if err := c.subscriptions.LoadOlderMessages(conversationID); err != nil {
		return nil, err
	}
	return c.store.Messages(conversationID), nil
}

// SelectConversation focuses the console on a conversation.
func (c *Core) SelectConversation(conversationID string) error {
	return c.subscriptions.SelectConversation(conversationID)
}

// SetVisible pauses or resumes the live streams with console visibility.
func (c *Core) SetVisible(visible bool) error {
	return c.subscriptions.SetVisible(visible)
}

// SessionWindow evaluates the messaging window of a conversation at call
// time. Never cached; the window closes as the clock runs.
func (c *Core) SessionWindow(conversationID string) (*entity.SessionStatus, error) {
	window, err := c.evaluateWindow(conversationID)
	if err != nil {
		return nil, err
	}
	return &entity.SessionStatus{
		Status:             string(window.Status),
		RemainingSeconds:   int64(window.Remaining.Seconds()),
		NeedsTemplateFirst: window.NeedsTemplateFirst,
		CanSendFreeForm:    window.CanSendFreeForm(),
	}, nil
}

func (c *Core) evaluateWindow(conversationID string) (session.Window, error) {
	lastInboundAt, err := c.repo.LastInboundAt(conversationID)
	if err != nil {
		return session.Window{}, err
	}

	templateSent := false
	if lastInboundAt != nil {
		templateSent, err = c.repo.HasTemplateSince(conversationID, *lastInboundAt)
		if err != nil {
			return session.Window{}, err
		}
	}

	return session.Evaluate(lastInboundAt, templateSent, time.Now()), nil
}

// gateFreeForm blocks free-form sends outside the session window. The
// needs-template-first flag deliberately does not gate here.
func (c *Core) gateFreeForm(conversationID string) error {
	window, err := c.evaluateWindow(conversationID)
	if err != nil {
		return err
	}
	if !window.CanSendFreeForm() {
		return ErrSessionExpired
	}
	return nil
}

// SendText sends a free-form text message through the delivery pipeline.
func (c *Core) SendText(req delivery.TextRequest) (*entity.Message, error) {
	if err := c.gateFreeForm(req.ConversationID); err != nil {
		return nil, err
	}
	return c.deliverySvc.SendText(req)
}

// SendMedia sends a media message through the delivery pipeline.
func (c *Core) SendMedia(req delivery.MediaRequest) (*entity.Message, error) {
	if err := c.gateFreeForm(req.ConversationID); err != nil {
		return nil, err
	}
	return c.deliverySvc.SendMedia(req)
}

// SendTemplate sends a pre-approved template. Templates are how a session
// is opened or re-opened, so they bypass the window gate.
func (c *Core) SendTemplate(req delivery.TemplateRequest) (*entity.Message, error) {
	return c.deliverySvc.SendTemplate(req)
}

// SendInteractive sends a button message through the delivery pipeline.
func (c *Core) SendInteractive(req delivery.InteractiveRequest) (*entity.Message, error) {
	if err := c.gateFreeForm(req.ConversationID); err != nil {
		return nil, err
	}
	return c.deliverySvc.SendInteractive(req)
}

// ScheduleMessage stores a message for the external scheduler to dispatch.
func (c *Core) ScheduleMessage(req delivery.ScheduleRequest) (*entity.Message, error) {
	return c.deliverySvc.ScheduleMessage(req)
}

// DueScheduledMessages lists stored messages whose send time has passed.
// Dispatch of scheduled messages belongs to the external scheduler.
func (c *Core) DueScheduledMessages() ([]entity.Message, error) {
	return c.repo.DueScheduledMessages(time.Now())
}

// RecordInbound ingests a customer message, creating the conversation on
// first contact.
func (c *Core) RecordInbound(phone, name, msgType, content string) (*entity.Message, error) {
	conv, err := c.repo.FindConversationByPhone(phone)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		conv, err = c.CreateConversation(name, phone, "", entity.ChannelWhatsApp)
		if err != nil {
			return nil, err
		}
	}

	msg := entity.NewInbound(conv.ID, msgType, content)
	if err := c.repo.RecordInbound(msg); err != nil {
		return nil, err
	}

	c.store.UpsertMessage(conv.ID, *msg)
	if c.hub != nil {
		c.hub.BroadcastMessage(*msg)
	}
	return msg, nil
}

// SuggestReply drafts a reply from the conversation's recent history.
func (c *Core) SuggestReply(ctx context.Context, conversationID string) (string, error) {
	if c.suggestSvc == nil {
		return "", ErrSuggestUnavailable
	}

	conv, err := c.repo.GetConversation(conversationID)
	if err != nil {
		return "", err
	}
	history, err := c.repo.GetMessages(conversationID, c.messageLimit)
	if err != nil {
		return "", err
	}

	return c.suggestSvc.SuggestReply(ctx, conv, history)
}

// SetConversationStatus closes or reopens a conversation.
func (c *Core) SetConversationStatus(conversationID, status string) error {
	if status != entity.ConversationOpen && status != entity.ConversationClosed {
		return fmt.Errorf("unknown conversation status %q", status)
	}
	if err := c.repo.SetConversationStatus(conversationID, status); err != nil {
		return err
	}
	c.log.With(
		slog.String("conversation_id", conversationID),
		slog.String("status", status),
	).Info("conversation status changed")
	return nil
}

// SetDealStatus records the deal outcome of a conversation.
func (c *Core) SetDealStatus(conversationID, dealStatus string) error {
	switch dealStatus {
	case entity.DealOpen, entity.DealWon, entity.DealLost:
	default:
		return fmt.Errorf("unknown deal status %q", dealStatus)
	}
	return c.repo.SetDealStatus(conversationID, dealStatus)
}

// MarkRead resets the unread counter and tells other console clients.
func (c *Core) MarkRead(username, conversationID string) error {
	if err := c.repo.MarkConversationRead(conversationID); err != nil {
		c.log.With(sl.Err(err), slog.String("conversation_id", conversationID)).Error("mark read")
		return err
	}
	c.store.SetUnread(conversationID, 0)
	if c.hub != nil {
		c.hub.BroadcastReadReceipt(username, conversationID)
	}
	return nil
}

// HandleMarkRead implements the websocket client-message contract.
func (c *Core) HandleMarkRead(username, conversationID string) error {
	return c.MarkRead(username, conversationID)
}
