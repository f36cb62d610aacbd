package delivery

import (
	"LeadDesk/entity"
	"LeadDesk/internal/lib/sl"
	"LeadDesk/internal/service/channel"
	"log/slog"
	"time"
)

// SendText persists and dispatches a free-form text message. The returned
// message is in pending state; the dispatch outcome is reconciled onto it
// asynchronously.
func (s *Service) SendText(req TextRequest) (*entity.Message, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	msg := entity.NewOutbound(req.ConversationID, req.SenderID, entity.TypeText, req.Text)

	return s.persistAndDispatch(msg, func(to string) (string, error) {
		return s.provider.SendText(to, channel.TextPayload{Body: req.Text})
	})
}

// SendMedia persists and dispatches an image/video/audio/document message.
func (s *Service) SendMedia(req MediaRequest) (*entity.Message, error) {
	if err := req.check(); err != nil {
		return nil, err
	}

	msg := entity.NewOutbound(req.ConversationID, req.SenderID, req.Kind, req.Caption)
	msg.MediaURL = req.URL
	msg.MediaName = req.Filename

	return s.persistAndDispatch(msg, func(to string) (string, error) {
		return s.provider.SendMedia(to, channel.MediaPayload{
			Kind:     req.Kind,
			URL:      req.URL,
			Caption:  req.Caption,
			Filename: req.Filename,
		})
	})
}

// SendTemplate persists and dispatches a pre-approved template message.
func (s *Service) SendTemplate(req TemplateRequest) (*entity.Message, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	msg := entity.NewOutbound(req.ConversationID, req.SenderID, entity.TypeTemplate, req.Name)

	return s.persistAndDispatch(msg, func(to string) (string, error) {
		return s.provider.SendTemplate(to, channel.TemplatePayload{
			Name:       req.Name,
			Language:   req.Language,
			Parameters: req.Parameters,
		})
	})
}

// SendInteractive persists and dispatches a button message.
func (s *Service) SendInteractive(req InteractiveRequest) (*entity.Message, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}

	msg := entity.NewOutbound(req.ConversationID, req.SenderID, entity.TypeInteractive, req.Body)

	buttons := make([]channel.Button, 0, len(req.Buttons))
	for _, b := range req.Buttons {
		buttons = append(buttons, channel.Button{ID: b.ID, Title: b.Title})
	}

	return s.persistAndDispatch(msg, func(to string) (string, error) {
		return s.provider.SendInteractive(to, channel.InteractivePayload{
			Body:    req.Body,
			Buttons: buttons,
		})
	})
}

// ScheduleMessage stores a message for later dispatch. No provider call is
// made here; the external scheduler picks due messages up.
func (s *Service) ScheduleMessage(req ScheduleRequest) (*entity.Message, error) {
	if err := req.check(time.Now()); err != nil {
		return nil, err
	}

	conv, err := s.repo.GetConversation(req.ConversationID)
	if err != nil {
		return nil, err
	}

	msg := entity.NewOutbound(req.ConversationID, req.SenderID, entity.TypeText, req.Text)
	msg.Status = entity.StatusScheduled
	msg.ScheduledFor = &req.ScheduledFor

	if err := s.repo.SaveOutboundMessage(msg); err != nil {
		return nil, err
	}
	s.publish(conv, msg)

	return msg, nil
}

// persistAndDispatch is the shared pipeline body: resolve the conversation,
// durably save the pending message (which also refreshes the conversation
// preview and resets the unread counter), then dispatch in the background.
func (s *Service) persistAndDispatch(msg *entity.Message, call func(to string) (string, error)) (*entity.Message, error) {
	conv, err := s.repo.GetConversation(msg.ConversationID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveOutboundMessage(msg); err != nil {
		return nil, err
	}
	s.publish(conv, msg)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.dispatch(conv, msg, call)
	}()

	return msg, nil
}

// dispatch reconciles the provider's answer onto the durable record. Runs to
// completion once the message is pending, regardless of what the caller does.
func (s *Service) dispatch(conv *entity.Conversation, msg *entity.Message, call func(to string) (string, error)) {
	if conv.Channel != entity.ChannelWhatsApp || !s.provider.Enabled() {
		// No provider channel for this conversation: the message is
		// locally sent and the conversation stays usable.
		s.finish(conv, msg, entity.StatusSent, "")
		return
	}

	providerID, err := call(conv.Phone)
	if err != nil {
		s.log.With(
			sl.Err(err),
			slog.String("conversation_id", conv.ID),
			slog.String("message_id", msg.ID),
		).Error("dispatch failed")
		s.finish(conv, msg, entity.StatusFailed, "")
		return
	}

	s.finish(conv, msg, entity.StatusSent, providerID)
}

func (s *Service) finish(conv *entity.Conversation, msg *entity.Message, status, providerID string) {
	if err := s.repo.SetMessageStatus(msg.ID, status, providerID); err != nil {
		s.log.With(
			sl.Err(err),
			slog.String("message_id", msg.ID),
		).Error("reconcile message status")
		return
	}
	msg.Status = status
	msg.ProviderID = providerID
	s.publish(conv, msg)
}
