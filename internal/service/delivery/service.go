package delivery

import (
	"LeadDesk/entity"
	"LeadDesk/internal/lib/sl"
	"LeadDesk/internal/service/channel"
	"log/slog"
	"sync"
)

// Repository is what the pipeline needs from storage.
type Repository interface {
	GetConversation(id string) (*entity.Conversation, error)
	SaveOutboundMessage(msg *entity.Message) error
	SetMessageStatus(messageID, status, providerID string) error
}

// Provider is the external channel API, one operation per message variant.
type Provider interface {
	Enabled() bool
	SendText(to string, payload channel.TextPayload) (string, error)
	SendTemplate(to string, payload channel.TemplatePayload) (string, error)
	SendMedia(to string, payload channel.MediaPayload) (string, error)
	SendInteractive(to string, payload channel.InteractivePayload) (string, error)
}

// Publisher receives message status changes after they are persisted.
// Implementations fan out to the console websocket hub and the event bus;
// they must not fail the pipeline.
type Publisher interface {
	MessageStatus(conv *entity.Conversation, msg *entity.Message)
}

// Service is the save-first delivery pipeline: persist the outbound message
// in pending state, then dispatch, then reconcile the provider's answer onto
// the already-durable record. Dispatch failures degrade the message to
// failed; they are never returned to the caller.
type Service struct {
	repo      Repository
	provider  Provider
	publisher Publisher
	log       *slog.Logger

	inflight sync.WaitGroup
}

func NewService(repo Repository, provider Provider, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		log:      logger.With(sl.Module("delivery")),
	}
}

// SetPublisher attaches the status fan-out. Optional.
func (s *Service) SetPublisher(publisher Publisher) {
	s.publisher = publisher
}

// Wait blocks until all in-flight dispatches have been reconciled. In-flight
// sends run to completion; they are not cancellable.
func (s *Service) Wait() {
	s.inflight.Wait()
}

func (s *Service) publish(conv *entity.Conversation, msg *entity.Message) {
	if s.publisher != nil {
		s.publisher.MessageStatus(conv, msg)
	}
}
