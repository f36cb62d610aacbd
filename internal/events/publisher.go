package events

import (
	"LeadDesk/entity"
	"LeadDesk/internal/config"
	"LeadDesk/internal/lib/sl"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits platform events to RabbitMQ so the rest of the agency
// platform (reporting, automations) can react to inbox activity. Publishing
// is best-effort: failures are logged, never surfaced to the pipelines.
type Publisher struct {
	exchange string
	log      *slog.Logger

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

func NewPublisher(conf *config.Config, logger *slog.Logger) (*Publisher, error) {
	if !conf.Rabbit.Enabled {
		return nil, nil
	}

	conn, err := amqp.Dial(conf.Rabbit.URL)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	if err := channel.ExchangeDeclare(conf.Rabbit.Exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp exchange declare: %w", err)
	}

	return &Publisher{
		exchange: conf.Rabbit.Exchange,
		conn:     conn,
		channel:  channel,
		log:      logger.With(sl.Module("events")),
	}, nil
}

func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// MessageStatus publishes a delivery-status change.
func (p *Publisher) MessageStatus(conv *entity.Conversation, msg *entity.Message) {
	p.publish(TypeMessageStatus, msg.ConversationID, messageStatus(msg))
}

// ConversationAssigned publishes an assignment change.
func (p *Publisher) ConversationAssigned(conversationID, agentID string) {
	p.publish(TypeConversationAssigned, conversationID, ConversationAssignedV1{
		ConversationID: conversationID,
		AgentID:        agentID,
		AssignedAt:     time.Now().UTC(),
	})
}

func (p *Publisher) publish(eventType, correlationID string, data any) {
	env := Envelope{
		Meta: Meta{
			ID:            uuid.NewString(),
			CorrelationID: correlationID,
			Type:          eventType,
			Time:          time.Now().UTC(),
		},
		Data: data,
	}

	body, err := json.Marshal(env)
	if err != nil {
		p.log.With(sl.Err(err)).Error("marshal event envelope")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx, p.exchange, eventType, false, false, amqp.Publishing{
		ContentType:   "application/json",
		Body:          body,
		DeliveryMode:  amqp.Persistent,
		MessageId:     env.Meta.ID,
		CorrelationId: env.Meta.CorrelationID,
		Type:          env.Meta.Type,
		Timestamp:     env.Meta.Time,
	})
	p.mu.Unlock()

	if err != nil {
		p.log.With(sl.Err(err), slog.String("type", eventType)).Error("publish event")
	}
}
