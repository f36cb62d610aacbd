package repository

import (
	"LeadDesk/entity"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SaveOutboundMessage persists an outbound message and, in the same
// transaction, refreshes the conversation preview, resets the unread counter
// and bumps updated_at. Either both records change or neither does.
func (m *MongoDB) SaveOutboundMessage(msg *entity.Message) error {
	return m.saveWithConversation(msg, bson.D{{Key: "$set", Value: bson.D{
		{Key: "last_message", Value: msg.Preview()},
		{Key: "unread_count", Value: 0},
		{Key: "updated_at", Value: time.Now()},
	}}})
}

// RecordInbound persists a customer message, bumps the unread counter and
// refreshes the conversation preview in one transaction.
func (m *MongoDB) RecordInbound(msg *entity.Message) error {
	return m.saveWithConversation(msg, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "last_message", Value: msg.Preview()},
			{Key: "updated_at", Value: time.Now()},
		}},
		{Key: "$inc", Value: bson.D{{Key: "unread_count", Value: 1}}},
	})
}

func (m *MongoDB) saveWithConversation(msg *entity.Message, convUpdate bson.D) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	db := connection.Database(m.database)
	messages := db.Collection(messagesCollection)
	conversations := db.Collection(conversationsCollection)

	session, err := connection.StartSession()
	if err != nil {
		return fmt.Errorf("mongodb start session: %w", err)
	}
	defer session.EndSession(m.ctx)

	_, err = session.WithTransaction(m.ctx, func(sc mongo.SessionContext) (interface{}, error) {
		result, err := conversations.UpdateOne(sc, bson.D{{Key: "_id", Value: msg.ConversationID}}, convUpdate)
		if err != nil {
			return nil, fmt.Errorf("mongodb update conversation: %w", err)
		}
		if result.MatchedCount == 0 {
			return nil, ErrConversationNotFound
		}
		if _, err := messages.InsertOne(sc, msg); err != nil {
			return nil, fmt.Errorf("mongodb insert message: %w", err)
		}
		return nil, nil
	})
	return err
}

// SetMessageStatus advances a message's delivery status and optionally
// attaches the provider message id. Terminal statuses are never overwritten.
func (m *MongoDB) SetMessageStatus(messageID, status, providerID string) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	set := bson.D{{Key: "status", Value: status}}
	if providerID != "" {
		set = append(set, bson.E{Key: "provider_id", Value: providerID})
	}
	filter := bson.D{
		{Key: "_id", Value: messageID},
		{Key: "status", Value: bson.D{{Key: "$nin", Value: bson.A{entity.StatusFailed, entity.StatusRead}}}},
	}

	_, err = collection.UpdateOne(m.ctx, filter, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("mongodb update message status: %w", err)
	}
	return nil
}

// GetMessages returns the most recent messages of a conversation in
// display order (oldest-first).
func (m *MongoDB) GetMessages(conversationID string, limit int) ([]entity.Message, error) {
	return m.findMessages(
		bson.D{{Key: "conversation_id", Value: conversationID}},
		limit,
	)
}

// GetMessagesBefore returns up to limit messages older than the given time,
// oldest-first, for backwards pagination.
func (m *MongoDB) GetMessagesBefore(conversationID string, before time.Time, limit int) ([]entity.Message, error) {
	return m.findMessages(
		bson.D{
			{Key: "conversation_id", Value: conversationID},
			{Key: "created_at", Value: bson.D{{Key: "$lt", Value: before}}},
		},
		limit,
	)
}

func (m *MongoDB) findMessages(filter bson.D, limit int) ([]entity.Message, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	// Fetch newest-first, then reverse so callers get display order.
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find messages: %w", err)
	}
	defer cursor.Close(m.ctx)

	var messages []entity.Message
	if err = cursor.All(m.ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongodb decode messages: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// LastInboundAt returns the timestamp of the most recent customer message,
// or nil if the customer never wrote.
func (m *MongoDB) LastInboundAt(conversationID string) (*time.Time, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	filter := bson.D{
		{Key: "conversation_id", Value: conversationID},
		{Key: "direction", Value: entity.DirectionIn},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var msg entity.Message
	err = collection.FindOne(m.ctx, filter, opts).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find last inbound: %w", err)
	}
	return &msg.CreatedAt, nil
}

// HasTemplateSince reports whether an outbound template message exists at or
// after the given time.
func (m *MongoDB) HasTemplateSince(conversationID string, since time.Time) (bool, error) {
	connection, err := m.connect()
	if err != nil {
		return false, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	filter := bson.D{
		{Key: "conversation_id", Value: conversationID},
		{Key: "direction", Value: entity.DirectionOut},
		{Key: "type", Value: entity.TypeTemplate},
		{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}},
	}

	count, err := collection.CountDocuments(m.ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongodb count templates: %w", err)
	}
	return count > 0, nil
}

// DueScheduledMessages returns scheduled messages whose send time has passed.
// Actual dispatch of these is owned by the external scheduler.
func (m *MongoDB) DueScheduledMessages(now time.Time) ([]entity.Message, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(messagesCollection)

	filter := bson.D{
		{Key: "status", Value: entity.StatusScheduled},
		{Key: "scheduled_for", Value: bson.D{{Key: "$lte", Value: now}}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduled_for", Value: 1}})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find due scheduled messages: %w", err)
	}
	defer cursor.Close(m.ctx)

	var messages []entity.Message
	if err = cursor.All(m.ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongodb decode messages: %w", err)
	}
	return messages, nil
}
