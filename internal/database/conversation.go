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

// CreateConversation inserts a new conversation.
func (m *MongoDB) CreateConversation(conv *entity.Conversation) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)
	_, err = collection.InsertOne(m.ctx, conv)
	if err != nil {
		return fmt.Errorf("mongodb insert conversation: %w", err)
	}
	return nil
}

// GetConversation returns a conversation by id, or ErrConversationNotFound.
func (m *MongoDB) GetConversation(id string) (*entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	var conv entity.Conversation
	err = collection.FindOne(m.ctx, bson.D{{Key: "_id", Value: id}}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find conversation: %w", err)
	}
	return &conv, nil
}

// FindConversationByPhone returns the conversation of a customer phone
// number, or nil when the customer never wrote before.
func (m *MongoDB) FindConversationByPhone(phone string) (*entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	var conv entity.Conversation
	err = collection.FindOne(m.ctx, bson.D{{Key: "phone", Value: phone}}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find conversation by phone: %w", err)
	}
	return &conv, nil
}

// GetConversations returns the most recent conversations, newest-first by
// last-message time.
func (m *MongoDB) GetConversations(limit int) ([]entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	opts := options.Find().
		SetSort(bson.D{{Key: "last_message.at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find conversations: %w", err)
	}
	defer cursor.Close(m.ctx)

	var conversations []entity.Conversation
	if err = cursor.All(m.ctx, &conversations); err != nil {
		return nil, fmt.Errorf("mongodb decode conversations: %w", err)
	}
	return conversations, nil
}

// GetUnassignedConversations returns open conversations with no assignee,
// oldest-first so the longest-waiting lead is distributed first.
func (m *MongoDB) GetUnassignedConversations() ([]entity.Conversation, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	filter := bson.D{
		{Key: "assigned_to", Value: ""},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: entity.ConversationClosed}}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find unassigned conversations: %w", err)
	}
	defer cursor.Close(m.ctx)

	var conversations []entity.Conversation
	if err = cursor.All(m.ctx, &conversations); err != nil {
		return nil, fmt.Errorf("mongodb decode conversations: %w", err)
	}
	return conversations, nil
}

// SetAssignedTo updates a conversation's assignee. An empty agentID clears it.
func (m *MongoDB) SetAssignedTo(conversationID, agentID string) error {
	return m.updateConversation(conversationID, bson.D{
		{Key: "assigned_to", Value: agentID},
		{Key: "updated_at", Value: time.Now()},
	})
}

// SetConversationStatus transitions a conversation between open and closed.
// Conversations are never deleted.
func (m *MongoDB) SetConversationStatus(conversationID, status string) error {
	return m.updateConversation(conversationID, bson.D{
		{Key: "status", Value: status},
		{Key: "updated_at", Value: time.Now()},
	})
}

// SetDealStatus updates a conversation's deal outcome.
func (m *MongoDB) SetDealStatus(conversationID, dealStatus string) error {
	return m.updateConversation(conversationID, bson.D{
		{Key: "deal_status", Value: dealStatus},
		{Key: "updated_at", Value: time.Now()},
	})
}

// MarkConversationRead resets the unread counter to zero.
func (m *MongoDB) MarkConversationRead(conversationID string) error {
	return m.updateConversation(conversationID, bson.D{
		{Key: "unread_count", Value: 0},
		{Key: "updated_at", Value: time.Now()},
	})
}

func (m *MongoDB) updateConversation(conversationID string, set bson.D) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	result, err := collection.UpdateOne(m.ctx,
		bson.D{{Key: "_id", Value: conversationID}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("mongodb update conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// ActiveLeadsCount returns, per agent, the number of assigned non-closed
// conversations. Agents with no active conversations are absent from the map.
func (m *MongoDB) ActiveLeadsCount() (map[string]int, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(conversationsCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "assigned_to", Value: bson.D{{Key: "$ne", Value: ""}}},
			{Key: "status", Value: bson.D{{Key: "$ne", Value: entity.ConversationClosed}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$assigned_to"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := collection.Aggregate(m.ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("mongodb aggregate active leads: %w", err)
	}
	defer cursor.Close(m.ctx)

	counts := make(map[string]int)
	for cursor.Next(m.ctx) {
		var row struct {
			AgentID string `bson:"_id"`
			Count   int    `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		counts[row.AgentID] = row.Count
	}
	return counts, cursor.Err()
}
