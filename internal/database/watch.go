package repository

import (
	"LeadDesk/entity"
	"LeadDesk/internal/lib/sl"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WatchConversations streams conversation inserts and updates through handler
// until the returned stop function is called. Each subscription holds its own
// connection and change stream.
func (m *MongoDB) WatchConversations(handler func(entity.Conversation)) (func(), error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace"}}}},
		}}},
	}
	return m.watch(conversationsCollection, pipeline, func(raw bson.Raw) {
		var conv entity.Conversation
		if err := bson.Unmarshal(raw, &conv); err != nil {
			m.log.Warn("decode conversation change", sl.Err(err))
			return
		}
		handler(conv)
	})
}

// WatchMessages streams message changes for a single conversation.
func (m *MongoDB) WatchMessages(conversationID string, handler func(entity.Message)) (func(), error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace"}}}},
			{Key: "fullDocument.conversation_id", Value: conversationID},
		}}},
	}
	return m.watch(messagesCollection, pipeline, func(raw bson.Raw) {
		var msg entity.Message
		if err := bson.Unmarshal(raw, &msg); err != nil {
			m.log.Warn("decode message change", sl.Err(err))
			return
		}
		handler(msg)
	})
}

func (m *MongoDB) watch(collectionName string, pipeline mongo.Pipeline, deliver func(bson.Raw)) (func(), error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}

	collection := connection.Database(m.database).Collection(collectionName)

	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	ctx, cancel := context.WithCancel(m.ctx)

	stream, err := collection.Watch(ctx, pipeline, opts)
	if err != nil {
		cancel()
		m.disconnect(connection)
		return nil, fmt.Errorf("mongodb watch %s: %w", collectionName, err)
	}

	go func() {
		defer m.disconnect(connection)
		defer stream.Close(m.ctx)

		for stream.Next(ctx) {
			var change struct {
				FullDocument bson.Raw `bson:"fullDocument"`
			}
			if err := stream.Decode(&change); err != nil {
				m.log.Warn("decode change event", sl.Err(err))
				continue
			}
			if change.FullDocument != nil {
				deliver(change.FullDocument)
			}
		}
	}()

	return cancel, nil
}
