package repository

import (
	"LeadDesk/entity"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetAgents returns the console's agent roster, active agents first.
func (m *MongoDB) GetAgents() ([]entity.Agent, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(agentsCollection)

	opts := options.Find().SetSort(bson.D{{Key: "active", Value: -1}, {Key: "name", Value: 1}})

	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find agents: %w", err)
	}
	defer cursor.Close(m.ctx)

	var agents []entity.Agent
	if err = cursor.All(m.ctx, &agents); err != nil {
		return nil, fmt.Errorf("mongodb decode agents: %w", err)
	}
	return agents, nil
}

// UpsertAgent creates or updates an agent record and stamps last_seen.
func (m *MongoDB) UpsertAgent(agent *entity.Agent) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(agentsCollection)

	agent.LastSeen = time.Now()
	opts := options.Replace().SetUpsert(true)
	_, err = collection.ReplaceOne(m.ctx, bson.D{{Key: "_id", Value: agent.ID}}, agent, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert agent: %w", err)
	}
	return nil
}
