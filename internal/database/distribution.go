package repository

import (
	"LeadDesk/entity"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const distributionSettingsID = "distribution"

// GetDistributionSettings returns the distribution configuration. A missing
// document means distribution was never configured and is disabled.
func (m *MongoDB) GetDistributionSettings() (*entity.DistributionSettings, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(settingsCollection)

	var settings entity.DistributionSettings
	err = collection.FindOne(m.ctx, bson.D{{Key: "_id", Value: distributionSettingsID}}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &entity.DistributionSettings{Mode: entity.DistributionManual}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb find distribution settings: %w", err)
	}
	return &settings, nil
}

// UpdateDistributionSettings replaces the distribution configuration.
func (m *MongoDB) UpdateDistributionSettings(settings *entity.DistributionSettings) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(settingsCollection)

	opts := options.Replace().SetUpsert(true)
	_, err = collection.ReplaceOne(m.ctx, bson.D{{Key: "_id", Value: distributionSettingsID}}, settings, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert distribution settings: %w", err)
	}
	return nil
}
