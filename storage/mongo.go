package storage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/malusev998/currency-converter"
)

type (
	mongoStorage struct {
		ctx        context.Context
		client     *mongo.Client
		collection *mongo.Collection
	}

	preferenceDocument struct {
		Key       string    `bson:"_id"`
		Value     string    `bson:"value"`
		UpdatedAt time.Time `bson:"updatedAt"`
	}
)

func NewMongoStorage(config MongoDBConfig) (currency.Storage, error) {
	ctx := baseContext(config.BaseConfig)
	client, err := mongo.NewClient(options.Client().ApplyURI(config.ConnectionString))

	if err != nil {
		return nil, err
	}

	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	collection := config.Collection

	if collection == "" {
		collection = "preferences"
	}

	storage := mongoStorage{
		ctx:        ctx,
		client:     client,
		collection: client.Database(config.Database).Collection(collection),
	}

	if config.Migrate {
		if err := storage.Migrate(); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}

	return storage, nil
}

func (m mongoStorage) Get(ctx context.Context, key string) (string, error) {
	var doc preferenceDocument

	if err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", currency.ErrPreferenceNotFound
		}

		return "", err
	}

	return doc.Value, nil
}

func (m mongoStorage) Set(ctx context.Context, key, value string) error {
	_, err := m.collection.UpdateOne(
		ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)

	return err
}

func (m mongoStorage) GetStorageProviderName() string {
	return string(MongoDB)
}

// Migrate checks connectivity; documents are keyed by _id so no index is
// needed.
func (m mongoStorage) Migrate() error {
	return m.client.Ping(m.ctx, nil)
}

func (m mongoStorage) Drop() error {
	return m.collection.Drop(m.ctx)
}

func (m mongoStorage) Close() error {
	return m.client.Disconnect(m.ctx)
}
