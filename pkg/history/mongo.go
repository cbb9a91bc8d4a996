package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultDatabase = "thankstars"
	collectionName  = "runs"
	connectTimeout  = 10 * time.Second
)

// MongoStore keeps records in the "runs" collection of a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// NewMongoStore connects to uri and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if database == "" {
		database = defaultDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return NewMongoStoreFromClient(client, database), nil
}

// NewMongoStoreFromClient wraps an existing client.
func NewMongoStoreFromClient(client *mongo.Client, database string) *MongoStore {
	if database == "" {
		database = defaultDatabase
	}
	return &MongoStore{
		client: client,
		runs:   client.Database(database).Collection(collectionName),
	}
}

// Save upserts r by ID.
func (s *MongoStore) Save(ctx context.Context, r *Record) error {
	_, err := s.runs.ReplaceOne(ctx, bson.M{"_id": r.ID}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save record %s: %w", r.ID, err)
	}
	return nil
}

// List returns the newest limit records.
func (s *MongoStore) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.runs.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer cur.Close(ctx)

	var records []*Record
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
