package gotrail

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoStore stores actions in a MongoDB collection.
type MongoStore struct {
	collection *mongo.Collection
	logger     *zap.Logger
	now        func() time.Time
}

// NewMongoStore stores actions in db's collection name, DefaultActionCollection when empty.
func NewMongoStore(db *mongo.Database, name string, logger *zap.Logger) *MongoStore {
	if name == "" {
		name = DefaultActionCollection
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MongoStore{
		collection: db.Collection(name),
		logger:     logger.Named("MongoStore"),
		now:        time.Now,
	}
}

// EnsureIndexes creates the index backing List.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "entity_collection", Value: 1},
			{Key: "entity_id", Value: 1},
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		},
	})
	if err != nil {
		s.logger.Error("EnsureIndexes: CreateOne failed", zap.Error(err))
		return fmt.Errorf("gotrail: failed to create action index: %w", err)
	}
	return nil
}

func (s *MongoStore) Persist(ctx context.Context, actions []Action) error {
	if len(actions) == 0 {
		return nil
	}
	ts := s.now().UTC()
	docs := make([]interface{}, len(actions))
	for i, a := range actions {
		if a.ID == nil {
			a.ID = primitive.NewObjectID()
		}
		a.CreatedAt = ts
		a.UpdatedAt = ts
		docs[i] = a
	}

	if _, err := s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		s.logger.Error("Persist: InsertMany failed", zap.Error(err), zap.Int("count", len(docs)))
		return err
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, collection string, entityID any, page Page) (*ActionPage, error) {
	filter := bson.M{"entity_collection": collection, "entity_id": entityID}
	out := &ActionPage{Actions: []Action{}, Offset: page.Offset, Limit: page.Limit}

	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		s.logger.Error("List: CountDocuments failed", zap.Error(err), zap.Any("filter", filter))
		return nil, err
	}
	out.Total = total
	if total == 0 || page.Limit == 0 || int64(page.Offset) >= total {
		return out, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		s.logger.Error("List: Find failed", zap.Error(err), zap.Any("filter", filter))
		return nil, err
	}
	if err := cursor.All(ctx, &out.Actions); err != nil {
		s.logger.Error("List: cursor.All failed", zap.Error(err), zap.Any("filter", filter))
		return nil, err
	}
	return out, nil
}
