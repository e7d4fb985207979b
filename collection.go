package gotrail

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection wraps a MongoDB collection so that saves through it are audited.
type Collection[T Document] struct {
	coll    *mongo.Collection
	tracker *Tracker[T]
}

// NewCollection tracks documents of coll. Snapshots are read from coll's database and
// Config.Collection defaults to coll's name.
func NewCollection[T Document](coll *mongo.Collection, store ActionStore, cfg Config, opts ...Option) (*Collection[T], error) {
	if cfg.Collection == "" {
		cfg.Collection = coll.Name()
	}
	t, err := New[T](store, NewMongoSource(coll.Database()), cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Collection[T]{coll: coll, tracker: t}, nil
}

// Tracker returns the underlying Tracker.
func (c *Collection[T]) Tracker() *Tracker[T] {
	return c.tracker
}

// Save upserts doc by its id and records its actions.
func (c *Collection[T]) Save(ctx context.Context, doc T) error {
	return c.tracker.Save(ctx, doc, func(ctx context.Context) error {
		_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": doc.DocumentID()}, doc, options.Replace().SetUpsert(true))
		return err
	})
}

// FindByID decodes the document with the given id into out.
func (c *Collection[T]) FindByID(ctx context.Context, id any, out T) error {
	return c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(out)
}

// ListActions returns the history of the entity id, newest first.
func (c *Collection[T]) ListActions(ctx context.Context, id any, opts ...ListOption) (*ActionPage, error) {
	return c.tracker.ListActions(ctx, id, opts...)
}
