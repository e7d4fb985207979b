package gotrail

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSource loads snapshots from the collections of a MongoDB database.
type MongoSource struct {
	db *mongo.Database
}

func NewMongoSource(db *mongo.Database) *MongoSource {
	return &MongoSource{db: db}
}

func (s *MongoSource) FindSnapshot(ctx context.Context, collection string, id any, fields []string) (bson.M, error) {
	opts := options.FindOne().SetProjection(projection(fields))
	var m bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}, opts).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// projection includes fields, dropping paths already covered by a tracked ancestor
// since MongoDB rejects overlapping projection paths.
func projection(fields []string) bson.D {
	paths := append([]string(nil), fields...)
	sort.Strings(paths)
	out := bson.D{{Key: "_id", Value: 1}}
	var kept []string
	for _, p := range paths {
		if p == "_id" {
			continue
		}
		covered := false
		for _, k := range kept {
			if p == k || strings.HasPrefix(p, k+".") {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		kept = append(kept, p)
		out = append(out, bson.E{Key: p, Value: 1})
	}
	return out
}
