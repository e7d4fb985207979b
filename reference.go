package gotrail

import (
	"context"
	"fmt"
	"reflect"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReferenceResolver records arrays of reference ids as summaries of the referenced documents,
// e.g. [id1] becomes [{_id: id1, name: "..."}]. Ids that no longer resolve become empty summaries.
type ReferenceResolver struct {
	coll   *mongo.Collection
	fields []string
}

// NewReferenceResolver summarizes references into coll with the given fields, "name" when none are given.
func NewReferenceResolver(coll *mongo.Collection, fields ...string) *ReferenceResolver {
	if len(fields) == 0 {
		fields = []string{"name"}
	}
	return &ReferenceResolver{coll: coll, fields: fields}
}

func (r *ReferenceResolver) Resolve(ctx context.Context, oldValue, newValue any) (any, any, error) {
	oldIDs, newIDs := toSlice(oldValue), toSlice(newValue)
	ids := make([]any, 0, len(oldIDs)+len(newIDs))
	ids = append(ids, oldIDs...)
	ids = append(ids, newIDs...)

	byID := map[string]bson.M{}
	if len(ids) > 0 {
		proj := bson.D{{Key: "_id", Value: 1}}
		for _, f := range r.fields {
			proj = append(proj, bson.E{Key: f, Value: 1})
		}
		cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(proj))
		if err != nil {
			return nil, nil, fmt.Errorf("gotrail: failed to find references in %s: %w", r.coll.Name(), err)
		}
		var docs []bson.M
		if err := cursor.All(ctx, &docs); err != nil {
			return nil, nil, fmt.Errorf("gotrail: failed to decode references in %s: %w", r.coll.Name(), err)
		}
		for _, d := range docs {
			byID[refKey(d["_id"])] = d
		}
	}

	summarize := func(ids []any) []bson.M {
		out := make([]bson.M, 0, len(ids))
		for _, id := range ids {
			if d, ok := byID[refKey(id)]; ok {
				out = append(out, d)
			} else {
				out = append(out, bson.M{})
			}
		}
		return out
	}
	return summarize(oldIDs), summarize(newIDs), nil
}

func refKey(id any) string {
	return fmt.Sprintf("%T:%v", id, id)
}

// toSlice flattens a reference value into ids: nil is empty, a slice is its elements, anything else a single id.
func toSlice(v any) []any {
	if v == nil {
		return nil
	}
	switch x := v.(type) {
	case []any:
		return x
	case bson.A:
		return x
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		// ObjectID and other byte arrays are single ids.
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
