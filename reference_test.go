package gotrail

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestToSlice(t *testing.T) {
	t.Parallel()

	id := primitive.NewObjectID()
	tcs := []struct {
		name string
		in   any
		want []any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "bson array", in: bson.A{"a", "b"}, want: []any{"a", "b"}},
		{name: "typed slice", in: []primitive.ObjectID{id}, want: []any{id}},
		{name: "object id is a single id", in: id, want: []any{id}},
		{name: "scalar", in: "a", want: []any{"a"}},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, toSlice(tc.in))
		})
	}
}

func TestReferenceResolver_Resolve(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("summarizes referenced documents", func(mt *mtest.T) {
		r := NewReferenceResolver(mt.Coll)
		ns := fmt.Sprintf("%s.%s", mt.Coll.Database().Name(), mt.Coll.Name())
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Go"},
		}))

		oldValue, newValue, err := r.Resolve(context.Background(), bson.A{}, bson.A{id})
		require.NoError(mt, err)
		assert.Equal(mt, []bson.M{}, oldValue)
		assert.Equal(mt, []bson.M{{"_id": id, "name": "Go"}}, newValue)
	})

	mt.Run("missing references become empty summaries", func(mt *mtest.T) {
		r := NewReferenceResolver(mt.Coll, "name")
		ns := fmt.Sprintf("%s.%s", mt.Coll.Database().Name(), mt.Coll.Name())
		kept, gone := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: kept},
			{Key: "name", Value: "Rust"},
		}))

		oldValue, newValue, err := r.Resolve(context.Background(), bson.A{gone, kept}, bson.A{kept})
		require.NoError(mt, err)
		assert.Equal(mt, []bson.M{{}, {"_id": kept, "name": "Rust"}}, oldValue)
		assert.Equal(mt, []bson.M{{"_id": kept, "name": "Rust"}}, newValue)
	})

	mt.Run("no ids issue no query", func(mt *mtest.T) {
		r := NewReferenceResolver(mt.Coll)

		oldValue, newValue, err := r.Resolve(context.Background(), nil, bson.A{})
		require.NoError(mt, err)
		assert.Equal(mt, []bson.M{}, oldValue)
		assert.Equal(mt, []bson.M{}, newValue)
	})

	mt.Run("propagates find errors", func(mt *mtest.T) {
		r := NewReferenceResolver(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    123,
			Message: "failure",
			Name:    "CommandFailed",
		}))

		_, _, err := r.Resolve(context.Background(), nil, bson.A{primitive.NewObjectID()})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to find references")
	})
}
