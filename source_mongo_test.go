package gotrail

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestProjection(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name   string
		fields []string
		want   bson.D
	}{
		{
			name:   "no fields",
			fields: nil,
			want:   bson.D{{Key: "_id", Value: 1}},
		},
		{
			name:   "sorted fields",
			fields: []string{"name", "description"},
			want:   bson.D{{Key: "_id", Value: 1}, {Key: "description", Value: 1}, {Key: "name", Value: 1}},
		},
		{
			name:   "explicit id is not repeated",
			fields: []string{"_id", "name"},
			want:   bson.D{{Key: "_id", Value: 1}, {Key: "name", Value: 1}},
		},
		{
			name:   "ancestor covers descendants",
			fields: []string{"pricing.amount", "pricing", "pricingNote"},
			want:   bson.D{{Key: "_id", Value: 1}, {Key: "pricing", Value: 1}, {Key: "pricingNote", Value: 1}},
		},
		{
			name:   "duplicates collapse",
			fields: []string{"name", "name"},
			want:   bson.D{{Key: "_id", Value: 1}, {Key: "name", Value: 1}},
		},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, projection(tc.fields))
		})
	}
}

func TestMongoSource_FindSnapshot(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns the projected document", func(mt *mtest.T) {
		s := NewMongoSource(mt.DB)
		ns := fmt.Sprintf("%s.%s", mt.DB.Name(), "articles")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "a1"},
			{Key: "name", Value: "Hello"},
		}))

		got, err := s.FindSnapshot(context.Background(), "articles", "a1", []string{"name"})
		require.NoError(mt, err)
		assert.Equal(mt, bson.M{"_id": "a1", "name": "Hello"}, got)
	})

	mt.Run("absent entity yields nil", func(mt *mtest.T) {
		s := NewMongoSource(mt.DB)
		ns := fmt.Sprintf("%s.%s", mt.DB.Name(), "articles")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		got, err := s.FindSnapshot(context.Background(), "articles", "missing", []string{"name"})
		require.NoError(mt, err)
		assert.Nil(mt, got)
	})

	mt.Run("propagates errors", func(mt *mtest.T) {
		s := NewMongoSource(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    123,
			Message: "failure",
			Name:    "CommandFailed",
		}))

		got, err := s.FindSnapshot(context.Background(), "articles", "a1", []string{"name"})
		require.Error(mt, err)
		assert.Nil(mt, got)
	})
}
