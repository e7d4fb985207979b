package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mickamy/gotrail"
)

type tag struct {
	ID   primitive.ObjectID `bson:"_id"`
	Name string             `bson:"name"`
}

type post struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description,omitempty"`
	Untracked   string               `bson:"untracked,omitempty"`
	Tags        []primitive.ObjectID `bson:"tags"`
	Published   time.Time            `bson:"published"`
}

func (p *post) DocumentID() any { return p.ID }

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Saves a document a few times against MongoDB and prints its history",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.logger.Sync() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		client, err := a.connectMongo(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		db := client.Database(a.cfg.MongodbConfig.DB)

		tags := db.Collection("demo_tags")
		golang := tag{ID: primitive.NewObjectID(), Name: "golang"}
		if _, err := tags.InsertOne(ctx, golang); err != nil {
			return fmt.Errorf("insert tag: %w", err)
		}

		store := gotrail.NewMongoStore(db, a.cfg.MongodbConfig.ActionCollection, a.logger)
		posts, err := gotrail.NewCollection[*post](db.Collection("demo_posts"), store, gotrail.Config{
			Fields: []any{
				"name",
				"description",
				gotrail.Field{Name: "published", Label: "Published at"},
				gotrail.Field{Name: "tags", Resolver: gotrail.NewReferenceResolver(tags)},
			},
		}, gotrail.WithLogger(a.logger))
		if err != nil {
			return err
		}

		doc := &post{ID: primitive.NewObjectID(), Name: "Test", Tags: []primitive.ObjectID{}, Published: time.Now().UTC().Truncate(time.Millisecond)}
		if err := posts.Save(ctx, doc); err != nil {
			return fmt.Errorf("create: %w", err)
		}

		doc.Description = "Updated description"
		doc.Tags = append(doc.Tags, golang.ID)
		if err := posts.Save(ctx, doc); err != nil {
			return fmt.Errorf("update: %w", err)
		}

		doc.Untracked = "not audited"
		if err := posts.Save(ctx, doc); err != nil {
			return fmt.Errorf("untracked update: %w", err)
		}

		saveCtx := gotrail.WithUser(ctx, "demo-user")
		saveCtx = gotrail.WithMessage(saveCtx, "demo run")
		saveCtx = gotrail.WithData(saveCtx, map[string]any{"trace_id": uuid.NewString()})
		doc.Description = "Updated description with user"
		if err := posts.Save(saveCtx, doc); err != nil {
			return fmt.Errorf("attributed update: %w", err)
		}

		page, err := posts.ListActions(ctx, doc.ID)
		if err != nil {
			return err
		}
		a.logger.Info("demo finished", zap.Int64("total", page.Total))
		for _, act := range page.Actions {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%-12s\t%v -> %v\tuser=%v\n",
				act.CreatedAt.Format(time.RFC3339), act.Type, act.Field, act.OldValue, act.NewValue, act.User)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "actions = %d (expected 4)\n", page.Total)
		return nil
	},
}
