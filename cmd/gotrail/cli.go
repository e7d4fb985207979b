package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mickamy/gotrail"
	"github.com/mickamy/gotrail/internal/conf"
	"github.com/mickamy/gotrail/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "gotrail",
	Short:         "Audit trail tooling",
	Long:          `Inspect and prepare gotrail action stores.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *conf.AppConfig
	logger *zap.Logger
}

func loadApp(cmd *cobra.Command) (*app, error) {
	confFile, _ := cmd.Flags().GetString("config")
	cfg, err := conf.NewConfig(confFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(cfg.LogConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &app{cfg: cfg, logger: l}, nil
}

func (a *app) connectMongo(ctx context.Context) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.cfg.MongodbConfig.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	return client, nil
}

var historyCmd = &cobra.Command{
	Use:   "history <collection> <entity-id>",
	Short: "Lists the recorded actions of an entity, newest first",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.logger.Sync() }()

		offset, _ := cmd.Flags().GetInt("offset")
		limit, _ := cmd.Flags().GetInt("limit")
		page, err := gotrail.NewPage(gotrail.WithOffset(offset), gotrail.WithLimit(limit))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		var entityID any = args[1]
		if oid, err := primitive.ObjectIDFromHex(args[1]); err == nil {
			entityID = oid
		}

		var store gotrail.ActionStore
		backend, _ := cmd.Flags().GetString("store")
		switch backend {
		case "mongo":
			client, err := a.connectMongo(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(context.Background()) }()
			store = gotrail.NewMongoStore(client.Database(a.cfg.MongodbConfig.DB), a.cfg.MongodbConfig.ActionCollection, a.logger)
		case "postgres":
			pool, err := pgxpool.New(ctx, a.cfg.PostgresConfig.DSN)
			if err != nil {
				return fmt.Errorf("failed to connect to postgres: %w", err)
			}
			defer pool.Close()
			if store, err = gotrail.NewPostgresStore(pool, a.cfg.PostgresConfig.ActionTable, a.logger); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown store %q", backend)
		}

		res, err := store.List(ctx, args[0], entityID, page)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates the action table in Postgres and the action index in MongoDB",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = a.logger.Sync() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		if skip, _ := cmd.Flags().GetBool("skip-postgres"); !skip {
			pool, err := pgxpool.New(ctx, a.cfg.PostgresConfig.DSN)
			if err != nil {
				return fmt.Errorf("failed to connect to postgres: %w", err)
			}
			defer pool.Close()
			if err := gotrail.MigratePostgres(ctx, pool, a.cfg.PostgresConfig.ActionTable); err != nil {
				return err
			}
			a.logger.Info("postgres action table ready", zap.String("table", a.cfg.PostgresConfig.ActionTable))
		}

		if skip, _ := cmd.Flags().GetBool("skip-mongo"); !skip {
			client, err := a.connectMongo(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Disconnect(context.Background()) }()
			store := gotrail.NewMongoStore(client.Database(a.cfg.MongodbConfig.DB), a.cfg.MongodbConfig.ActionCollection, a.logger)
			if err := store.EnsureIndexes(ctx); err != nil {
				return err
			}
			a.logger.Info("mongodb action index ready", zap.String("collection", a.cfg.MongodbConfig.ActionCollection))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to config file")

	historyCmd.Flags().Int("offset", 0, "number of newest actions to skip")
	historyCmd.Flags().Int("limit", gotrail.DefaultLimit, "maximum number of actions to print")
	historyCmd.Flags().String("store", "mongo", "action store backend: mongo or postgres")

	migrateCmd.Flags().Bool("skip-postgres", false, "do not create the postgres action table")
	migrateCmd.Flags().Bool("skip-mongo", false, "do not create the mongodb action index")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(demoCmd)
}
