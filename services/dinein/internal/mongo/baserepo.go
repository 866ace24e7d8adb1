package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/appetiteclub/apt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	tablesCollection   = "tables"
	ordersCollection   = "orders"
	itemsCollection    = "order_items"
	paymentsCollection = "payments"
	menuCollection     = "menu_items"
)

type BaseRepo struct {
	client *mongo.Client
	db     *mongo.Database
	logger apt.Logger
	config *apt.Config
}

func NewBaseRepo(config *apt.Config, logger apt.Logger) *BaseRepo {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &BaseRepo{
		logger: logger,
		config: config,
	}
}

func (r *BaseRepo) Start(ctx context.Context) error {
	connString := r.config.GetStringOrDef("db.mongo.url", "mongodb://localhost:27017/?replicaSet=rs0")
	dbName := r.config.GetStringOrDef("db.mongo.name", "appetite_dinein")

	clientOptions := options.Client().ApplyURI(connString).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("cannot connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("cannot ping MongoDB: %w", err)
	}

	r.client = client
	r.db = client.Database(dbName)

	if err := r.ensureIndexes(ctx); err != nil {
		return err
	}

	r.logger.Infof("Connected to MongoDB database: %s", dbName)
	return nil
}

func (r *BaseRepo) Stop(ctx context.Context) error {
	if r.client != nil {
		if err := r.client.Disconnect(ctx); err != nil {
			return fmt.Errorf("cannot disconnect from MongoDB: %w", err)
		}
		r.logger.Info("Disconnected from MongoDB")
	}
	return nil
}

func (r *BaseRepo) GetDatabase() *mongo.Database {
	return r.db
}

func (r *BaseRepo) GetClient() *mongo.Client {
	return r.client
}

// ensureIndexes creates the unique keys the dining floor relies on: one
// payment per order and one table per access token.
func (r *BaseRepo) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		tablesCollection: {
			{Keys: bson.D{{Key: "access_token", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "table_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		itemsCollection: {
			{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "position", Value: 1}}},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		menuCollection: {
			{Keys: bson.D{{Key: "available", Value: 1}}},
		},
	}

	for name, models := range indexes {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("cannot create indexes for %s: %w", name, err)
		}
	}
	return nil
}
