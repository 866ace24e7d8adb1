package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appetiteclub/dinein/services/dinein/internal/dining"
)

type OrderRepo struct {
	collection *mongo.Collection
}

func NewOrderRepo(db *mongo.Database) *OrderRepo {
	return &OrderRepo{
		collection: db.Collection(ordersCollection),
	}
}

func (r *OrderRepo) Create(ctx context.Context, order *dining.Order) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}

	if _, err := r.collection.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("cannot create order: %w", err)
	}

	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*dining.Order, error) {
	var order dining.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order: %w", err)
	}
	return &order, nil
}

func (r *OrderRepo) ListByTableAndStatus(ctx context.Context, tableID uuid.UUID, statuses ...dining.OrderStatus) ([]*dining.Order, error) {
	filter := bson.M{"table_id": tableID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders by table: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*dining.Order
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode orders: %w", err)
	}

	return result, nil
}

func (r *OrderRepo) Save(ctx context.Context, order *dining.Order) error {
	if order == nil {
		return fmt.Errorf("order is nil")
	}

	next := *order
	next.Version = order.Version + 1

	filter := bson.M{"_id": order.ID, "version": order.Version}
	update := bson.M{"$set": next}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update order: %w", err)
	}

	if result.MatchedCount == 0 {
		return dining.Conflict("order %s was modified by another request", order.ID)
	}

	order.Version = next.Version
	return nil
}
