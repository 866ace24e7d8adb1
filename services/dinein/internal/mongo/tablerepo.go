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

type TableRepo struct {
	collection *mongo.Collection
}

func NewTableRepo(db *mongo.Database) *TableRepo {
	return &TableRepo{
		collection: db.Collection(tablesCollection),
	}
}

func (r *TableRepo) Create(ctx context.Context, table *dining.Table) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}

	if _, err := r.collection.InsertOne(ctx, table); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("cannot create table %s: %w", table.Code, dining.ErrDuplicateKey)
		}
		return fmt.Errorf("cannot create table: %w", err)
	}

	return nil
}

func (r *TableRepo) Get(ctx context.Context, id uuid.UUID) (*dining.Table, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *TableRepo) GetByToken(ctx context.Context, token string) (*dining.Table, error) {
	return r.findOne(ctx, bson.M{"access_token": token})
}

func (r *TableRepo) findOne(ctx context.Context, filter bson.M) (*dining.Table, error) {
	var table dining.Table
	err := r.collection.FindOne(ctx, filter).Decode(&table)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get table: %w", err)
	}
	return &table, nil
}

func (r *TableRepo) List(ctx context.Context) ([]*dining.Table, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list tables: %w", err)
	}
	defer cursor.Close(ctx)

	var result []*dining.Table
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode tables: %w", err)
	}

	return result, nil
}

func (r *TableRepo) Save(ctx context.Context, table *dining.Table) error {
	if table == nil {
		return fmt.Errorf("table is nil")
	}

	next := *table
	next.Version = table.Version + 1

	filter := bson.M{"_id": table.ID, "version": table.Version}
	update := bson.M{"$set": next}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cannot update table: %w", err)
	}

	if result.MatchedCount == 0 {
		return dining.Conflict("table %s was modified by another request", table.Code)
	}

	table.Version = next.Version
	return nil
}
