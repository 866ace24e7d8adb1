package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appetiteclub/dinein/services/dinein/internal/dining"
)

// MenuRepo serves the catalog from the local menu_items collection.
type MenuRepo struct {
	collection *mongo.Collection
}

func NewMenuRepo(db *mongo.Database) *MenuRepo {
	return &MenuRepo{
		collection: db.Collection(menuCollection),
	}
}

type menuDocument struct {
	ID         uuid.UUID  `bson:"_id"`
	CategoryID *uuid.UUID `bson:"category_id,omitempty"`
	Name       string     `bson:"name"`
	Price      string     `bson:"price"`
	Available  bool       `bson:"available"`
	ImageURL   string     `bson:"image_url,omitempty"`
}

func (d menuDocument) toDomain() (dining.MenuItem, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return dining.MenuItem{}, fmt.Errorf("invalid price %q on menu item %s: %w", d.Price, d.ID, err)
	}
	return dining.MenuItem{
		ID:         d.ID,
		CategoryID: d.CategoryID,
		Name:       d.Name,
		Price:      price,
		Available:  d.Available,
		ImageURL:   d.ImageURL,
	}, nil
}

func (r *MenuRepo) Find(ctx context.Context, id uuid.UUID) (*dining.MenuItem, error) {
	var doc menuDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get menu item: %w", err)
	}

	item, err := doc.toDomain()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *MenuRepo) FindAll(ctx context.Context, ids []uuid.UUID) ([]dining.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *MenuRepo) ListAvailable(ctx context.Context) ([]dining.MenuItem, error) {
	return r.list(ctx, bson.M{"available": true})
}

func (r *MenuRepo) list(ctx context.Context, filter bson.M) ([]dining.MenuItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []menuDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode menu items: %w", err)
	}

	items := make([]dining.MenuItem, 0, len(docs))
	for _, doc := range docs {
		item, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *MenuRepo) UpsertMenuItem(ctx context.Context, item dining.MenuItem) error {
	doc := menuDocument{
		ID:         item.ID,
		CategoryID: item.CategoryID,
		Name:       item.Name,
		Price:      item.Price.String(),
		Available:  item.Available,
		ImageURL:   item.ImageURL,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": item.ID}, doc, opts); err != nil {
		return fmt.Errorf("cannot upsert menu item %s: %w", item.Name, err)
	}
	return nil
}
