package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appetiteclub/dinein/services/dinein/internal/dining"
)

type ItemRepo struct {
	collection *mongo.Collection
}

func NewItemRepo(db *mongo.Database) *ItemRepo {
	return &ItemRepo{
		collection: db.Collection(itemsCollection),
	}
}

// itemDocument keeps prices as decimal strings.
type itemDocument struct {
	ID           uuid.UUID         `bson:"_id"`
	OrderID      uuid.UUID         `bson:"order_id"`
	MenuItemID   uuid.UUID         `bson:"menu_item_id"`
	Name         string            `bson:"name"`
	UnitPrice    string            `bson:"unit_price"`
	Quantity     int               `bson:"quantity"`
	Note         string            `bson:"note"`
	Status       dining.ItemStatus `bson:"status"`
	Position     int               `bson:"position"`
	CancelReason string            `bson:"cancel_reason,omitempty"`
	SentAt       *time.Time        `bson:"sent_at"`
	CookingAt    *time.Time        `bson:"cooking_at"`
	ReadyAt      *time.Time        `bson:"ready_at"`
	ServedAt     *time.Time        `bson:"served_at"`
	CanceledAt   *time.Time        `bson:"canceled_at"`
	Version      int64             `bson:"version"`
	CreatedAt    time.Time         `bson:"created_at"`
	UpdatedAt    time.Time         `bson:"updated_at"`
}

func toItemDocument(item *dining.Item) itemDocument {
	return itemDocument{
		ID:           item.ID,
		OrderID:      item.OrderID,
		MenuItemID:   item.MenuItemID,
		Name:         item.Name,
		UnitPrice:    item.UnitPrice.String(),
		Quantity:     item.Quantity,
		Note:         item.Note,
		Status:       item.Status,
		Position:     item.Position,
		CancelReason: item.CancelReason,
		SentAt:       item.SentAt,
		CookingAt:    item.CookingAt,
		ReadyAt:      item.ReadyAt,
		ServedAt:     item.ServedAt,
		CanceledAt:   item.CanceledAt,
		Version:      item.Version,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

func (d itemDocument) toDomain() (*dining.Item, error) {
	price, err := decimal.NewFromString(d.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid unit price %q on item %s: %w", d.UnitPrice, d.ID, err)
	}

	return &dining.Item{
		ID:           d.ID,
		OrderID:      d.OrderID,
		MenuItemID:   d.MenuItemID,
		Name:         d.Name,
		UnitPrice:    price,
		Quantity:     d.Quantity,
		Note:         d.Note,
		Status:       d.Status,
		Position:     d.Position,
		CancelReason: d.CancelReason,
		SentAt:       d.SentAt,
		CookingAt:    d.CookingAt,
		ReadyAt:      d.ReadyAt,
		ServedAt:     d.ServedAt,
		CanceledAt:   d.CanceledAt,
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func (r *ItemRepo) Create(ctx context.Context, item *dining.Item) error {
	if item == nil {
		return fmt.Errorf("item is nil")
	}

	if _, err := r.collection.InsertOne(ctx, toItemDocument(item)); err != nil {
		return fmt.Errorf("cannot create order item: %w", err)
	}

	return nil
}

func (r *ItemRepo) Get(ctx context.Context, id uuid.UUID) (*dining.Item, error) {
	var doc itemDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order item: %w", err)
	}
	return doc.toDomain()
}

func (r *ItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*dining.Item, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "position", Value: 1},
		{Key: "created_at", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list order items: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []itemDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("cannot decode order items: %w", err)
	}

	items := make([]*dining.Item, 0, len(docs))
	for _, doc := range docs {
		item, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *ItemRepo) Save(ctx context.Context, item *dining.Item) error {
	if item == nil {
		return fmt.Errorf("item is nil")
	}

	doc := toItemDocument(item)
	doc.Version = item.Version + 1

	filter := bson.M{"_id": item.ID, "version": item.Version}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": doc})
	if err != nil {
		return fmt.Errorf("cannot update order item: %w", err)
	}

	if result.MatchedCount == 0 {
		return dining.Conflict("order item %s was modified by another request", item.ID)
	}

	item.Version = doc.Version
	return nil
}

func (r *ItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("cannot delete order item: %w", err)
	}
	return nil
}

func (r *ItemRepo) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"order_id": orderID}); err != nil {
		return fmt.Errorf("cannot delete items of order %s: %w", orderID, err)
	}
	return nil
}
