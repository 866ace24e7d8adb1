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

	"github.com/appetiteclub/dinein/services/dinein/internal/dining"
)

type PaymentRepo struct {
	collection *mongo.Collection
}

func NewPaymentRepo(db *mongo.Database) *PaymentRepo {
	return &PaymentRepo{
		collection: db.Collection(paymentsCollection),
	}
}

type paymentDocument struct {
	ID         uuid.UUID            `bson:"_id"`
	OrderID    uuid.UUID            `bson:"order_id"`
	Subtotal   string               `bson:"subtotal"`
	Discount   string               `bson:"discount"`
	Tax        string               `bson:"tax"`
	ServiceFee string               `bson:"service_fee"`
	Total      string               `bson:"total"`
	Method     dining.PaymentMethod `bson:"method"`
	PaidAt     time.Time            `bson:"paid_at"`
	CreatedAt  time.Time            `bson:"created_at"`
}

func toPaymentDocument(p *dining.Payment) paymentDocument {
	return paymentDocument{
		ID:         p.ID,
		OrderID:    p.OrderID,
		Subtotal:   p.Subtotal.String(),
		Discount:   p.Discount.String(),
		Tax:        p.Tax.String(),
		ServiceFee: p.ServiceFee.String(),
		Total:      p.Total.String(),
		Method:     p.Method,
		PaidAt:     p.PaidAt,
		CreatedAt:  p.CreatedAt,
	}
}

func (d paymentDocument) toDomain() (*dining.Payment, error) {
	amounts := make([]decimal.Decimal, 5)
	for i, raw := range []string{d.Subtotal, d.Discount, d.Tax, d.ServiceFee, d.Total} {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q on payment %s: %w", raw, d.ID, err)
		}
		amounts[i] = v
	}

	return &dining.Payment{
		ID:         d.ID,
		OrderID:    d.OrderID,
		Subtotal:   amounts[0],
		Discount:   amounts[1],
		Tax:        amounts[2],
		ServiceFee: amounts[3],
		Total:      amounts[4],
		Method:     d.Method,
		PaidAt:     d.PaidAt,
		CreatedAt:  d.CreatedAt,
	}, nil
}

func (r *PaymentRepo) Create(ctx context.Context, payment *dining.Payment) error {
	if payment == nil {
		return fmt.Errorf("payment is nil")
	}

	if _, err := r.collection.InsertOne(ctx, toPaymentDocument(payment)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("payment for order %s: %w", payment.OrderID, dining.ErrDuplicateKey)
		}
		return fmt.Errorf("cannot create payment: %w", err)
	}

	return nil
}

func (r *PaymentRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (*dining.Payment, error) {
	var doc paymentDocument
	err := r.collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get payment: %w", err)
	}
	return doc.toDomain()
}
