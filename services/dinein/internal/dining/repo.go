package dining

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Get methods return nil, nil when the entity does not exist. Save methods
// compare the stored version with the entity's version, bump it, and return
// an ErrConflict error if another writer got there first.

type TableRepo interface {
	Create(ctx context.Context, table *Table) error
	Get(ctx context.Context, id uuid.UUID) (*Table, error)
	GetByToken(ctx context.Context, token string) (*Table, error)
	List(ctx context.Context) ([]*Table, error)
	Save(ctx context.Context, table *Table) error
}

type OrderRepo interface {
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByTableAndStatus(ctx context.Context, tableID uuid.UUID, statuses ...OrderStatus) ([]*Order, error)
	Save(ctx context.Context, order *Order) error
}

type ItemRepo interface {
	Create(ctx context.Context, item *Item) error
	Get(ctx context.Context, id uuid.UUID) (*Item, error)
	// ListByOrder returns items by position, then creation time.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Item, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) error
}

type PaymentRepo interface {
	// Create wraps ErrDuplicateKey when the order already has a payment.
	Create(ctx context.Context, payment *Payment) error
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*Payment, error)
}

type Repos struct {
	TableRepo   TableRepo
	OrderRepo   OrderRepo
	ItemRepo    ItemRepo
	PaymentRepo PaymentRepo
}

// TxRunner runs fn as one atomic unit. Repositories called with the context
// handed to fn take part in the transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// MenuItem is the catalog view the dining floor needs.
type MenuItem struct {
	ID         uuid.UUID       `json:"id"`
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Available  bool            `json:"is_available"`
	ImageURL   string          `json:"image_url,omitempty"`
}

// MenuLookup resolves catalog entries. Find returns nil, nil for unknown ids
// and FindAll returns only the entries it found.
type MenuLookup interface {
	Find(ctx context.Context, id uuid.UUID) (*MenuItem, error)
	FindAll(ctx context.Context, ids []uuid.UUID) ([]MenuItem, error)
	ListAvailable(ctx context.Context) ([]MenuItem, error)
}

// MenuWriter stores catalog entries, used by seeding.
type MenuWriter interface {
	UpsertMenuItem(ctx context.Context, item MenuItem) error
}

type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
