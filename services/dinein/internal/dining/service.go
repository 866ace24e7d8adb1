package dining

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"
)

// Service implements the dining floor operations. Every command runs inside
// one transaction and publishes its events after commit.
type Service struct {
	tables    TableRepo
	orders    OrderRepo
	items     ItemRepo
	payments  PaymentRepo
	menu      MenuLookup
	tx        TxRunner
	publisher events.Publisher
	logger    apt.Logger
}

type ServiceDeps struct {
	Repos     Repos
	Menu      MenuLookup
	Tx        TxRunner
	Publisher events.Publisher
}

func NewService(deps ServiceDeps, logger apt.Logger) *Service {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	tx := deps.Tx
	if tx == nil {
		tx = noTx{}
	}
	return &Service{
		tables:    deps.Repos.TableRepo,
		orders:    deps.Repos.OrderRepo,
		items:     deps.Repos.ItemRepo,
		payments:  deps.Repos.PaymentRepo,
		menu:      deps.Menu,
		tx:        tx,
		publisher: deps.Publisher,
		logger:    logger,
	}
}

func (s *Service) loadTable(ctx context.Context, id uuid.UUID) (*Table, error) {
	t, err := s.tables.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot load table %s: %w", id, err)
	}
	if t == nil {
		return nil, notFound("table %s not found", id)
	}
	return t, nil
}

func (s *Service) loadOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot load order %s: %w", id, err)
	}
	if o == nil {
		return nil, notFound("order %s not found", id)
	}
	return o, nil
}

// loadOrderItem returns the item only if it belongs to order.
func (s *Service) loadOrderItem(ctx context.Context, order *Order, itemID uuid.UUID) (*Item, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("cannot load item %s: %w", itemID, err)
	}
	if item == nil {
		return nil, notFound("item %s not found", itemID)
	}
	if item.OrderID != order.ID {
		return nil, rejected("item %s does not belong to order %s", itemID, order.ID)
	}
	return item, nil
}

func (s *Service) listItems(ctx context.Context, orderID uuid.UUID) ([]*Item, error) {
	items, err := s.items.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("cannot list items of order %s: %w", orderID, err)
	}
	return items, nil
}

// currentOrder follows the table's weak reference. A reference to a missing
// or foreign order resolves to nil.
func (s *Service) currentOrder(ctx context.Context, t *Table) (*Order, error) {
	if t.CurrentOrderID == nil {
		return nil, nil
	}
	o, err := s.orders.Get(ctx, *t.CurrentOrderID)
	if err != nil {
		return nil, fmt.Errorf("cannot load current order of table %s: %w", t.Code, err)
	}
	if o == nil || o.TableID != t.ID {
		s.logger.Info("table references a stale order", "table_id", t.ID.String(), "order_id", t.CurrentOrderID.String())
		return nil, nil
	}
	return o, nil
}

func nextPosition(items []*Item) int {
	next := 1
	for _, i := range items {
		if i.Position >= next {
			next = i.Position + 1
		}
	}
	return next
}
