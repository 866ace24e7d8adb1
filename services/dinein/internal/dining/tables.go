package dining

import (
	"context"
	"fmt"

	"github.com/appetiteclub/dinein/pkg/event"
	"github.com/google/uuid"
)

func (s *Service) ListTables(ctx context.Context) ([]TableSummary, error) {
	tables, err := s.tables.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot list tables: %w", err)
	}
	result := make([]TableSummary, 0, len(tables))
	for _, t := range tables {
		result = append(result, summarizeTable(t))
	}
	return result, nil
}

// ListTableOrders returns the orders of a table, optionally filtered by status.
func (s *Service) ListTableOrders(ctx context.Context, tableID uuid.UUID, statuses ...OrderStatus) ([]*Order, error) {
	if _, err := s.loadTable(ctx, tableID); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByTableAndStatus(ctx, tableID, statuses...)
	if err != nil {
		return nil, fmt.Errorf("cannot list orders of table %s: %w", tableID, err)
	}
	return orders, nil
}

// OpenTable seats guests at an available table. Staff opened tables get an
// ACTIVE order right away.
func (s *Service) OpenTable(ctx context.Context, tableID uuid.UUID) (TableSummary, error) {
	var table *Table
	var opened *Order

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		table, opened = nil, nil

		t, err := s.loadTable(ctx, tableID)
		if err != nil {
			return err
		}
		if err := t.Occupy(); err != nil {
			return err
		}

		current, err := s.currentOrder(ctx, t)
		if err != nil {
			return err
		}
		if current == nil || !current.Status.Open() {
			o := NewActiveOrder(t.ID)
			o.BeforeCreate()
			if err := s.orders.Create(ctx, o); err != nil {
				return fmt.Errorf("cannot create order for table %s: %w", t.Code, err)
			}
			t.Bind(o.ID)
			opened = o
		}

		if err := s.tables.Save(ctx, t); err != nil {
			return fmt.Errorf("cannot save table %s: %w", t.Code, err)
		}
		table = t
		return nil
	})
	if err != nil {
		return TableSummary{}, err
	}

	s.publishTableStatus(ctx, table, TableAvailable, "opened by staff")
	if opened != nil {
		s.publishOrder(ctx, event.EventOrderOpened, opened, 0)
	}
	return summarizeTable(table), nil
}

func (s *Service) RequestBill(ctx context.Context, tableID uuid.UUID) (TableSummary, error) {
	return s.moveTable(ctx, tableID, "bill requested", func(ctx context.Context, t *Table) error {
		current, err := s.currentOrder(ctx, t)
		if err != nil {
			return err
		}
		if current == nil || !current.Status.Open() {
			t.CurrentOrderID = nil
		}
		return t.RequestBill()
	})
}

func (s *Service) SetCleaning(ctx context.Context, tableID uuid.UUID) (TableSummary, error) {
	return s.moveTable(ctx, tableID, "cleaning", func(_ context.Context, t *Table) error {
		return t.SetCleaning()
	})
}

func (s *Service) SetAvailable(ctx context.Context, tableID uuid.UUID) (TableSummary, error) {
	return s.moveTable(ctx, tableID, "released", func(_ context.Context, t *Table) error {
		return t.SetAvailable()
	})
}

func (s *Service) moveTable(ctx context.Context, tableID uuid.UUID, reason string, move func(context.Context, *Table) error) (TableSummary, error) {
	var table *Table
	var previous TableStatus

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.loadTable(ctx, tableID)
		if err != nil {
			return err
		}
		previous = t.Status
		if err := move(ctx, t); err != nil {
			return err
		}
		if err := s.tables.Save(ctx, t); err != nil {
			return fmt.Errorf("cannot save table %s: %w", t.Code, err)
		}
		table = t
		return nil
	})
	if err != nil {
		return TableSummary{}, err
	}

	s.publishTableStatus(ctx, table, previous, reason)
	return summarizeTable(table), nil
}

// PublicTable resolves a guest access token.
func (s *Service) PublicTable(ctx context.Context, token string) (PublicTableInfo, error) {
	t, err := s.tableByToken(ctx, token)
	if err != nil {
		return PublicTableInfo{}, err
	}
	return PublicTableInfo{TableID: t.ID, Code: t.Code, Status: t.Status}, nil
}

func (s *Service) tableByToken(ctx context.Context, token string) (*Table, error) {
	if token == "" {
		return nil, notFound("no table for this access token")
	}
	t, err := s.tables.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve table token: %w", err)
	}
	if t == nil {
		return nil, notFound("no table for this access token")
	}
	return t, nil
}
