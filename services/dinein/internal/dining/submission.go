package dining

import (
	"context"
	"fmt"
	"strings"

	"github.com/appetiteclub/dinein/pkg/event"
	"github.com/google/uuid"
)

const submittedMessage = "order sent, a member of staff will confirm it shortly"

// PublicMenu lists what guests can order.
func (s *Service) PublicMenu(ctx context.Context) ([]MenuItem, error) {
	items, err := s.menu.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot list menu: %w", err)
	}
	return items, nil
}

// SubmitByToken replaces the guest cart of the table behind token. The
// request is the complete cart, items already on the draft are discarded.
func (s *Service) SubmitByToken(ctx context.Context, token string, req SubmitRequest) (SubmitResult, error) {
	if len(req.Items) == 0 {
		return SubmitResult{}, rejected("order must contain at least one item")
	}

	var table *Table
	var order *Order
	var previous TableStatus
	var count int

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		t, err := s.tableByToken(ctx, token)
		if err != nil {
			return err
		}
		if !t.AcceptsOrders() {
			return rejected("table %s cannot take orders while %s", t.Code, t.Status)
		}
		previous = t.Status
		if t.Status == TableAvailable {
			if err := t.Occupy(); err != nil {
				return err
			}
		}

		o, err := s.currentOrder(ctx, t)
		if err != nil {
			return err
		}
		created := o == nil
		if created {
			o = NewOrder(t.ID)
			o.BeforeCreate()
		} else if o.Status != OrderDraft {
			return rejected("table %s already has an %s order, please call a member of staff", t.Code, o.Status)
		}

		items, err := s.guestItems(ctx, o.ID, req.Items)
		if err != nil {
			return err
		}

		if note := strings.TrimSpace(req.CustomerNote); note != "" {
			o.Note = req.CustomerNote
		}

		if created {
			if err := s.orders.Create(ctx, o); err != nil {
				return fmt.Errorf("cannot create order for table %s: %w", t.Code, err)
			}
		} else {
			if err := s.items.DeleteByOrder(ctx, o.ID); err != nil {
				return fmt.Errorf("cannot clear items of order %s: %w", o.ID, err)
			}
			o.BeforeUpdate()
			if err := s.orders.Save(ctx, o); err != nil {
				return fmt.Errorf("cannot save order %s: %w", o.ID, err)
			}
		}

		for _, i := range items {
			if err := s.items.Create(ctx, i); err != nil {
				return fmt.Errorf("cannot create item: %w", err)
			}
		}

		if t.CurrentOrderID == nil || *t.CurrentOrderID != o.ID {
			t.Bind(o.ID)
		}
		t.BeforeUpdate()
		if err := s.tables.Save(ctx, t); err != nil {
			return fmt.Errorf("cannot save table %s: %w", t.Code, err)
		}

		table, order, count = t, o, len(items)
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	if previous != table.Status {
		s.publishTableStatus(ctx, table, previous, "guest arrived")
	}
	s.publishOrder(ctx, event.EventOrderSubmitted, order, count)

	return SubmitResult{
		OrderID: order.ID,
		TableID: table.ID,
		Status:  order.Status,
		Message: submittedMessage,
	}, nil
}

// guestItems validates every requested menu entry and builds DRAFT lines.
// Nothing is returned unless all entries are valid.
func (s *Service) guestItems(ctx context.Context, orderID uuid.UUID, reqs []SubmitItem) ([]*Item, error) {
	ids := make([]uuid.UUID, 0, len(reqs))
	seen := make(map[uuid.UUID]bool, len(reqs))
	for _, r := range reqs {
		if !seen[r.MenuItemID] {
			seen[r.MenuItemID] = true
			ids = append(ids, r.MenuItemID)
		}
	}

	found, err := s.menu.FindAll(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("cannot look up menu items: %w", err)
	}
	byID := make(map[uuid.UUID]MenuItem, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}

	var missing, unavailable []string
	for _, id := range ids {
		m, ok := byID[id]
		switch {
		case !ok:
			missing = append(missing, id.String())
		case !m.Available:
			unavailable = append(unavailable, m.Name)
		}
	}
	if len(missing) > 0 || len(unavailable) > 0 {
		var reasons []string
		if len(missing) > 0 {
			reasons = append(reasons, "unknown menu items: "+strings.Join(missing, ", "))
		}
		if len(unavailable) > 0 {
			reasons = append(reasons, "unavailable menu items: "+strings.Join(unavailable, ", "))
		}
		return nil, rejected("cannot submit order: %s", strings.Join(reasons, "; "))
	}

	items := make([]*Item, 0, len(reqs))
	for n, r := range reqs {
		i, err := NewItem(orderID, byID[r.MenuItemID], r.Quantity, r.Note, OriginGuest)
		if err != nil {
			return nil, err
		}
		i.Position = n + 1
		items = append(items, i)
	}
	return items, nil
}
