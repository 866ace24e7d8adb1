package dining

import (
	"context"
	"fmt"

	"github.com/appetiteclub/dinein/pkg/event"
	"github.com/google/uuid"
)

func (s *Service) GetOrderDetail(ctx context.Context, orderID uuid.UUID) (OrderDetail, error) {
	o, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return OrderDetail{}, err
	}
	items, err := s.listItems(ctx, o.ID)
	if err != nil {
		return OrderDetail{}, err
	}
	return detailOf(o, items), nil
}

// GetDraftByTable returns the table's current order, which must be a draft.
func (s *Service) GetDraftByTable(ctx context.Context, tableID uuid.UUID) (OrderDetail, error) {
	t, err := s.loadTable(ctx, tableID)
	if err != nil {
		return OrderDetail{}, err
	}
	o, err := s.currentOrder(ctx, t)
	if err != nil {
		return OrderDetail{}, err
	}
	if o == nil {
		return OrderDetail{}, notFound("table %s has no draft order", t.Code)
	}
	if o.Status != OrderDraft {
		return OrderDetail{}, rejected("current order of table %s is not %s (it is %s)", t.Code, OrderDraft, o.Status)
	}
	items, err := s.listItems(ctx, o.ID)
	if err != nil {
		return OrderDetail{}, err
	}
	return detailOf(o, items), nil
}

// ConfirmOrder makes a guest draft ACTIVE. Item statuses are left as they are.
func (s *Service) ConfirmOrder(ctx context.Context, orderID uuid.UUID) (ActionResult, error) {
	var order *Order
	var count int

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.loadOrder(ctx, orderID)
		if err != nil {
			return err
		}
		items, err := s.listItems(ctx, o.ID)
		if err != nil {
			return err
		}
		if err := o.Confirm(len(items)); err != nil {
			return err
		}
		if err := s.orders.Save(ctx, o); err != nil {
			return fmt.Errorf("cannot save order %s: %w", o.ID, err)
		}
		order, count = o, len(items)
		return nil
	})
	if err != nil {
		return ActionResult{}, err
	}

	s.publishOrder(ctx, event.EventOrderConfirmed, order, count)
	return ActionResult{Message: fmt.Sprintf("order confirmed, now %s", order.Status)}, nil
}

// AddItem puts a staff ordered line on an active order. It goes to the
// kitchen immediately.
func (s *Service) AddItem(ctx context.Context, orderID uuid.UUID, req AddItemRequest) (*Item, error) {
	var order *Order
	var item *Item

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.loadOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.RequireActive("add items"); err != nil {
			return err
		}

		menu, err := s.menu.Find(ctx, req.MenuItemID)
		if err != nil {
			return fmt.Errorf("cannot look up menu item %s: %w", req.MenuItemID, err)
		}
		if menu == nil || !menu.Available {
			return rejected("menu item %s does not exist or is unavailable", req.MenuItemID)
		}

		existing, err := s.listItems(ctx, o.ID)
		if err != nil {
			return err
		}

		i, err := NewItem(o.ID, *menu, req.Quantity, req.Note, OriginStaff)
		if err != nil {
			return err
		}
		i.Position = nextPosition(existing)

		if err := s.items.Create(ctx, i); err != nil {
			return fmt.Errorf("cannot create item: %w", err)
		}
		o.BeforeUpdate()
		if err := s.orders.Save(ctx, o); err != nil {
			return fmt.Errorf("cannot save order %s: %w", o.ID, err)
		}
		order, item = o, i
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishItem(ctx, event.EventOrderItemCreated, order, item, "")
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, orderID, itemID uuid.UUID, req UpdateItemRequest) (*Item, error) {
	var order *Order
	var item *Item

	err := s.withActiveOrderItem(ctx, orderID, itemID, "edit items", func(ctx context.Context, o *Order, i *Item) error {
		if err := i.Edit(req.Quantity, req.Note); err != nil {
			return err
		}
		if err := s.items.Save(ctx, i); err != nil {
			return fmt.Errorf("cannot save item %s: %w", i.ID, err)
		}
		order, item = o, i
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishItem(ctx, event.EventOrderItemUpdated, order, item, item.Status)
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (ActionResult, error) {
	var order *Order
	var item *Item

	err := s.withActiveOrderItem(ctx, orderID, itemID, "remove items", func(ctx context.Context, o *Order, i *Item) error {
		if err := i.CheckRemovable(); err != nil {
			return err
		}
		if err := s.items.Delete(ctx, i.ID); err != nil {
			return fmt.Errorf("cannot delete item %s: %w", i.ID, err)
		}
		order, item = o, i
		return nil
	})
	if err != nil {
		return ActionResult{}, err
	}

	s.publishItem(ctx, event.EventOrderItemRemoved, order, item, item.Status)
	return ActionResult{Message: fmt.Sprintf("item %s removed from order", item.Name)}, nil
}

// UpdateItemStatus moves an item of an active order along the kitchen
// pipeline.
func (s *Service) UpdateItemStatus(ctx context.Context, orderID, itemID uuid.UUID, req ItemStatusRequest) (ActionResult, error) {
	var order *Order
	var item *Item
	var from ItemStatus
	var changed bool

	err := s.withActiveOrderItem(ctx, orderID, itemID, "change item status", func(ctx context.Context, o *Order, i *Item) error {
		from = i.Status
		ok, err := i.TransitionStatus(req.Status, req.CancelReason)
		if err != nil {
			return err
		}
		if ok {
			if err := s.items.Save(ctx, i); err != nil {
				return fmt.Errorf("cannot save item %s: %w", i.ID, err)
			}
		}
		order, item, changed = o, i, ok
		return nil
	})
	if err != nil {
		return ActionResult{}, err
	}

	if changed {
		s.publishItem(ctx, event.EventOrderItemStatus, order, item, from)
	}
	return ActionResult{Message: fmt.Sprintf("item status changed from %s to %s", from, item.Status)}, nil
}

// AdvanceItem is UpdateItemStatus addressed by item id only.
func (s *Service) AdvanceItem(ctx context.Context, itemID uuid.UUID, to ItemStatus, reason string) (ActionResult, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return ActionResult{}, fmt.Errorf("cannot load item %s: %w", itemID, err)
	}
	if item == nil {
		return ActionResult{}, notFound("item %s not found", itemID)
	}
	return s.UpdateItemStatus(ctx, item.OrderID, itemID, ItemStatusRequest{Status: to, CancelReason: reason})
}

// withActiveOrderItem loads the order and one of its items, requires the
// order to be ACTIVE, runs fn and saves the order so that concurrent order
// level changes conflict.
func (s *Service) withActiveOrderItem(ctx context.Context, orderID, itemID uuid.UUID, action string, fn func(context.Context, *Order, *Item) error) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.loadOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.RequireActive(action); err != nil {
			return err
		}
		i, err := s.loadOrderItem(ctx, o, itemID)
		if err != nil {
			return err
		}
		if err := fn(ctx, o, i); err != nil {
			return err
		}
		o.BeforeUpdate()
		if err := s.orders.Save(ctx, o); err != nil {
			return fmt.Errorf("cannot save order %s: %w", o.ID, err)
		}
		return nil
	})
}
