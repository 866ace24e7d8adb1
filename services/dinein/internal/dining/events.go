package dining

import (
	"context"
	"encoding/json"
	"time"

	"github.com/appetiteclub/dinein/pkg"
	"github.com/appetiteclub/dinein/pkg/event"
)

func (s *Service) publish(ctx context.Context, topic string, evt interface{}) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error("cannot marshal event", "topic", topic, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		s.logger.Error("cannot publish event", "topic", topic, "error", err)
	}
}

func (s *Service) publishTableStatus(ctx context.Context, t *Table, previous TableStatus, reason string) {
	evt := pkg.TableStatusEvent{
		EventType:      pkg.EventTableStatusChanged,
		TableID:        t.ID.String(),
		TableCode:      t.Code,
		Status:         string(t.Status),
		PreviousStatus: string(previous),
		Reason:         reason,
		Source:         "dinein",
		OccurredAt:     time.Now().UTC(),
	}
	if t.CurrentOrderID != nil {
		evt.CurrentOrderID = t.CurrentOrderID.String()
	}
	s.publish(ctx, pkg.TableStatusTopic, evt)
}

func (s *Service) publishOrder(ctx context.Context, eventType string, o *Order, itemCount int) {
	s.publish(ctx, event.OrderLifecycleTopic, event.OrderLifecycleEvent{
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		OrderID:    o.ID.String(),
		TableID:    o.TableID.String(),
		Status:     string(o.Status),
		ItemCount:  itemCount,
	})
}

func (s *Service) publishCompleted(ctx context.Context, o *Order, p *Payment) {
	s.publish(ctx, event.OrderLifecycleTopic, event.OrderLifecycleEvent{
		EventType:  event.EventOrderCompleted,
		OccurredAt: time.Now().UTC(),
		OrderID:    o.ID.String(),
		TableID:    o.TableID.String(),
		Status:     string(o.Status),
		PaymentID:  p.ID.String(),
		Method:     string(p.Method),
		Total:      p.Total.StringFixed(2),
	})
}

func (s *Service) publishItem(ctx context.Context, eventType string, o *Order, i *Item, previous ItemStatus) {
	s.publish(ctx, event.OrderItemsTopic, event.OrderItemEvent{
		EventType:      eventType,
		OccurredAt:     time.Now().UTC(),
		OrderID:        o.ID.String(),
		OrderItemID:    i.ID.String(),
		MenuItemID:     i.MenuItemID.String(),
		Quantity:       i.Quantity,
		Notes:          i.Note,
		Status:         string(i.Status),
		PreviousStatus: string(previous),
		CancelReason:   i.CancelReason,
		MenuItemName:   i.Name,
		TableID:        o.TableID.String(),
	})
}
