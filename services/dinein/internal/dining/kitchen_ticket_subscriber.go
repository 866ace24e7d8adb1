package dining

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/appetiteclub/dinein/pkg/enums/kitchenstatus"
	"github.com/appetiteclub/dinein/pkg/event"
	"github.com/google/uuid"
)

// KitchenTicketSubscriber follows kitchen ticket changes and moves the
// matching order items through their lifecycle.
type KitchenTicketSubscriber struct {
	subscriber events.Subscriber
	service    *Service
	logger     apt.Logger
}

func NewKitchenTicketSubscriber(sub events.Subscriber, service *Service, logger apt.Logger) *KitchenTicketSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &KitchenTicketSubscriber{
		subscriber: sub,
		service:    service,
		logger:     logger,
	}
}

func (s *KitchenTicketSubscriber) Start(ctx context.Context) error {
	s.log().Info("starting kitchen ticket subscriber", "topic", event.KitchenTicketsTopic)
	if s.subscriber == nil {
		return fmt.Errorf("kitchen ticket subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, event.KitchenTicketsTopic, s.handleEvent)
}

func (s *KitchenTicketSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var metadata event.KitchenTicketEventMetadata
	if err := json.Unmarshal(msg, &metadata); err != nil {
		s.log().Info("invalid kitchen ticket event", "error", err)
		return nil
	}

	switch metadata.EventType {
	case event.EventKitchenTicketStatusChange:
		return s.handleStatusChange(ctx, msg)
	case event.EventKitchenTicketCreated:
		// tickets are created from our own item events
		return nil
	default:
		s.log().Debug("unknown kitchen ticket event type", "event_type", metadata.EventType)
		return nil
	}
}

func (s *KitchenTicketSubscriber) handleStatusChange(ctx context.Context, msg []byte) error {
	var evt event.KitchenTicketStatusChangedEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.log().Info("invalid status change event", "error", err)
		return nil
	}

	if evt.OrderItemID == "" {
		s.log().Debug("status change event missing order_item_id", "ticket_id", evt.TicketID)
		return nil
	}

	itemID, err := uuid.Parse(evt.OrderItemID)
	if err != nil {
		s.log().Info("invalid order_item_id in event", "order_item_id", evt.OrderItemID)
		return nil
	}

	status := kitchenstatus.ByName(evt.NewStatus)
	if status == nil || status.ItemStatus() == "" {
		s.log().Debug("no item status for kitchen status", "status", evt.NewStatus)
		return nil
	}
	target := ItemStatus(status.ItemStatus())

	res, err := s.service.AdvanceItem(ctx, itemID, target, evt.Notes)
	switch {
	case err == nil:
		s.log().Info("order item status updated from kitchen event",
			"order_item_id", itemID.String(),
			"ticket_id", evt.TicketID,
			"result", res.Message,
		)
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrRejected):
		// the floor has moved on, e.g. the order was paid
		s.log().Info("kitchen status not applied", "order_item_id", itemID.String(), "status", target, "reason", err.Error())
		return nil
	default:
		return fmt.Errorf("apply kitchen status to item %s: %w", itemID, err)
	}
}

func (s *KitchenTicketSubscriber) log() apt.Logger {
	return s.logger.With("component", "KitchenTicketSubscriber")
}
