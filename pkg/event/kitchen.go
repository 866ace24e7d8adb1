package event

import "time"

const (
	KitchenTicketsTopic            = "kitchen.tickets"
	EventKitchenTicketCreated      = "kitchen.ticket.created"
	EventKitchenTicketStatusChange = "kitchen.ticket.status_changed"
)

type KitchenTicketEventMetadata struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	TicketID    string    `json:"ticket_id"`
	OrderID     string    `json:"order_id"`
	OrderItemID string    `json:"order_item_id,omitempty"`
	MenuItemID  string    `json:"menu_item_id,omitempty"`
}

// KitchenTicketStatusChangedEvent is published by the kitchen when a cook
// moves a ticket. NewStatus uses the kitchenstatus vocabulary.
type KitchenTicketStatusChangedEvent struct {
	KitchenTicketEventMetadata
	NewStatus      string `json:"new_status"`
	PreviousStatus string `json:"previous_status"`
	Notes          string `json:"notes,omitempty"`
}
