package event

import "time"

const (
	OrderItemsTopic       = "orders.items"
	EventOrderItemCreated = "order.item.created"
	EventOrderItemUpdated = "order.item.updated"
	EventOrderItemRemoved = "order.item.removed"
	EventOrderItemStatus  = "order.item.status_changed"

	OrderLifecycleTopic = "orders.lifecycle"
	EventOrderOpened    = "order.opened"
	EventOrderSubmitted = "order.submitted"
	EventOrderConfirmed = "order.confirmed"
	EventOrderCompleted = "order.completed"
)

// OrderItemEvent represents an order line event published to NATS.
// Kitchens consume it to create and update tickets.
type OrderItemEvent struct {
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	OrderID        string    `json:"order_id"`
	OrderItemID    string    `json:"order_item_id"`
	MenuItemID     string    `json:"menu_item_id"`
	Quantity       int       `json:"quantity"`
	Notes          string    `json:"notes,omitempty"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	CancelReason   string    `json:"cancel_reason,omitempty"`

	// Denormalized data for kitchen display
	MenuItemName string `json:"menu_item_name,omitempty"`
	TableID      string `json:"table_id,omitempty"`
}

// OrderLifecycleEvent reports order level transitions. Completion events
// carry the payment summary.
type OrderLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	OrderID    string    `json:"order_id"`
	TableID    string    `json:"table_id"`
	Status     string    `json:"status"`
	ItemCount  int       `json:"item_count,omitempty"`
	PaymentID  string    `json:"payment_id,omitempty"`
	Method     string    `json:"method,omitempty"`
	Total      string    `json:"total,omitempty"`
}
