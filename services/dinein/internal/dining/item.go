package dining

import (
	"strings"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultCancelReason = "no reason provided"

// Origin tells who put an item on an order.
type Origin int

const (
	// OriginStaff items go straight to the kitchen.
	OriginStaff Origin = iota
	// OriginGuest items wait in DRAFT for staff.
	OriginGuest
)

// Item is an order line. Name and UnitPrice are a snapshot of the menu at
// the time the line was created and never change afterwards.
type Item struct {
	ID           uuid.UUID       `json:"id"`
	OrderID      uuid.UUID       `json:"order_id"`
	MenuItemID   uuid.UUID       `json:"menu_item_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	Note         string          `json:"note"`
	Status       ItemStatus      `json:"status"`
	Position     int             `json:"position"`
	CancelReason string          `json:"cancel_reason,omitempty"`
	SentAt       *time.Time      `json:"sent_at,omitempty"`
	CookingAt    *time.Time      `json:"cooking_at,omitempty"`
	ReadyAt      *time.Time      `json:"ready_at,omitempty"`
	ServedAt     *time.Time      `json:"served_at,omitempty"`
	CanceledAt   *time.Time      `json:"canceled_at,omitempty"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewItem snapshots menu onto a new line of orderID.
func NewItem(orderID uuid.UUID, menu MenuItem, qty int, note string, origin Origin) (*Item, error) {
	if !menu.Available {
		return nil, rejected("menu item %s (%s) is not available", menu.Name, menu.ID)
	}
	if qty < 1 {
		return nil, rejected("quantity must be at least 1, got %d", qty)
	}

	item := &Item{
		ID:         apt.GenerateNewID(),
		OrderID:    orderID,
		MenuItemID: menu.ID,
		Name:       menu.Name,
		UnitPrice:  menu.Price,
		Quantity:   qty,
		Note:       note,
		Status:     ItemDraft,
	}
	item.BeforeCreate()

	if origin == OriginStaff {
		item.Status = ItemPending
		sent := item.CreatedAt
		item.SentAt = &sent
	}
	return item, nil
}

func (i *Item) GetID() uuid.UUID {
	return i.ID
}

func (i *Item) ResourceType() string {
	return "order-item"
}

func (i *Item) SetID(id uuid.UUID) {
	i.ID = id
}

func (i *Item) EnsureID() {
	if i.ID == uuid.Nil {
		i.ID = apt.GenerateNewID()
	}
}

func (i *Item) BeforeCreate() {
	i.EnsureID()
	i.CreatedAt = time.Now()
	i.UpdatedAt = i.CreatedAt
}

func (i *Item) BeforeUpdate() {
	i.UpdatedAt = time.Now()
}

// TransitionStatus moves the item to status. It reports false without error
// when the item already is in status.
func (i *Item) TransitionStatus(to ItemStatus, reason string) (bool, error) {
	if i.Status == to {
		return false, nil
	}
	if err := checkItemTransition(i.Status, to); err != nil {
		return false, err
	}

	now := time.Now()
	switch to {
	case ItemPending:
		i.SentAt = &now
	case ItemCooking:
		i.CookingAt = &now
	case ItemReady:
		i.ReadyAt = &now
	case ItemServed:
		i.ServedAt = &now
	case ItemCanceled:
		i.CanceledAt = &now
		if r := strings.TrimSpace(reason); r != "" {
			i.CancelReason = r
		} else if i.CancelReason == "" {
			i.CancelReason = DefaultCancelReason
		}
	}

	i.Status = to
	i.UpdatedAt = now
	return true, nil
}

func (i *Item) Edit(qty int, note string) error {
	switch i.Status {
	case ItemReady, ItemServed, ItemCanceled:
		return rejected("cannot edit item %s while it is %s", i.ID, i.Status)
	}
	if qty < 1 {
		return rejected("quantity must be at least 1, got %d", qty)
	}
	i.Quantity = qty
	i.Note = note
	i.BeforeUpdate()
	return nil
}

func (i *Item) CheckRemovable() error {
	switch i.Status {
	case ItemReady, ItemServed:
		return rejected("cannot remove item %s while it is %s", i.ID, i.Status)
	}
	return nil
}

func (i *Item) Billable() bool {
	return i.Status != ItemCanceled
}
