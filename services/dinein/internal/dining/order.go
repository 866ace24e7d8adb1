package dining

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

type Order struct {
	ID          uuid.UUID   `json:"id" bson:"_id"`
	TableID     uuid.UUID   `json:"table_id" bson:"table_id"`
	Status      OrderStatus `json:"status" bson:"status"`
	Note        string      `json:"note" bson:"note"`
	Version     int64       `json:"version" bson:"version"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	ConfirmedAt *time.Time  `json:"confirmed_at,omitempty" bson:"confirmed_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty" bson:"completed_at"`
	CanceledAt  *time.Time  `json:"canceled_at,omitempty" bson:"canceled_at"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at"`
}

// NewOrder returns a draft order for tableID.
func NewOrder(tableID uuid.UUID) *Order {
	return &Order{
		ID:      apt.GenerateNewID(),
		TableID: tableID,
		Status:  OrderDraft,
	}
}

// NewActiveOrder returns an order opened by staff, already confirmed.
func NewActiveOrder(tableID uuid.UUID) *Order {
	o := NewOrder(tableID)
	o.Status = OrderActive
	now := time.Now()
	o.ConfirmedAt = &now
	return o
}

func (o *Order) GetID() uuid.UUID {
	return o.ID
}

func (o *Order) ResourceType() string {
	return "order"
}

func (o *Order) SetID(id uuid.UUID) {
	o.ID = id
}

func (o *Order) EnsureID() {
	if o.ID == uuid.Nil {
		o.ID = apt.GenerateNewID()
	}
}

func (o *Order) BeforeCreate() {
	o.EnsureID()
	if o.Status == "" {
		o.Status = OrderDraft
	}
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
}

func (o *Order) BeforeUpdate() {
	o.UpdatedAt = time.Now()
}

func (o *Order) require(action string, status OrderStatus) error {
	if o.Status != status {
		return rejected("cannot %s: order %s must be %s, is %s", action, o.ID, status, o.Status)
	}
	return nil
}

// Confirm moves a draft with at least one item to ACTIVE.
func (o *Order) Confirm(itemCount int) error {
	if err := o.require("confirm order", OrderDraft); err != nil {
		return err
	}
	if itemCount == 0 {
		return rejected("cannot confirm order %s: it has no items", o.ID)
	}
	if err := checkOrderTransition(o, OrderActive); err != nil {
		return err
	}
	now := time.Now()
	o.Status = OrderActive
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	return nil
}

func (o *Order) Complete() error {
	if err := o.require("check out", OrderActive); err != nil {
		return err
	}
	if err := checkOrderTransition(o, OrderCompleted); err != nil {
		return err
	}
	now := time.Now()
	o.Status = OrderCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	return nil
}

// Cancel closes an open order without payment. No flow calls it yet.
func (o *Order) Cancel() error {
	if err := checkOrderTransition(o, OrderCanceled); err != nil {
		return err
	}
	now := time.Now()
	o.Status = OrderCanceled
	o.CanceledAt = &now
	o.UpdatedAt = now
	return nil
}

// RequireActive guards item mutations.
func (o *Order) RequireActive(action string) error {
	return o.require(action, OrderActive)
}
