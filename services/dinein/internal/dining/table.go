package dining

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

type Table struct {
	ID             uuid.UUID   `json:"id" bson:"_id"`
	Code           string      `json:"code" bson:"code"`
	Capacity       int         `json:"capacity" bson:"capacity"`
	Status         TableStatus `json:"status" bson:"status"`
	AccessToken    string      `json:"-" bson:"access_token"`
	CurrentOrderID *uuid.UUID  `json:"current_order_id" bson:"current_order_id"`
	Version        int64       `json:"version" bson:"version"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" bson:"updated_at"`
}

func NewTable(code string, capacity int) *Table {
	return &Table{
		ID:          apt.GenerateNewID(),
		Code:        code,
		Capacity:    capacity,
		Status:      TableAvailable,
		AccessToken: NewAccessToken(),
	}
}

// NewAccessToken returns an opaque token for guest ordering links.
func NewAccessToken() string {
	return uuid.NewString()
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func (t *Table) SetID(id uuid.UUID) {
	t.ID = id
}

func (t *Table) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = apt.GenerateNewID()
	}
}

func (t *Table) BeforeCreate() {
	t.EnsureID()
	if t.AccessToken == "" {
		t.AccessToken = NewAccessToken()
	}
	if t.Status == "" {
		t.Status = TableAvailable
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
}

func (t *Table) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}

// AcceptsOrders reports whether guests may order at the table right now.
func (t *Table) AcceptsOrders() bool {
	return t.Status == TableAvailable || t.Status == TableOccupied
}

func (t *Table) require(action string, status TableStatus) error {
	if t.Status != status {
		return rejected("cannot %s table %s: status must be %s, is %s", action, t.Code, status, t.Status)
	}
	return nil
}

func (t *Table) moveTo(to TableStatus) error {
	if err := checkTableTransition(t, to); err != nil {
		return err
	}
	t.Status = to
	t.BeforeUpdate()
	return nil
}

func (t *Table) Occupy() error {
	if err := t.require("open", TableAvailable); err != nil {
		return err
	}
	return t.moveTo(TableOccupied)
}

func (t *Table) RequestBill() error {
	if err := t.require("request the bill for", TableOccupied); err != nil {
		return err
	}
	if t.CurrentOrderID == nil {
		return rejected("cannot request the bill for table %s: it has no current order", t.Code)
	}
	return t.moveTo(TableRequestingBill)
}

func (t *Table) SetCleaning() error {
	if err := t.require("clean", TableRequestingBill); err != nil {
		return err
	}
	return t.moveTo(TableCleaning)
}

func (t *Table) SetAvailable() error {
	if err := t.require("release", TableCleaning); err != nil {
		return err
	}
	if err := t.moveTo(TableAvailable); err != nil {
		return err
	}
	t.CurrentOrderID = nil
	return nil
}

// CloseOut releases the table from a paid order. A table still seated for
// that order goes to cleaning. A table staff already cleaned or released,
// or one serving another order, keeps its status. It reports whether the
// table changed.
func (t *Table) CloseOut(orderID uuid.UUID) (bool, error) {
	if t.CurrentOrderID != nil && *t.CurrentOrderID != orderID {
		return false, nil
	}

	switch t.Status {
	case TableAvailable:
		return false, nil
	case TableCleaning:
		if t.CurrentOrderID == nil {
			return false, nil
		}
		t.CurrentOrderID = nil
		t.BeforeUpdate()
		return true, nil
	}

	if err := t.moveTo(TableCleaning); err != nil {
		return false, err
	}
	t.CurrentOrderID = nil
	return true, nil
}

func (t *Table) Bind(orderID uuid.UUID) {
	id := orderID
	t.CurrentOrderID = &id
	t.BeforeUpdate()
}
