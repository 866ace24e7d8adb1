package dining

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TableSummary struct {
	ID             uuid.UUID   `json:"id"`
	Code           string      `json:"code"`
	Capacity       int         `json:"capacity"`
	Status         TableStatus `json:"status"`
	CurrentOrderID *uuid.UUID  `json:"current_order_id"`
}

func (t TableSummary) GetID() uuid.UUID {
	return t.ID
}

func (t TableSummary) ResourceType() string {
	return "table"
}

func summarizeTable(t *Table) TableSummary {
	return TableSummary{
		ID:             t.ID,
		Code:           t.Code,
		Capacity:       t.Capacity,
		Status:         t.Status,
		CurrentOrderID: t.CurrentOrderID,
	}
}

// PublicTableInfo is what a guest holding the table link may see.
type PublicTableInfo struct {
	TableID uuid.UUID   `json:"table_id"`
	Code    string      `json:"code"`
	Status  TableStatus `json:"status"`
}

type OrderLine struct {
	ItemID       uuid.UUID       `json:"item_id"`
	MenuItemID   uuid.UUID       `json:"menu_item_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	Note         string          `json:"note"`
	Status       ItemStatus      `json:"status"`
	CancelReason string          `json:"cancel_reason,omitempty"`
}

type OrderDetail struct {
	OrderID uuid.UUID   `json:"order_id"`
	TableID uuid.UUID   `json:"table_id"`
	Status  OrderStatus `json:"status"`
	Note    string      `json:"note"`
	Items   []OrderLine `json:"items"`
}

func (d OrderDetail) GetID() uuid.UUID {
	return d.OrderID
}

func (d OrderDetail) ResourceType() string {
	return "order"
}

func detailOf(o *Order, items []*Item) OrderDetail {
	lines := make([]OrderLine, 0, len(items))
	for _, i := range items {
		lines = append(lines, OrderLine{
			ItemID:       i.ID,
			MenuItemID:   i.MenuItemID,
			Name:         i.Name,
			UnitPrice:    i.UnitPrice,
			Quantity:     i.Quantity,
			Note:         i.Note,
			Status:       i.Status,
			CancelReason: i.CancelReason,
		})
	}
	return OrderDetail{
		OrderID: o.ID,
		TableID: o.TableID,
		Status:  o.Status,
		Note:    o.Note,
		Items:   lines,
	}
}

type BillLine struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	Status    ItemStatus      `json:"status"`
}

type Bill struct {
	OrderID     uuid.UUID       `json:"order_id"`
	TableID     uuid.UUID       `json:"table_id"`
	OrderStatus OrderStatus     `json:"order_status"`
	Items       []BillLine      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Tax         decimal.Decimal `json:"tax"`
	ServiceFee  decimal.Decimal `json:"service_fee"`
	Total       decimal.Decimal `json:"total"`
}

type CheckoutRequest struct {
	Method     PaymentMethod    `json:"method"`
	Discount   *decimal.Decimal `json:"discount"`
	Tax        *decimal.Decimal `json:"tax"`
	ServiceFee *decimal.Decimal `json:"service_fee"`
}

type CheckoutResult struct {
	PaymentID uuid.UUID       `json:"payment_id"`
	OrderID   uuid.UUID       `json:"order_id"`
	Total     decimal.Decimal `json:"total"`
	Message   string          `json:"message"`
}

type AddItemRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	Note       string    `json:"note"`
}

type UpdateItemRequest struct {
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

type ItemStatusRequest struct {
	Status       ItemStatus `json:"status"`
	CancelReason string     `json:"cancel_reason"`
}

type SubmitItem struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	Note       string    `json:"note"`
}

type SubmitRequest struct {
	CustomerNote string       `json:"customer_note"`
	Items        []SubmitItem `json:"items"`
}

type SubmitResult struct {
	OrderID uuid.UUID   `json:"order_id"`
	TableID uuid.UUID   `json:"table_id"`
	Status  OrderStatus `json:"status"`
	Message string      `json:"message"`
}

// ActionResult acknowledges commands that have no richer projection.
type ActionResult struct {
	Message string `json:"message"`
}
