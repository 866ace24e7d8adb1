package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/appetiteclub/dinein/services/dinein/internal/dining"
)

type tableModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Code           string     `gorm:"not null"`
	Capacity       int        `gorm:"not null"`
	Status         string     `gorm:"not null"`
	AccessToken    string     `gorm:"uniqueIndex;not null"`
	CurrentOrderID *uuid.UUID `gorm:"type:uuid"`
	Version        int64      `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (tableModel) TableName() string { return "tables" }

func toTableModel(t *dining.Table) tableModel {
	return tableModel{
		ID:             t.ID,
		Code:           t.Code,
		Capacity:       t.Capacity,
		Status:         string(t.Status),
		AccessToken:    t.AccessToken,
		CurrentOrderID: t.CurrentOrderID,
		Version:        t.Version,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func (m tableModel) toDomain() *dining.Table {
	return &dining.Table{
		ID:             m.ID,
		Code:           m.Code,
		Capacity:       m.Capacity,
		Status:         dining.TableStatus(m.Status),
		AccessToken:    m.AccessToken,
		CurrentOrderID: m.CurrentOrderID,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type orderModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	TableID     uuid.UUID `gorm:"type:uuid;index:idx_orders_table_status;not null"`
	Status      string    `gorm:"index:idx_orders_table_status;not null"`
	Note        string    `gorm:"type:text"`
	Version     int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time
	ConfirmedAt *time.Time
	CompletedAt *time.Time
	CanceledAt  *time.Time
	UpdatedAt   time.Time
}

func (orderModel) TableName() string { return "orders" }

func toOrderModel(o *dining.Order) orderModel {
	return orderModel{
		ID:          o.ID,
		TableID:     o.TableID,
		Status:      string(o.Status),
		Note:        o.Note,
		Version:     o.Version,
		CreatedAt:   o.CreatedAt,
		ConfirmedAt: o.ConfirmedAt,
		CompletedAt: o.CompletedAt,
		CanceledAt:  o.CanceledAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (m orderModel) toDomain() *dining.Order {
	return &dining.Order{
		ID:          m.ID,
		TableID:     m.TableID,
		Status:      dining.OrderStatus(m.Status),
		Note:        m.Note,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		ConfirmedAt: m.ConfirmedAt,
		CompletedAt: m.CompletedAt,
		CanceledAt:  m.CanceledAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type itemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	MenuItemID   uuid.UUID       `gorm:"type:uuid;not null"`
	Name         string          `gorm:"not null"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	Quantity     int             `gorm:"not null"`
	Note         string          `gorm:"type:text"`
	Status       string          `gorm:"not null"`
	Position     int             `gorm:"column:position;not null"`
	CancelReason string
	SentAt       *time.Time
	CookingAt    *time.Time
	ReadyAt      *time.Time
	ServedAt     *time.Time
	CanceledAt   *time.Time
	Version      int64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (itemModel) TableName() string { return "order_items" }

func toItemModel(i *dining.Item) itemModel {
	return itemModel{
		ID:           i.ID,
		OrderID:      i.OrderID,
		MenuItemID:   i.MenuItemID,
		Name:         i.Name,
		UnitPrice:    i.UnitPrice,
		Quantity:     i.Quantity,
		Note:         i.Note,
		Status:       string(i.Status),
		Position:     i.Position,
		CancelReason: i.CancelReason,
		SentAt:       i.SentAt,
		CookingAt:    i.CookingAt,
		ReadyAt:      i.ReadyAt,
		ServedAt:     i.ServedAt,
		CanceledAt:   i.CanceledAt,
		Version:      i.Version,
		CreatedAt:    i.CreatedAt,
		UpdatedAt:    i.UpdatedAt,
	}
}

func (m itemModel) toDomain() *dining.Item {
	return &dining.Item{
		ID:           m.ID,
		OrderID:      m.OrderID,
		MenuItemID:   m.MenuItemID,
		Name:         m.Name,
		UnitPrice:    m.UnitPrice,
		Quantity:     m.Quantity,
		Note:         m.Note,
		Status:       dining.ItemStatus(m.Status),
		Position:     m.Position,
		CancelReason: m.CancelReason,
		SentAt:       m.SentAt,
		CookingAt:    m.CookingAt,
		ReadyAt:      m.ReadyAt,
		ServedAt:     m.ServedAt,
		CanceledAt:   m.CanceledAt,
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

type paymentModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	Subtotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Discount   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Tax        decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ServiceFee decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Method     string          `gorm:"not null"`
	PaidAt     time.Time       `gorm:"not null"`
	CreatedAt  time.Time
}

func (paymentModel) TableName() string { return "payments" }

func toPaymentModel(p *dining.Payment) paymentModel {
	return paymentModel{
		ID:         p.ID,
		OrderID:    p.OrderID,
		Subtotal:   p.Subtotal,
		Discount:   p.Discount,
		Tax:        p.Tax,
		ServiceFee: p.ServiceFee,
		Total:      p.Total,
		Method:     string(p.Method),
		PaidAt:     p.PaidAt,
		CreatedAt:  p.CreatedAt,
	}
}

func (m paymentModel) toDomain() *dining.Payment {
	return &dining.Payment{
		ID:         m.ID,
		OrderID:    m.OrderID,
		Subtotal:   m.Subtotal,
		Discount:   m.Discount,
		Tax:        m.Tax,
		ServiceFee: m.ServiceFee,
		Total:      m.Total,
		Method:     dining.PaymentMethod(m.Method),
		PaidAt:     m.PaidAt,
		CreatedAt:  m.CreatedAt,
	}
}

type menuModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CategoryID *uuid.UUID      `gorm:"type:uuid"`
	Name       string          `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:numeric(14,4);not null"`
	Available  bool            `gorm:"index;default:false"`
	ImageURL   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (menuModel) TableName() string { return "menu_items" }

func (m menuModel) toDomain() dining.MenuItem {
	return dining.MenuItem{
		ID:         m.ID,
		CategoryID: m.CategoryID,
		Name:       m.Name,
		Price:      m.Price,
		Available:  m.Available,
		ImageURL:   m.ImageURL,
	}
}
