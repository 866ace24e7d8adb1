package dining

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// Payment is written once per order, at checkout.
type Payment struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    uuid.UUID       `json:"order_id"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Discount   decimal.Decimal `json:"discount"`
	Tax        decimal.Decimal `json:"tax"`
	ServiceFee decimal.Decimal `json:"service_fee"`
	Total      decimal.Decimal `json:"total"`
	Method     PaymentMethod   `json:"method"`
	PaidAt     time.Time       `json:"paid_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

func NewPayment(orderID uuid.UUID, method PaymentMethod) *Payment {
	return &Payment{
		ID:      apt.GenerateNewID(),
		OrderID: orderID,
		Method:  method,
	}
}

func (p *Payment) GetID() uuid.UUID {
	return p.ID
}

func (p *Payment) ResourceType() string {
	return "payment"
}

func (p *Payment) BeforeCreate() {
	if p.ID == uuid.Nil {
		p.ID = apt.GenerateNewID()
	}
	p.CreatedAt = time.Now()
	if p.PaidAt.IsZero() {
		p.PaidAt = p.CreatedAt
	}
}
