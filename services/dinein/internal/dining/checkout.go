package dining

import (
	"context"
	"errors"
	"fmt"

	"github.com/appetiteclub/dinein/services/dinein/internal/billing"
	"github.com/google/uuid"
)

// Bill previews the charges of an order. Canceled items are left out and no
// adjustments are applied.
func (s *Service) Bill(ctx context.Context, orderID uuid.UUID) (Bill, error) {
	o, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return Bill{}, err
	}
	items, err := s.listItems(ctx, o.ID)
	if err != nil {
		return Bill{}, err
	}

	summary, err := price(items)
	if err != nil {
		return Bill{}, err
	}

	lines := make([]BillLine, 0, summary.Billable)
	for n, i := range items {
		if !i.Billable() {
			continue
		}
		lines = append(lines, BillLine{
			ItemID:    i.ID,
			Name:      i.Name,
			UnitPrice: i.UnitPrice,
			Quantity:  i.Quantity,
			LineTotal: summary.Totals[n],
			Status:    i.Status,
		})
	}

	totals := billing.Preview(summary.Subtotal)
	return Bill{
		OrderID:     o.ID,
		TableID:     o.TableID,
		OrderStatus: o.Status,
		Items:       lines,
		Subtotal:    totals.Subtotal,
		Discount:    totals.Discount,
		Tax:         totals.Tax,
		ServiceFee:  totals.ServiceFee,
		Total:       totals.Total,
	}, nil
}

// Checkout charges an active order. The payment, the completed order and
// the table release are written together or not at all.
func (s *Service) Checkout(ctx context.Context, orderID uuid.UUID, req CheckoutRequest) (CheckoutResult, error) {
	if !req.Method.Valid() {
		return CheckoutResult{}, rejected("unknown payment method %q", req.Method)
	}

	var order *Order
	var table *Table
	var payment *Payment
	var previous TableStatus

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		o, err := s.loadOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.ensureUnpaid(ctx, o.ID); err != nil {
			return err
		}
		if err := o.RequireActive("check out"); err != nil {
			return err
		}

		items, err := s.listItems(ctx, o.ID)
		if err != nil {
			return err
		}
		summary, err := price(items)
		if err != nil {
			return err
		}
		if summary.Billable == 0 {
			return rejected("order %s has no billable items", o.ID)
		}

		totals, err := billing.Finalize(summary.Subtotal, billing.Adjustments{
			Discount:   req.Discount,
			Tax:        req.Tax,
			ServiceFee: req.ServiceFee,
		})
		if err != nil {
			return rejected("cannot check out order %s: %v", o.ID, err)
		}

		t, err := s.loadTable(ctx, o.TableID)
		if err != nil {
			return err
		}
		previous = t.Status
		if err := o.Complete(); err != nil {
			return err
		}
		released, err := t.CloseOut(o.ID)
		if err != nil {
			return err
		}

		p := NewPayment(o.ID, req.Method)
		p.Subtotal = totals.Subtotal
		p.Discount = totals.Discount
		p.Tax = totals.Tax
		p.ServiceFee = totals.ServiceFee
		p.Total = totals.Total
		p.BeforeCreate()

		// A payment racing this one is caught by the unique order index.
		if err := s.payments.Create(ctx, p); err != nil {
			if errors.Is(err, ErrDuplicateKey) {
				return alreadyPaid(o.ID)
			}
			return fmt.Errorf("cannot record payment: %w", err)
		}
		if err := s.orders.Save(ctx, o); err != nil {
			return fmt.Errorf("cannot save order %s: %w", o.ID, err)
		}
		if released {
			if err := s.tables.Save(ctx, t); err != nil {
				return fmt.Errorf("cannot save table %s: %w", t.Code, err)
			}
		}

		order, table, payment = o, t, p
		return nil
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	s.publishCompleted(ctx, order, payment)

	msg := fmt.Sprintf("payment recorded, table %s stays %s", table.Code, table.Status)
	if table.Status != previous {
		s.publishTableStatus(ctx, table, previous, "checked out")
		msg = fmt.Sprintf("payment recorded, table %s is now %s", table.Code, table.Status)
	}

	return CheckoutResult{
		PaymentID: payment.ID,
		OrderID:   order.ID,
		Total:     payment.Total,
		Message:   msg,
	}, nil
}

func (s *Service) ensureUnpaid(ctx context.Context, orderID uuid.UUID) error {
	existing, err := s.payments.GetByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("cannot look up payment of order %s: %w", orderID, err)
	}
	if existing != nil {
		return alreadyPaid(orderID)
	}
	return nil
}

func alreadyPaid(orderID uuid.UUID) error {
	return rejected("order %s is already paid", orderID)
}

// price bills every item. Canceled items are excluded, so summary totals
// line up with items and are zero for excluded lines.
func price(items []*Item) (billing.Summary, error) {
	lines := make([]billing.Line, len(items))
	for n, i := range items {
		lines[n] = billing.Line{
			UnitPrice: i.UnitPrice,
			Quantity:  i.Quantity,
			Excluded:  !i.Billable(),
		}
	}
	summary, err := billing.Compute(lines)
	if err != nil {
		return billing.Summary{}, fmt.Errorf("cannot price order: %w", err)
	}
	return summary, nil
}
