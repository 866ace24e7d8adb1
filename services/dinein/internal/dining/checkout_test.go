package dining

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/appetiteclub/dinein/pkg"
)

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestServiceBill(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, orderID := f.openTable("T01")
	canceled := f.addItem(orderID, riceID, 1)
	kept := f.addItem(orderID, phoID, 2)

	if _, err := f.service.UpdateItemStatus(ctx, orderID, canceled.ID, ItemStatusRequest{Status: ItemCanceled}); err != nil {
		t.Fatalf("UpdateItemStatus() error = %v", err)
	}

	bill, err := f.service.Bill(ctx, orderID)
	if err != nil {
		t.Fatalf("Bill() error = %v", err)
	}
	if len(bill.Items) != 1 {
		t.Fatalf("bill lines = %d, want 1 (canceled left out)", len(bill.Items))
	}
	if bill.Items[0].ItemID != kept.ID {
		t.Errorf("bill line = %s, want %s", bill.Items[0].ItemID, kept.ID)
	}
	if !bill.Items[0].LineTotal.Equal(decimal.NewFromInt(90000)) {
		t.Errorf("line total = %s, want 90000", bill.Items[0].LineTotal)
	}
	if !bill.Subtotal.Equal(decimal.NewFromInt(90000)) || !bill.Total.Equal(decimal.NewFromInt(90000)) {
		t.Errorf("bill = subtotal %s total %s, want 90000", bill.Subtotal, bill.Total)
	}
	if !bill.Discount.IsZero() || !bill.Tax.IsZero() || !bill.ServiceFee.IsZero() {
		t.Error("preview should carry no adjustments")
	}
}

func TestServiceCheckout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	table, orderID := f.openTable("T01")
	f.addItem(orderID, phoID, 2)

	if _, err := f.service.RequestBill(ctx, table.ID); err != nil {
		t.Fatalf("RequestBill() error = %v", err)
	}

	res, err := f.service.Checkout(ctx, orderID, CheckoutRequest{Method: PaymentCash, Discount: dec("5000")})
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if !res.Total.Equal(decimal.NewFromInt(85000)) {
		t.Errorf("total = %s, want 85000", res.Total)
	}
	if res.Message != "payment recorded, table T01 is now CLEANING" {
		t.Errorf("message = %q", res.Message)
	}

	order, _ := f.orders.Stored(orderID)
	if order.Status != OrderCompleted || order.CompletedAt == nil {
		t.Errorf("order = %s completed %v, want COMPLETED", order.Status, order.CompletedAt)
	}

	stored := f.tables.Stored(table.ID)
	if stored.Status != TableCleaning || stored.CurrentOrderID != nil {
		t.Errorf("table = %s ref %v, want CLEANING without order", stored.Status, stored.CurrentOrderID)
	}

	payment, _ := f.payments.GetByOrder(ctx, orderID)
	if payment == nil || payment.ID != res.PaymentID || !payment.Discount.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("payment = %+v", payment)
	}

	_, err = f.service.Checkout(ctx, orderID, CheckoutRequest{Method: PaymentCard})
	if !errors.Is(err, ErrRejected) || !strings.Contains(err.Error(), "already paid") {
		t.Errorf("second Checkout() error = %v, want already paid", err)
	}
	if f.payments.Count() != 1 {
		t.Errorf("payments = %d, want 1", f.payments.Count())
	}
}

func TestServiceCheckoutFromOccupiedTable(t *testing.T) {
	f := newFixture()
	table, orderID := f.openTable("T01")
	f.addItem(orderID, coffeeID, 1)

	if _, err := f.service.Checkout(context.Background(), orderID, CheckoutRequest{Method: PaymentTransfer}); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if stored := f.tables.Stored(table.ID); stored.Status != TableCleaning {
		t.Errorf("table status = %s, want CLEANING", stored.Status)
	}
}

func TestServiceCheckoutAfterStaffMovedTable(t *testing.T) {
	tests := []struct {
		name        string
		release     bool
		wantTable   TableStatus
		wantMessage string
	}{
		{name: "tableCleaning", wantTable: TableCleaning, wantMessage: "payment recorded, table T01 stays CLEANING"},
		{name: "tableReleased", release: true, wantTable: TableAvailable, wantMessage: "payment recorded, table T01 stays AVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			table, orderID := f.openTable("T01")
			f.addItem(orderID, phoID, 1)

			if _, err := f.service.RequestBill(ctx, table.ID); err != nil {
				t.Fatalf("RequestBill() error = %v", err)
			}
			if _, err := f.service.SetCleaning(ctx, table.ID); err != nil {
				t.Fatalf("SetCleaning() error = %v", err)
			}
			if tt.release {
				if _, err := f.service.SetAvailable(ctx, table.ID); err != nil {
					t.Fatalf("SetAvailable() error = %v", err)
				}
			}
			published := len(f.publisher.Topics())

			res, err := f.service.Checkout(ctx, orderID, CheckoutRequest{Method: PaymentCash})
			if err != nil {
				t.Fatalf("Checkout() error = %v", err)
			}
			if res.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", res.Message, tt.wantMessage)
			}
			if order, _ := f.orders.Stored(orderID); order.Status != OrderCompleted {
				t.Errorf("order status = %s, want COMPLETED", order.Status)
			}
			if f.payments.Count() != 1 {
				t.Errorf("payments = %d, want 1", f.payments.Count())
			}

			stored := f.tables.Stored(table.ID)
			if stored.Status != tt.wantTable || stored.CurrentOrderID != nil {
				t.Errorf("table = %s ref %v, want %s without order", stored.Status, stored.CurrentOrderID, tt.wantTable)
			}
			for _, topic := range f.publisher.Topics()[published:] {
				if topic == pkg.TableStatusTopic {
					t.Error("checkout published a table status change for an unchanged table")
				}
			}
		})
	}
}

func TestServiceCheckoutLeavesReseatedTable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	table, orderID := f.openTable("T01")
	f.addItem(orderID, phoID, 1)

	if _, err := f.service.RequestBill(ctx, table.ID); err != nil {
		t.Fatalf("RequestBill() error = %v", err)
	}
	if _, err := f.service.SetCleaning(ctx, table.ID); err != nil {
		t.Fatalf("SetCleaning() error = %v", err)
	}
	if _, err := f.service.SetAvailable(ctx, table.ID); err != nil {
		t.Fatalf("SetAvailable() error = %v", err)
	}
	reseated, err := f.service.OpenTable(ctx, table.ID)
	if err != nil {
		t.Fatalf("OpenTable() error = %v", err)
	}

	if _, err := f.service.Checkout(ctx, orderID, CheckoutRequest{Method: PaymentCard}); err != nil {
		t.Fatalf("Checkout() of the earlier order error = %v", err)
	}

	stored := f.tables.Stored(table.ID)
	if stored.Status != TableOccupied {
		t.Errorf("table status = %s, want OCCUPIED", stored.Status)
	}
	if stored.CurrentOrderID == nil || *stored.CurrentOrderID != *reseated.CurrentOrderID {
		t.Errorf("table order = %v, want %s", stored.CurrentOrderID, *reseated.CurrentOrderID)
	}
}

func TestServiceCheckoutRejections(t *testing.T) {
	tests := []struct {
		name   string
		items  bool
		cancel bool
		req    CheckoutRequest
		want   string
	}{
		{name: "discountAboveSubtotal", items: true, req: CheckoutRequest{Method: PaymentCash, Discount: dec("95000")}, want: "discount"},
		{name: "negativeTax", items: true, req: CheckoutRequest{Method: PaymentCash, Tax: dec("-1")}, want: "negative"},
		{name: "unknownMethod", items: true, req: CheckoutRequest{Method: PaymentMethod("CRYPTO")}, want: "payment method"},
		{name: "noItems", req: CheckoutRequest{Method: PaymentCash}, want: "no billable items"},
		{name: "onlyCanceledItems", items: true, cancel: true, req: CheckoutRequest{Method: PaymentCash}, want: "no billable items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()
			table, orderID := f.openTable("T01")
			if tt.items {
				item := f.addItem(orderID, phoID, 2)
				if tt.cancel {
					if _, err := f.service.UpdateItemStatus(ctx, orderID, item.ID, ItemStatusRequest{Status: ItemCanceled}); err != nil {
						t.Fatalf("UpdateItemStatus() error = %v", err)
					}
				}
			}

			_, err := f.service.Checkout(ctx, orderID, tt.req)
			if !errors.Is(err, ErrRejected) || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Checkout() error = %v, want rejection mentioning %q", err, tt.want)
			}

			if f.payments.Count() != 0 {
				t.Error("rejected checkout recorded a payment")
			}
			if order, _ := f.orders.Stored(orderID); order.Status != OrderActive {
				t.Errorf("order status = %s, want ACTIVE", order.Status)
			}
			if stored := f.tables.Stored(table.ID); stored.Status != TableOccupied {
				t.Errorf("table status = %s, want OCCUPIED", stored.Status)
			}
		})
	}
}

func TestServiceCheckoutUnknownOrder(t *testing.T) {
	f := newFixture()
	_, err := f.service.Checkout(context.Background(), uuid.New(), CheckoutRequest{Method: PaymentCash})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Checkout() error = %v, want not found", err)
	}
}

func TestServiceCheckoutDuplicatePaymentRace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, orderID := f.openTable("T01")
	f.addItem(orderID, phoID, 1)

	// A payment lands after our existence check but before our insert.
	other := NewPayment(orderID, PaymentCard)
	other.BeforeCreate()

	raced := false
	f.service.payments = &racingPayments{MockPaymentRepo: f.payments, before: func() {
		if !raced {
			raced = true
			_ = f.payments.Create(ctx, other)
		}
	}}

	_, err := f.service.Checkout(ctx, orderID, CheckoutRequest{Method: PaymentCash})
	if !errors.Is(err, ErrRejected) || !strings.Contains(err.Error(), "already paid") {
		t.Errorf("Checkout() error = %v, want already paid", err)
	}
}

// racingPayments runs before right ahead of every insert.
type racingPayments struct {
	*MockPaymentRepo
	before func()
}

func (r *racingPayments) Create(ctx context.Context, payment *Payment) error {
	r.before()
	return r.MockPaymentRepo.Create(ctx, payment)
}
