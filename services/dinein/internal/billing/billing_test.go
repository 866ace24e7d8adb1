package billing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		lines        []Line
		wantSubtotal string
		wantBillable int
		wantErr      error
	}{
		{
			name: "excludesCanceledLine",
			lines: []Line{
				{UnitPrice: dec("45000"), Quantity: 2},
				{UnitPrice: dec("30000"), Quantity: 1, Excluded: true},
			},
			wantSubtotal: "90000.00",
			wantBillable: 1,
		},
		{
			name: "roundsLineTotalsHalfUp",
			lines: []Line{
				{UnitPrice: dec("0.125"), Quantity: 1},
				{UnitPrice: dec("1.333"), Quantity: 3},
			},
			wantSubtotal: "4.13",
			wantBillable: 2,
		},
		{
			name:         "emptyOrder",
			lines:        nil,
			wantSubtotal: "0.00",
			wantBillable: 0,
		},
		{
			name:    "zeroQuantity",
			lines:   []Line{{UnitPrice: dec("10"), Quantity: 0}},
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "negativePrice",
			lines:   []Line{{UnitPrice: dec("-1"), Quantity: 1}},
			wantErr: ErrNegativeAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.lines)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Compute() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compute() unexpected error: %v", err)
			}
			if got.Subtotal.StringFixed(Scale) != tt.wantSubtotal {
				t.Errorf("Subtotal = %s, want %s", got.Subtotal.StringFixed(Scale), tt.wantSubtotal)
			}
			if got.Billable != tt.wantBillable {
				t.Errorf("Billable = %d, want %d", got.Billable, tt.wantBillable)
			}
			if len(got.Totals) != len(tt.lines) {
				t.Errorf("len(Totals) = %d, want %d", len(got.Totals), len(tt.lines))
			}
		})
	}
}

func TestComputeExcludedLineTotalIsZero(t *testing.T) {
	got, err := Compute([]Line{
		{UnitPrice: dec("45000"), Quantity: 2},
		{UnitPrice: dec("30000"), Quantity: 1, Excluded: true},
	})
	if err != nil {
		t.Fatalf("Compute() unexpected error: %v", err)
	}
	if !got.Totals[0].Equal(dec("90000")) {
		t.Errorf("Totals[0] = %s, want 90000", got.Totals[0])
	}
	if !got.Totals[1].IsZero() {
		t.Errorf("Totals[1] = %s, want 0", got.Totals[1])
	}
}

func TestPreview(t *testing.T) {
	got := Preview(dec("90000"))
	if !got.Discount.IsZero() || !got.Tax.IsZero() || !got.ServiceFee.IsZero() {
		t.Errorf("Preview() adjustments should be zero, got %+v", got)
	}
	if got.Total.StringFixed(Scale) != "90000.00" {
		t.Errorf("Preview() Total = %s, want 90000.00", got.Total.StringFixed(Scale))
	}
}

func TestFinalize(t *testing.T) {
	tests := []struct {
		name      string
		subtotal  string
		adj       Adjustments
		wantTotal string
		wantErr   error
	}{
		{
			name:      "discountAndServiceFee",
			subtotal:  "90000.00",
			adj:       Adjustments{Discount: decPtr("10000"), Tax: decPtr("0"), ServiceFee: decPtr("5000")},
			wantTotal: "85000.00",
		},
		{
			name:      "nilAdjustmentsDefaultToZero",
			subtotal:  "90000.00",
			adj:       Adjustments{},
			wantTotal: "90000.00",
		},
		{
			name:      "fullDiscount",
			subtotal:  "100.00",
			adj:       Adjustments{Discount: decPtr("100")},
			wantTotal: "0.00",
		},
		{
			name:      "adjustmentsAreRounded",
			subtotal:  "10.00",
			adj:       Adjustments{Tax: decPtr("1.005"), ServiceFee: decPtr("0.994")},
			wantTotal: "12.00",
		},
		{
			name:     "discountExceedsSubtotal",
			subtotal: "90000.00",
			adj:      Adjustments{Discount: decPtr("95000")},
			wantErr:  ErrDiscountExceedsSubtotal,
		},
		{
			name:     "negativeTax",
			subtotal: "90000.00",
			adj:      Adjustments{Tax: decPtr("-1")},
			wantErr:  ErrNegativeAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Finalize(dec(tt.subtotal), tt.adj)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Finalize() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Finalize() unexpected error: %v", err)
			}
			if got.Total.StringFixed(Scale) != tt.wantTotal {
				t.Errorf("Total = %s, want %s", got.Total.StringFixed(Scale), tt.wantTotal)
			}
		})
	}
}
