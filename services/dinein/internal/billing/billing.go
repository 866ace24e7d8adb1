// Package billing derives money amounts for a dine-in order: line totals,
// subtotal and the adjusted grand total charged at checkout.
//
// All amounts are rounded half-up to two decimals.
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const Scale = 2

var (
	ErrNegativeAmount          = errors.New("amount cannot be negative")
	ErrDiscountExceedsSubtotal = errors.New("discount exceeds subtotal")
	ErrInvalidQuantity         = errors.New("quantity must be at least 1")
)

// Line is a billable order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	Excluded  bool
}

// Summary is the priced result for a set of lines. Totals holds one entry
// per input line in the same order; excluded lines get a zero total.
type Summary struct {
	Totals   []decimal.Decimal
	Subtotal decimal.Decimal
	Billable int
}

// Adjustments are the optional amounts applied at checkout. Nil means zero.
type Adjustments struct {
	Discount   *decimal.Decimal
	Tax        *decimal.Decimal
	ServiceFee *decimal.Decimal
}

type Totals struct {
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	ServiceFee decimal.Decimal
	Total      decimal.Decimal
}

// Round rounds half-up to the billing scale. Amounts here are never negative
// so half away from zero is half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

func LineTotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return Round(unitPrice.Mul(decimal.NewFromInt(int64(qty))))
}

// Compute prices every non-excluded line and sums the subtotal.
func Compute(lines []Line) (Summary, error) {
	summary := Summary{
		Totals:   make([]decimal.Decimal, len(lines)),
		Subtotal: decimal.Zero,
	}

	for i, l := range lines {
		if l.Excluded {
			summary.Totals[i] = decimal.Zero
			continue
		}
		if l.Quantity < 1 {
			return Summary{}, fmt.Errorf("line %d: %w", i, ErrInvalidQuantity)
		}
		if l.UnitPrice.IsNegative() {
			return Summary{}, fmt.Errorf("line %d unit price: %w", i, ErrNegativeAmount)
		}
		total := LineTotal(l.UnitPrice, l.Quantity)
		summary.Totals[i] = total
		summary.Subtotal = summary.Subtotal.Add(total)
		summary.Billable++
	}

	summary.Subtotal = Round(summary.Subtotal)
	return summary, nil
}

// Preview returns the display-only totals, no adjustments applied.
func Preview(subtotal decimal.Decimal) Totals {
	subtotal = Round(subtotal)
	return Totals{
		Subtotal:   subtotal,
		Discount:   decimal.Zero,
		Tax:        decimal.Zero,
		ServiceFee: decimal.Zero,
		Total:      subtotal,
	}
}

// Finalize applies checkout adjustments to subtotal.
// total = max(0, subtotal - discount + tax + serviceFee).
func Finalize(subtotal decimal.Decimal, adj Adjustments) (Totals, error) {
	subtotal = Round(subtotal)

	discount, err := amount("discount", adj.Discount)
	if err != nil {
		return Totals{}, err
	}
	tax, err := amount("tax", adj.Tax)
	if err != nil {
		return Totals{}, err
	}
	fee, err := amount("service fee", adj.ServiceFee)
	if err != nil {
		return Totals{}, err
	}

	if discount.GreaterThan(subtotal) {
		return Totals{}, fmt.Errorf("%w: discount %s, subtotal %s",
			ErrDiscountExceedsSubtotal, discount.StringFixed(Scale), subtotal.StringFixed(Scale))
	}

	total := Round(subtotal.Sub(discount).Add(tax).Add(fee))
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Totals{
		Subtotal:   subtotal,
		Discount:   discount,
		Tax:        tax,
		ServiceFee: fee,
		Total:      total,
	}, nil
}

func amount(name string, v *decimal.Decimal) (decimal.Decimal, error) {
	if v == nil {
		return decimal.Zero, nil
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s %s: %w", name, v.String(), ErrNegativeAmount)
	}
	return Round(*v), nil
}
