// Package pricing derives cart totals. Amounts are exact decimals; the three
// presented values are rounded half away from zero to two places, each from
// unrounded intermediates.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/mock_cart/internal/domain"
)

const Places = 2

var DefaultTaxRate = decimal.RequireFromString("0.08")

type Snapshot struct {
	Items    []domain.LineItem
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

func Empty() Snapshot {
	return Snapshot{
		Items:    []domain.LineItem{},
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
	}
}

func Compute(items []domain.LineItem, taxRate decimal.Decimal) Snapshot {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	tax := subtotal.Mul(taxRate)
	total := subtotal.Add(tax)

	return Snapshot{
		Items:    domain.CloneItems(items),
		Subtotal: subtotal.Round(Places),
		Tax:      tax.Round(Places),
		Total:    total.Round(Places),
	}
}

func ParseRate(s string) (decimal.Decimal, error) {
	r, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("tax rate %q: %w", s, err)
	}
	if r.IsNegative() {
		return decimal.Zero, fmt.Errorf("tax rate %q must not be negative", s)
	}
	return r, nil
}
