// Package pricing turns resolved cart lines and an optional coupon into
// the totals an order is created with. It is pure: no storage access, no
// clock, deterministic for a given input.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/nikhildhimann/zenmarket-ecommerce/models"
)

var ErrUnknownDiscountType = errors.New("unknown discount type")

// LineItem is a cart line resolved against the catalog: the unit price
// read at calculation time plus the requested quantity.
type LineItem struct {
	Price    decimal.Decimal
	Quantity int
}

type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	GrandTotal     decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// Calculate computes subtotal, discount and grand total. A fixed coupon is
// capped at the subtotal and the grand total is clamped at zero, so the
// caller can never end up charging a negative amount.
func Calculate(items []LineItem, coupon *models.Coupon) (Totals, error) {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	discount := decimal.Zero
	if coupon != nil {
		switch coupon.DiscountType {
		case models.DiscountPercentage:
			discount = subtotal.Mul(coupon.DiscountAmount).Div(oneHundred)
		case models.DiscountFixed:
			discount = coupon.DiscountAmount
			if discount.GreaterThan(subtotal) {
				discount = subtotal
			}
		default:
			return Totals{}, ErrUnknownDiscountType
		}
	}

	grandTotal := subtotal.Sub(discount)
	if grandTotal.IsNegative() {
		grandTotal = decimal.Zero
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		GrandTotal:     grandTotal,
	}, nil
}
