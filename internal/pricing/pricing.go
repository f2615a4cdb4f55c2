// Package pricing derives the order price breakdown from line items and the
// store's shipping/tax policy. All arithmetic is done in integer minor
// currency units so totals never drift.
package pricing

import "freshcart/internal/domain"

// Policy captures the business rules the calculator applies.
// TaxRateBps is the tax rate in basis points (800 = 8%). Shipping is a flat
// fee, waived once the subtotal reaches FreeShippingMinCents (0 disables the
// waiver).
type Policy struct {
	ShippingFlatCents    int64
	FreeShippingMinCents int64
	TaxRateBps           int64
}

// Calculate returns the pricing breakdown for the given line items.
// The invariant TotalCents == SubtotalCents + ShippingCents + TaxCents holds
// by construction; tax is rounded half-up to the nearest cent.
func Calculate(items []domain.OrderItem, p Policy) domain.Pricing {
	var subtotal int64
	for _, item := range items {
		subtotal += item.PriceCents * int64(item.Quantity)
	}

	shipping := p.ShippingFlatCents
	if p.FreeShippingMinCents > 0 && subtotal >= p.FreeShippingMinCents {
		shipping = 0
	}

	tax := (subtotal*p.TaxRateBps + 5000) / 10000

	return domain.Pricing{
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TaxCents:      tax,
		TotalCents:    subtotal + shipping + tax,
	}
}
