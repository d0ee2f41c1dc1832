package order

import (
	"time"
)

// Order represents a commerce order normalized for aggregation. All monetary
// fields are integer cents; the commerce DAL owns the conversion from whatever
// unit the API endpoint used.
type Order struct {
	ID            string        `json:"id"`
	CustomerID    string        `json:"customerId"`
	CustomerEmail string        `json:"customerEmail"`
	Items         []Item        `json:"items"`
	TotalCents    int64         `json:"totalCents"`
	ShippingCents int64         `json:"shippingCents"`
	TaxCents      int64         `json:"taxCents"`
	DiscountCents int64         `json:"discountCents"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	RefundCents   int64         `json:"refundCents"`
	Refunded      bool          `json:"refunded"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Item represents a line item within an order.
type Item struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// IsRevenue reports whether the order counts toward revenue. The decision
// depends only on Status, PaymentStatus, and the refunded flag:
//   - included when Status is an active fulfillment status or PaymentStatus
//     indicates a settled payment,
//   - always excluded when Status is terminal (cancelled/failed/refunded),
//   - excluded when flagged refunded with a positive refund amount.
func (o *Order) IsRevenue() bool {
	if o.Status.Terminal() {
		return false
	}
	if o.Refunded && o.RefundCents > 0 {
		return false
	}

	return o.Status.Active() || o.PaymentStatus.Settled()
}

// AmountCents returns the order's total in cents. The order's own total is
// authoritative when present and positive; otherwise the total is derived from
// line items plus shipping and tax minus discount, clamped at zero.
func (o *Order) AmountCents() int64 {
	if o.TotalCents > 0 {
		return o.TotalCents
	}

	var items int64
	for _, it := range o.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		items += it.UnitPriceCents * qty
	}

	total := items + o.ShippingCents + o.TaxCents - o.DiscountCents
	if total < 0 {
		return 0
	}

	return total
}

// Units returns the total line-item quantity of the order.
func (o *Order) Units() int64 {
	var units int64
	for _, it := range o.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		units += qty
	}

	return units
}

// CreatedWithin reports whether the order was created in [from, until]. Orders
// without a creation timestamp never fall inside a bounded range.
func (o *Order) CreatedWithin(from, until time.Time) bool {
	if o.CreatedAt.IsZero() {
		return false
	}

	return !o.CreatedAt.Before(from) && !o.CreatedAt.After(until)
}
