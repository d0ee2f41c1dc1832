package commerce

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/avelora/admin-metrics/internal/service/models/order"
	"github.com/avelora/admin-metrics/internal/service/models/product"
	"github.com/avelora/admin-metrics/internal/service/models/review"
	"github.com/avelora/admin-metrics/pkg/ref"
)

// flexNumber decodes a numeric field that the API may return as a JSON
// number, a numeric string, or garbage. Anything unparseable decodes to 0;
// a malformed amount must never sink the whole row.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	*n = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = flexNumber(f)
		}

		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = flexNumber(f)
	}

	return nil
}

// flexTime decodes an RFC3339 timestamp, tolerating the plain-date form and
// decoding anything else to the zero time.
type flexTime struct {
	time.Time
}

func (t *flexTime) UnmarshalJSON(b []byte) error {
	t.Time = time.Time{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}

	return nil
}

// customerDal is the embedded form of an order's userId reference.
type customerDal struct {
	Id    string `json:"_id"`
	AltId string `json:"id"`
	Email string `json:"email"`
}

func (c customerDal) RefID() string {
	if c.Id != "" {
		return c.Id
	}

	return c.AltId
}

// productStubDal is the embedded form of a line item's productId reference.
type productStubDal struct {
	Id    string     `json:"_id"`
	AltId string     `json:"id"`
	Name  string     `json:"name"`
	Title string     `json:"title"`
	Price flexNumber `json:"price"`
}

func (p productStubDal) RefID() string {
	if p.Id != "" {
		return p.Id
	}

	return p.AltId
}

func (p productStubDal) label() string {
	if p.Name != "" {
		return p.Name
	}

	return p.Title
}

// orderItemDal represents an order line item on the wire.
type orderItemDal struct {
	Product   ref.Ref[productStubDal] `json:"productId"`
	Quantity  flexNumber              `json:"quantity"`
	Qty       flexNumber              `json:"qty"`
	Price     flexNumber              `json:"price"`
	UnitPrice flexNumber              `json:"unitPrice"`
}

// ToModel converts orderItemDal to the service layer order item. Unit price
// falls back price -> unitPrice -> embedded product price, all in dollars.
func (i *orderItemDal) ToModel() order.Item {
	unit := i.Price
	if unit == 0 {
		unit = i.UnitPrice
	}
	var name string
	if p, ok := i.Product.Value(); ok {
		name = p.label()
		if unit == 0 {
			unit = p.Price
		}
	}

	qty := int64(i.Quantity)
	if qty == 0 {
		qty = int64(i.Qty)
	}

	return order.Item{
		ProductID:      i.Product.ID(),
		ProductName:    name,
		Quantity:       qty,
		UnitPriceCents: dollarsToCents(float64(unit)),
	}
}

// orderDal represents an order on the wire.
type orderDal struct {
	Id              string               `json:"_id"`
	AltId           string               `json:"id"`
	User            ref.Ref[customerDal] `json:"userId"`
	Products        []orderItemDal       `json:"products"`
	Items           []orderItemDal       `json:"items"`
	TotalAmount     *flexNumber          `json:"totalAmount"`
	GrandTotalCents *flexNumber          `json:"grandTotalCents"`
	AmountCents     *flexNumber          `json:"amountCents"`
	Status          string               `json:"status"`
	PaymentStatus   string               `json:"paymentStatus"`
	RefundAmount    flexNumber           `json:"refundAmount"`
	Refunded        bool                 `json:"refunded"`
	ShippingFee     flexNumber           `json:"shippingFee"`
	Shipping        flexNumber           `json:"shipping"`
	ShippingAmount  flexNumber           `json:"shippingAmount"`
	Tax             flexNumber           `json:"tax"`
	TaxAmount       flexNumber           `json:"taxAmount"`
	Discount        flexNumber           `json:"discount"`
	DiscountAmount  flexNumber           `json:"discountAmount"`
	CreatedAt       flexTime             `json:"createdAt"`
}

// ToModel converts orderDal to the service layer Order model, normalizing
// every amount to cents. amountsInCents declares the unit of totalAmount and
// refundAmount on this deployment of the commerce API; line items, shipping,
// tax, and discount are always decimal dollars on the wire.
func (o *orderDal) ToModel(amountsInCents bool) order.Order {
	id := o.Id
	if id == "" {
		id = o.AltId
	}

	items := o.Products
	if len(items) == 0 {
		items = o.Items
	}
	modelItems := make([]order.Item, 0, len(items))
	for i := range items {
		modelItems = append(modelItems, items[i].ToModel())
	}

	var total int64
	if o.TotalAmount != nil {
		total = toCents(float64(*o.TotalAmount), amountsInCents)
	} else if o.GrandTotalCents != nil {
		total = int64(math.Round(float64(*o.GrandTotalCents)))
	} else if o.AmountCents != nil {
		total = int64(math.Round(float64(*o.AmountCents)))
	}

	var email string
	if c, ok := o.User.Value(); ok {
		email = c.Email
	}

	return order.Order{
		ID:            id,
		CustomerID:    o.User.ID(),
		CustomerEmail: email,
		Items:         modelItems,
		TotalCents:    total,
		ShippingCents: dollarsToCents(float64(firstNonZero(o.ShippingFee, o.Shipping, o.ShippingAmount))),
		TaxCents:      dollarsToCents(float64(firstNonZero(o.Tax, o.TaxAmount))),
		DiscountCents: dollarsToCents(float64(firstNonZero(o.Discount, o.DiscountAmount))),
		Status:        order.NormalizeStatus(o.Status),
		PaymentStatus: order.NormalizePaymentStatus(o.PaymentStatus),
		RefundCents:   toCents(float64(o.RefundAmount), amountsInCents),
		Refunded:      o.Refunded,
		CreatedAt:     o.CreatedAt.Time,
	}
}

// productDal represents a catalog product on the wire. Price is decimal
// dollars on every known deployment.
type productDal struct {
	Id    string     `json:"_id"`
	AltId string     `json:"id"`
	Name  string     `json:"name"`
	Title string     `json:"title"`
	Price flexNumber `json:"price"`
	Stock flexNumber `json:"stock"`
}

// ToModel converts productDal to the service layer Product model. Negative
// stock clamps to zero.
func (p *productDal) ToModel() product.Product {
	id := p.Id
	if id == "" {
		id = p.AltId
	}
	name := p.Name
	if name == "" {
		name = p.Title
	}
	stock := int(p.Stock)
	if stock < 0 {
		stock = 0
	}

	return product.Product{
		ID:         id,
		Name:       name,
		PriceCents: dollarsToCents(float64(p.Price)),
		Stock:      stock,
	}
}

// reviewDal represents a review on the wire.
type reviewDal struct {
	Id       string     `json:"_id"`
	AltId    string     `json:"id"`
	Approved bool       `json:"approved"`
	Rating   flexNumber `json:"rating"`
}

// ToModel converts reviewDal to the service layer Review model.
func (r *reviewDal) ToModel() review.Review {
	id := r.Id
	if id == "" {
		id = r.AltId
	}

	return review.Review{
		ID:       id,
		Approved: r.Approved,
		Rating:   int(r.Rating),
	}
}

func firstNonZero(ns ...flexNumber) flexNumber {
	for _, n := range ns {
		if n != 0 {
			return n
		}
	}

	return 0
}

func dollarsToCents(d float64) int64 {
	return int64(math.Round(d * 100))
}

func toCents(v float64, alreadyCents bool) int64 {
	if alreadyCents {
		return int64(math.Round(v))
	}

	return dollarsToCents(v)
}
