package product

// Product represents a catalog product. Price is integer cents, normalized by
// the commerce DAL from the API's decimal-dollar representation.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Stock      int    `json:"stock"`
}

// OutOfStock reports whether the product has no stock left.
func (p *Product) OutOfStock() bool {
	return p.Stock == 0
}

// LowStock reports whether the product is in stock but at or below the given
// threshold.
func (p *Product) LowStock(threshold int) bool {
	return p.Stock > 0 && p.Stock <= threshold
}
