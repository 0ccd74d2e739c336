package models

import "github.com/shopspring/decimal"

// Product is a catalog item. Instances held inside cart lines, favorites
// and orders are value snapshots taken when the item was added; a later
// catalog change never alters them.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Rating      Rating          `json:"rating"`
}

// Rating aggregates review data for a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Same reports product identity. Products are compared by catalog id, not
// by snapshot contents.
func (p Product) Same(other Product) bool {
	return p.ID == other.ID
}
