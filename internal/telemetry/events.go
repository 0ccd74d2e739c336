package telemetry

import (
	"github.com/shopspring/decimal"

	"github.com/phermann/shopcore/pkg/models"
)

// Event names emitted by the engines. The vocabulary follows the GA4
// e-commerce event set so downstream consumers need no mapping layer.
const (
	EventAddToCart     = "add_to_cart"
	EventAddToWishlist = "add_to_wishlist"
	EventSearch        = "search"
	EventScreenView    = "screen_view"
	EventPurchase      = "purchase"
)

// Parameter keys.
const (
	ParamItemID        = "item_id"
	ParamItemName      = "item_name"
	ParamQuantity      = "quantity"
	ParamPrice         = "price"
	ParamSearchTerm    = "search_term"
	ParamScreenName    = "screen_name"
	ParamTransactionID = "transaction_id"
	ParamValue         = "value"
	ParamCurrency      = "currency"
	ParamItems         = "items"
)

// DefaultCurrency is applied to purchase events; the engine is
// single-currency by design.
const DefaultCurrency = "USD"

// Event is a named fire-and-forget telemetry record.
type Event struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

// AddToCart reports a product added to the cart at its new quantity.
func AddToCart(product models.Product, quantity int) Event {
	return Event{
		Name: EventAddToCart,
		Params: map[string]any{
			ParamItemID:   product.ID,
			ParamItemName: product.Title,
			ParamQuantity: quantity,
			ParamPrice:    product.Price.InexactFloat64(),
		},
	}
}

// AddToWishlist reports a product added to the favorites list.
func AddToWishlist(product models.Product) Event {
	return Event{
		Name: EventAddToWishlist,
		Params: map[string]any{
			ParamItemID:   product.ID,
			ParamItemName: product.Title,
			ParamPrice:    product.Price.InexactFloat64(),
		},
	}
}

// Search reports a catalog search.
func Search(term string) Event {
	return Event{
		Name:   EventSearch,
		Params: map[string]any{ParamSearchTerm: term},
	}
}

// ScreenView reports a screen being shown.
func ScreenView(screen string) Event {
	return Event{
		Name:   EventScreenView,
		Params: map[string]any{ParamScreenName: screen},
	}
}

// Purchase reports a completed order with a per-item breakdown.
func Purchase(orderID string, items []models.CartLine, total decimal.Decimal, currency string) Event {
	if currency == "" {
		currency = DefaultCurrency
	}
	breakdown := make([]map[string]any, 0, len(items))
	for _, line := range items {
		breakdown = append(breakdown, map[string]any{
			ParamItemID:   line.Product.ID,
			ParamItemName: line.Product.Title,
			ParamQuantity: line.Quantity,
			ParamPrice:    line.Product.Price.InexactFloat64(),
		})
	}
	return Event{
		Name: EventPurchase,
		Params: map[string]any{
			ParamTransactionID: orderID,
			ParamValue:         total.InexactFloat64(),
			ParamCurrency:      currency,
			ParamItems:         breakdown,
		},
	}
}
