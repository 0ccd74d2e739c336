package docstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/phermann/shopcore/pkg/enums"
	"github.com/phermann/shopcore/pkg/models"
)

// Codec between domain values and the loosely-typed document maps the
// store holds. Encoding always writes the full fixed field set; decoding
// is tolerant, mapping missing or mistyped fields to zero values. A
// record is only dropped when it cannot be minimally recovered (no
// product id); batch decodes skip such records instead of failing.
//
// Writes of the cart/favorites fields always use merge semantics, so any
// sibling fields a newer client version stored are preserved.

// EncodeProduct renders a product snapshot as a document map.
func EncodeProduct(p models.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"title":       p.Title,
		"price":       p.Price.InexactFloat64(),
		"description": p.Description,
		"category":    p.Category,
		"image":       p.Image,
		"rating": map[string]any{
			"rate":  p.Rating.Rate,
			"count": p.Rating.Count,
		},
	}
}

// DecodeProduct rebuilds a product snapshot from raw document data. The
// second return value is false when the record is unrecoverable.
func DecodeProduct(raw any) (models.Product, bool) {
	data, ok := asMap(raw)
	if !ok {
		return models.Product{}, false
	}

	id, ok := asInt(data["id"])
	if !ok || id <= 0 {
		return models.Product{}, false
	}

	price, _ := asFloat(data["price"])
	product := models.Product{
		ID:          id,
		Title:       asString(data["title"]),
		Price:       decimal.NewFromFloat(price),
		Description: asString(data["description"]),
		Category:    asString(data["category"]),
		Image:       asString(data["image"]),
	}

	if rating, ok := asMap(data["rating"]); ok {
		rate, _ := asFloat(rating["rate"])
		count, _ := asInt(rating["count"])
		product.Rating = models.Rating{Rate: rate, Count: count}
	}

	return product, true
}

// EncodeCartLines renders cart lines as the array stored under the user
// document's "cart" field.
func EncodeCartLines(lines []models.CartLine) []any {
	out := make([]any, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		out = append(out, map[string]any{
			"product":  EncodeProduct(line.Product),
			"quantity": line.Quantity,
		})
	}
	return out
}

// DecodeCartLines rebuilds cart lines from a raw document field. Entries
// whose product cannot be recovered are skipped; the batch never fails as
// a whole. The second return value counts skipped records.
func DecodeCartLines(raw any) ([]models.CartLine, int) {
	entries, ok := asSlice(raw)
	if !ok {
		return nil, 0
	}

	lines := make([]models.CartLine, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		data, ok := asMap(entry)
		if !ok {
			skipped++
			continue
		}
		product, ok := DecodeProduct(data["product"])
		if !ok {
			skipped++
			continue
		}
		quantity, ok := asInt(data["quantity"])
		if !ok || quantity <= 0 {
			quantity = 1
		}
		lines = append(lines, models.CartLine{Product: product, Quantity: quantity})
	}
	return lines, skipped
}

// EncodeFavorites renders favorite product snapshots as the array stored
// under the user document's "favorites" field.
func EncodeFavorites(products []models.Product) []any {
	out := make([]any, 0, len(products))
	for _, p := range products {
		out = append(out, EncodeProduct(p))
	}
	return out
}

// DecodeFavorites rebuilds favorite products, skipping unrecoverable
// entries the same way DecodeCartLines does.
func DecodeFavorites(raw any) ([]models.Product, int) {
	entries, ok := asSlice(raw)
	if !ok {
		return nil, 0
	}

	products := make([]models.Product, 0, len(entries))
	skipped := 0
	for _, entry := range entries {
		product, ok := DecodeProduct(entry)
		if !ok {
			skipped++
			continue
		}
		products = append(products, product)
	}
	return products, skipped
}

// EncodeOrder renders an order as its subcollection document. The order
// id is the document id and is not duplicated into the field set.
func EncodeOrder(order models.Order) map[string]any {
	items := make([]any, 0, len(order.Items))
	for _, line := range order.Items {
		items = append(items, map[string]any{
			"product":  EncodeProduct(line.Product),
			"quantity": line.Quantity,
		})
	}
	return map[string]any{
		"date":   order.Date,
		"items":  items,
		"total":  order.Total.InexactFloat64(),
		"status": order.Status.String(),
		"shipping": map[string]any{
			"name":       order.Shipping.Name,
			"email":      order.Shipping.Email,
			"address":    order.Shipping.Address,
			"city":       order.Shipping.City,
			"zip":        order.Shipping.Zip,
			"cardNumber": order.Shipping.CardLast4,
			"cardHolder": order.Shipping.CardHolder,
		},
	}
}

// DecodeOrder rebuilds an order from its document data. The id comes from
// the document id. A missing status decodes to "Neu"; any other stored
// string is preserved, the status enum being extensible.
func DecodeOrder(docID string, data map[string]any) models.Order {
	total, _ := asFloat(data["total"])

	order := models.Order{
		ID:    docID,
		Total: decimal.NewFromFloat(total),
	}

	if date, ok := asTime(data["date"]); ok {
		order.Date = date
	} else {
		order.Date = time.Now().UTC()
	}

	if status := asString(data["status"]); status != "" {
		order.Status = enums.OrderStatus(status)
	} else {
		order.Status = enums.OrderStatusNew
	}

	order.Items, _ = DecodeCartLines(data["items"])

	if shipping, ok := asMap(data["shipping"]); ok {
		order.Shipping = models.ShippingDetails{
			Name:       asString(shipping["name"]),
			Email:      asString(shipping["email"]),
			Address:    asString(shipping["address"]),
			City:       asString(shipping["city"]),
			Zip:        asString(shipping["zip"]),
			CardLast4:  asString(shipping["cardNumber"]),
			CardHolder: asString(shipping["cardHolder"]),
		}
	}

	return order
}

// EncodeProfile renders the profile fields stored on the user document.
func EncodeProfile(profile models.Profile) map[string]any {
	return map[string]any{
		"fullName": profile.FullName,
		"email":    profile.Email,
	}
}

// DecodeProfile rebuilds a profile from raw user document data.
func DecodeProfile(data map[string]any) models.Profile {
	return models.Profile{
		FullName: asString(data["fullName"]),
		Email:    asString(data["email"]),
	}
}
