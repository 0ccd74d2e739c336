package models

import "github.com/shopspring/decimal"

// CartLine is one product/quantity pair inside a cart. Quantity is always
// at least 1; a line decremented to 0 is removed instead of kept.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price times quantity for this line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// ItemCount sums the quantities across all lines.
func ItemCount(lines []CartLine) int {
	count := 0
	for _, line := range lines {
		count += line.Quantity
	}
	return count
}

// Total sums price times quantity across all lines. It is always derived
// at read time, never stored.
func Total(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// CloneLines returns a value copy of the given lines, used to freeze cart
// contents into an order.
func CloneLines(lines []CartLine) []CartLine {
	if len(lines) == 0 {
		return nil
	}
	snapshot := make([]CartLine, len(lines))
	copy(snapshot, lines)
	return snapshot
}
