package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/phermann/shopcore/pkg/enums"
)

// Order is a durable record of a completed checkout. Items and Total are
// frozen at submission time; only Status may change afterwards.
type Order struct {
	ID       string
	Items    []CartLine
	Date     time.Time
	Total    decimal.Decimal
	Status   enums.OrderStatus
	Shipping ShippingDetails
}

// ShippingDetails holds the delivery and payment contact data persisted
// with an order. CardLast4 is the only part of the card number that
// survives checkout; the full number and CVV never leave the form.
type ShippingDetails struct {
	Name       string
	Email      string
	Address    string
	City       string
	Zip        string
	CardLast4  string
	CardHolder string
}
