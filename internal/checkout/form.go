package checkout

import (
	"strings"

	"github.com/phermann/shopcore/pkg/models"
)

// Form holds the raw delivery and payment fields as typed by the user.
// The full card number and CVV live only here; they are validated,
// reduced to the card's last 4 digits and then discarded. They are never
// written into an order or handed to persistence.
type Form struct {
	Name    string
	Email   string
	Address string
	City    string
	Zip     string

	CardNumber string
	CardHolder string
	Expiry     string
	CVV        string
}

// Reset clears every field.
func (f *Form) Reset() {
	*f = Form{}
}

// ShippingDetails maps the form into the persistable shipping record,
// truncating the card number to its last 4 digits.
func (f Form) ShippingDetails() models.ShippingDetails {
	cleaned := withoutSpaces(f.CardNumber)
	last4 := cleaned
	if len(cleaned) > 4 {
		last4 = cleaned[len(cleaned)-4:]
	}
	return models.ShippingDetails{
		Name:       f.Name,
		Email:      f.Email,
		Address:    f.Address,
		City:       f.City,
		Zip:        f.Zip,
		CardLast4:  last4,
		CardHolder: f.CardHolder,
	}
}

func withoutSpaces(value string) string {
	return strings.ReplaceAll(value, " ", "")
}
