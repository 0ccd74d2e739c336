package checkout

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/phermann/shopcore/pkg/errors"
)

// Validation messages shown to the user, one at a time.
const (
	MsgNameRequired       = "Bitte geben Sie einen Namen ein"
	MsgNameLettersOnly    = "Der Name darf nur Buchstaben enthalten"
	MsgEmailRequired      = "Bitte geben Sie eine E-Mail-Adresse ein"
	MsgEmailInvalid       = "Bitte geben Sie eine gültige E-Mail-Adresse ein"
	MsgAddressRequired    = "Bitte geben Sie eine Adresse ein"
	MsgCityRequired       = "Bitte geben Sie eine Stadt ein"
	MsgZipRequired        = "Bitte geben Sie eine PLZ ein"
	MsgZipInvalid         = "Bitte geben Sie eine gültige PLZ ein (5 Ziffern)"
	MsgCardRequired       = "Bitte geben Sie eine Kartennummer ein"
	MsgCardDigitsOnly     = "Die Kartennummer darf nur Ziffern enthalten"
	MsgCardLength         = "Die Kartennummer muss 16 Ziffern enthalten"
	MsgCardHolderRequired = "Bitte geben Sie den Karteninhaber ein"
	MsgExpiryRequired     = "Bitte geben Sie das Ablaufdatum ein"
	MsgExpiryInvalid      = "Bitte geben Sie ein gültiges Ablaufdatum ein (MM/YY)"
	MsgCVVRequired        = "Bitte geben Sie die CVV-Nummer ein"
	MsgCVVDigitsOnly      = "Die CVV-Nummer darf nur Ziffern enthalten"
	MsgCVVLength          = "Die CVV-Nummer muss 3 Ziffern enthalten"
)

var (
	validate = validator.New()

	namePattern   = regexp.MustCompile(`^[A-Za-zÄäÖöÜüß\s]+$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
)

// Validate applies the checkout rules in fixed order and fails fast: the
// first failing rule yields the single reported message. Required-field
// presence is checked for every field before any format rule runs.
func Validate(form Form) error {
	presence := []struct {
		value   string
		message string
	}{
		{form.Name, MsgNameRequired},
		{form.Email, MsgEmailRequired},
		{form.Address, MsgAddressRequired},
		{form.City, MsgCityRequired},
		{form.Zip, MsgZipRequired},
		{form.CardNumber, MsgCardRequired},
		{form.CardHolder, MsgCardHolderRequired},
		{form.Expiry, MsgExpiryRequired},
		{form.CVV, MsgCVVRequired},
	}
	for _, rule := range presence {
		if rule.value == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, rule.message)
		}
	}

	if !namePattern.MatchString(form.Name) {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgNameLettersOnly)
	}

	if err := validate.Var(form.Email, "email"); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgEmailInvalid)
	}

	if !digitsPattern.MatchString(form.Zip) || len(form.Zip) != 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgZipInvalid)
	}

	cardNumber := withoutSpaces(form.CardNumber)
	if !digitsPattern.MatchString(cardNumber) {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgCardDigitsOnly)
	}
	if len(cardNumber) != 16 {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgCardLength)
	}

	if !expiryPattern.MatchString(form.Expiry) {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgExpiryInvalid)
	}

	if !digitsPattern.MatchString(form.CVV) {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgCVVDigitsOnly)
	}
	if len(form.CVV) != 3 {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgCVVLength)
	}

	return nil
}
