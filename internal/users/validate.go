package users

import (
	"regexp"

	pkgerrors "github.com/phermann/shopcore/pkg/errors"
)

// Input validation messages shown before any provider call is made.
const (
	MsgNameRequired     = "Bitte geben Sie Ihren Namen ein"
	MsgNameLettersOnly  = "Der Name darf nur Buchstaben enthalten"
	MsgEmailRequired    = "Bitte geben Sie eine E-Mail-Adresse ein"
	MsgPasswordRequired = "Bitte geben Sie ein Passwort ein"
)

var namePattern = regexp.MustCompile(`^[A-Za-zÄäÖöÜüß\s]+$`)

// ValidateLogin checks the login inputs, fail-fast with a single
// user-facing message.
func ValidateLogin(email, password string) error {
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgEmailRequired)
	}
	if password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgPasswordRequired)
	}
	return nil
}

// ValidateRegistration checks the registration inputs in fixed order:
// name presence, name pattern, email, password.
func ValidateRegistration(fullName, email, password string) error {
	if fullName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgNameRequired)
	}
	if !namePattern.MatchString(fullName) {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgNameLettersOnly)
	}
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgEmailRequired)
	}
	if password == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, MsgPasswordRequired)
	}
	return nil
}
