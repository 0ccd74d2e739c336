package users

import (
	"strings"

	pkgerrors "github.com/phermann/shopcore/pkg/errors"
)

// User-facing auth messages.
const (
	MsgWrongPassword = "Falsches Passwort"
	MsgUserNotFound  = "Kein Benutzer mit dieser E-Mail-Adresse gefunden"
	MsgInvalidEmail  = "Ungültige E-Mail-Adresse"
	MsgEmailInUse    = "Diese E-Mail-Adresse wird bereits verwendet"
	MsgMissingFields = "Bitte alle Felder ausfüllen"
	MsgGenericError  = "Ein Fehler ist aufgetreten. Bitte versuchen Sie es später erneut"
)

// LocalizeAuthError maps a credential-provider failure onto one of the
// user-facing messages. It pattern-matches both the Identity Toolkit
// error codes and the SDK-style phrasings. Unmatched auth errors fall
// back to the wrong-password message, since that is the common case for
// an opaque credential rejection; everything else gets the generic one.
func LocalizeAuthError(err error) string {
	if err == nil {
		return ""
	}

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAuth {
		return MsgGenericError
	}

	message := strings.ToLower(typed.Message())
	switch {
	case strings.Contains(message, "invalid_password"),
		strings.Contains(message, "invalid_login_credentials"),
		strings.Contains(message, "wrong password"),
		strings.Contains(message, "the password is invalid"):
		return MsgWrongPassword
	case strings.Contains(message, "email_not_found"),
		strings.Contains(message, "no user record"):
		return MsgUserNotFound
	case strings.Contains(message, "invalid_email"),
		strings.Contains(message, "badly formatted"):
		return MsgInvalidEmail
	case strings.Contains(message, "email_exists"),
		strings.Contains(message, "already in use"):
		return MsgEmailInUse
	case strings.Contains(message, "missing"):
		return MsgMissingFields
	default:
		return MsgWrongPassword
	}
}
