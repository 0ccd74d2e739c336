package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/phermann/shopcore/pkg/errors"
)

func assertValidationMessage(t *testing.T, err error, expected string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeValidation))
	assert.Equal(t, expected, pkgerrors.As(err).Message())
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, ValidateLogin("max@example.com", "secret"))
	assertValidationMessage(t, ValidateLogin("", "secret"), MsgEmailRequired)
	assertValidationMessage(t, ValidateLogin("max@example.com", ""), MsgPasswordRequired)
}

func TestValidateRegistration(t *testing.T) {
	assert.NoError(t, ValidateRegistration("Jörg Müßig", "joerg@example.com", "secret"))
	assertValidationMessage(t, ValidateRegistration("", "max@example.com", "secret"), MsgNameRequired)
	assertValidationMessage(t, ValidateRegistration("Max123", "max@example.com", "secret"), MsgNameLettersOnly)
	assertValidationMessage(t, ValidateRegistration("Max Mustermann", "", "secret"), MsgEmailRequired)
	assertValidationMessage(t, ValidateRegistration("Max Mustermann", "max@example.com", ""), MsgPasswordRequired)
}
