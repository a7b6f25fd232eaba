package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/somniaapp/somnia-server/internal/errors"
)

type registrationInput struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidate_OK(t *testing.T) {
	v := New()

	err := v.Validate(registrationInput{
		Email:    "dreamer@example.com",
		Username: "dreamer",
		Password: "hunter22hunter22",
	})
	assert.NoError(t, err)
}

func TestValidate_FieldErrorsUseJSONNames(t *testing.T) {
	v := New()

	err := v.Validate(registrationInput{
		Email:    "not-an-email",
		Username: "ab",
		Password: "",
	})
	require.Error(t, err)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domainerrors.CodeValidation, derr.Code)

	details, ok := derr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email address", details["email"])
	assert.Equal(t, "must be at least 3 characters", details["username"])
	assert.Equal(t, "is required", details["password"])
}
