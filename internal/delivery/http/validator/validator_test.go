package validator

import (
	"testing"

	domainerrors "gate/internal/domain/errors"
	"gate/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegisterInput() *usecase.RegisterInput {
	return &usecase.RegisterInput{
		Name:     "Test User",
		Email:    "test@example.com",
		Phone:    "6281711112222",
		Password: "Password123!",
	}
}

func validateRegister(t *testing.T, input *usecase.RegisterInput) map[string][]string {
	t.Helper()

	err := New().Validate(input)
	require.Error(t, err)

	var validationErr *domainerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)

	return validationErr.Fields()
}

func TestValidate_AcceptsValidRegistration(t *testing.T) {
	require.NoError(t, New().Validate(validRegisterInput()))
}

func TestValidate_PhoneCarrierMatrix(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		message string
	}{
		{"xl number accepted", "6281711112222", ""},
		{"axis number accepted", "6283112223333", ""},
		{"im3 number accepted", "6285512223333", ""},
		{"unknown carrier rejected", "6288112223333", "Phone number must use XL/Axis or IM3 carrier."},
		{"missing country code rejected", "1281711112222", "Phone number must start with 62."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegisterInput()
			input.Phone = tt.phone

			err := New().Validate(input)
			if tt.message == "" {
				assert.NoError(t, err)

				return
			}

			var validationErr *domainerrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields()["phone"], tt.message)
		})
	}
}

func TestValidate_MissingCountryCodeReportsSingleRule(t *testing.T) {
	input := validRegisterInput()
	input.Phone = "1281711112222"

	fields := validateRegister(t, input)
	assert.Equal(t, []string{"Phone number must start with 62."}, fields["phone"])
}

func TestValidate_RequiredFields(t *testing.T) {
	fields := validateRegister(t, &usecase.RegisterInput{})

	assert.Contains(t, fields["name"], "The name field is required.")
	assert.Contains(t, fields["email"], "The email field is required.")
	assert.Contains(t, fields["phone"], "The phone field is required.")
	assert.Contains(t, fields["password"], "The password field is required.")
}

func TestValidate_FieldNamesComeFromJSONTags(t *testing.T) {
	err := New().Validate(&usecase.LoginInput{Identifier: "user@example.com", Password: "short"})

	var validationErr *domainerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields(), "password")
	assert.Contains(t, validationErr.Fields()["password"], "The password must be at least 8 characters.")
}

func TestValidate_EmailShape(t *testing.T) {
	input := validRegisterInput()
	input.Email = "not-an-email"

	fields := validateRegister(t, input)
	assert.Contains(t, fields["email"], "The email must be a valid email address.")
}

func TestValidate_PhoneLengthBounds(t *testing.T) {
	input := validRegisterInput()
	input.Phone = "628171111" // 9 digits, below min=11

	fields := validateRegister(t, input)
	assert.Contains(t, fields["phone"], "The phone must be at least 11 characters.")
}
