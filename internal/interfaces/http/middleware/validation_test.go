package middleware

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutProbe struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=CASH CARD INSURANCE MOBILE"`
	Quantity      int64  `json:"quantity" validate:"gt=0"`
	Email         string `json:"email" validate:"omitempty,email"`
}

func TestFormatValidationErrors(t *testing.T) {
	t.Run("field errors map to per-field details", func(t *testing.T) {
		v := validator.New(validator.WithRequiredStructEnabled())
		err := v.Struct(checkoutProbe{PaymentMethod: "BARTER", Quantity: 0, Email: "not-an-email"})
		require.Error(t, err)

		details := FormatValidationErrors(err)
		require.Len(t, details, 3)

		messages := map[string]string{}
		for _, d := range details {
			messages[d.Field] = d.Message
		}
		assert.Equal(t, "Must be one of: CASH CARD INSURANCE MOBILE", messages["PaymentMethod"])
		assert.Equal(t, "Must be greater than 0", messages["Quantity"])
		assert.Equal(t, "Invalid email format", messages["Email"])
	})

	t.Run("non-validator errors produce no details", func(t *testing.T) {
		assert.Nil(t, FormatValidationErrors(assert.AnError))
	})
}
