package orders

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *CreateInput {
	return &CreateInput{
		Customer: &Customer{
			FirstName: "Nour", LastName: "Bhs",
			Email: "nour@example.com", Phone: "+216 20 000 000",
		},
		ShippingAddress: &ShippingAddress{
			Address: "12 Rue X", City: "Tunis", ZipCode: "1000", Country: "Tunisia",
		},
		Items: []Item{
			{ProductID: "p1", Title: "ESP32 DevKit", Price: decimal.NewFromInt(32), Quantity: 1},
			{ProductID: "p2", Title: "STM32 Nucleo", Price: decimal.NewFromInt(600), Quantity: 1},
		},
		Subtotal:        decimal.NewFromInt(632),
		ShippingFee:     decimal.NewFromInt(8),
		Total:           decimal.NewFromInt(640),
		PaymentMethod:   MethodDelivery,
		ShippingCountry: "Tunisia",
	}
}

func TestCreateInputValidate(t *testing.T) {
	require.NoError(t, validInput().Validate())

	in := validInput()
	in.Customer = nil
	in.Items = nil
	in.ShippingCountry = ""
	err := in.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"customer", "items", "shippingCountry"}, verr.Missing)
}

func TestCreateInputValidateRejectsUnknownMethod(t *testing.T) {
	in := validInput()
	in.PaymentMethod = "cheque"
	require.Error(t, in.Validate())
}

func TestCreateInputDefaults(t *testing.T) {
	in := validInput()
	in.defaults("EUR")
	assert.Equal(t, StatusPending, in.Status)
	assert.Equal(t, PaymentPending, in.PaymentStatus)
	assert.Equal(t, "EUR", in.Currency)

	online := validInput()
	online.PaymentMethod = MethodOnline
	online.defaults("EUR")
	assert.Equal(t, PaymentPaid, online.PaymentStatus)

	// workflow-supplied fields are preserved
	confirmed := validInput()
	confirmed.Status = StatusConfirmed
	confirmed.PaymentStatus = PaymentPaid
	confirmed.defaults("EUR")
	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.Equal(t, PaymentPaid, confirmed.PaymentStatus)
}

func TestValidStatus(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidPaymentStatus("refunded"))
	assert.True(t, ValidPaymentMethod(MethodOnline))
}
