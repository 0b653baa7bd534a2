package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovibet/cashier/internal/core/domain"
)

func bankTransfer() domain.PaymentMethod {
	return domain.PaymentMethod{
		ID:             "bank_transfer",
		Name:           "Bank Transfer",
		Category:       domain.CategoryBank,
		RequiredFields: []string{"iban", "account_holder"},
		MinAmount:      decimal.NewFromInt(50),
		MaxAmount:      decimal.NewFromInt(100000),
		IsActive:       true,
	}
}

func openLimits() *domain.AccountLimits {
	return &domain.AccountLimits{
		MinAmount:    decimal.NewFromInt(10),
		MaxAmount:    decimal.NewFromInt(50000),
		DailyLimit:   decimal.NewFromInt(10000),
		MonthlyLimit: decimal.NewFromInt(100000),
	}
}

func validFields() map[string]string {
	return map[string]string{
		"iban":           "DE89370400440532013000",
		"account_holder": "Jo Player",
	}
}

func TestValidateAcceptsAmountWithinBounds(t *testing.T) {
	res := Validate(Input{
		Method:    bankTransfer(),
		Kind:      domain.KindDeposit,
		RawAmount: "500",
		Fields:    validFields(),
		Limits:    openLimits(),
	})
	require.True(t, res.Valid, "unexpected verdict: %s", res.Message)
	assert.True(t, res.LimitsVerified)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(500)))
}

func TestValidateAmountRules(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		reason Reason
	}{
		{"missing", "", ReasonAmountInvalid},
		{"garbage", "12,5a", ReasonAmountInvalid},
		{"zero", "0", ReasonAmountInvalid},
		{"negative", "-5", ReasonAmountInvalid},
		{"below method minimum", "30", ReasonBelowMethodMinimum},
		{"just below minimum", "49.99", ReasonBelowMethodMinimum},
		{"above method maximum", "600000", ReasonAboveMethodMaximum},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(Input{
				Method:    bankTransfer(),
				Kind:      domain.KindDeposit,
				RawAmount: tt.amount,
				Fields:    validFields(),
				Limits:    openLimits(),
			})
			require.False(t, res.Valid)
			assert.Equal(t, tt.reason, res.Reason)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestValidateBoundaryAmountsAccepted(t *testing.T) {
	for _, amount := range []string{"50", "50.00", "10000"} {
		res := Validate(Input{
			Method:    bankTransfer(),
			Kind:      domain.KindDeposit,
			RawAmount: amount,
			Fields:    validFields(),
			Limits:    openLimits(),
		})
		assert.True(t, res.Valid, "amount %s should pass: %s", amount, res.Message)
	}
}

func TestValidateAccountCeiling(t *testing.T) {
	limits := openLimits()
	limits.MaxAmount = decimal.NewFromInt(300)
	limits.DailyLimit = decimal.NewFromInt(100000)

	res := Validate(Input{
		Method:    bankTransfer(),
		Kind:      domain.KindDeposit,
		RawAmount: "400",
		Fields:    validFields(),
		Limits:    limits,
	})
	require.False(t, res.Valid)
	assert.Equal(t, ReasonAboveAccountMaximum, res.Reason)
}

func TestValidateDailyHeadroom(t *testing.T) {
	limits := openLimits()
	limits.DailyUsed = decimal.NewFromInt(9800)

	// 9800 of 10000 used: anything over 200 fails regardless of method bounds.
	res := Validate(Input{
		Method:    bankTransfer(),
		Kind:      domain.KindDeposit,
		RawAmount: "250",
		Fields:    validFields(),
		Limits:    limits,
	})
	require.False(t, res.Valid)
	assert.Equal(t, ReasonDailyLimitExceeded, res.Reason)

	res = Validate(Input{
		Method:    bankTransfer(),
		Kind:      domain.KindDeposit,
		RawAmount: "200",
		Fields:    validFields(),
		Limits:    limits,
	})
	assert.True(t, res.Valid, res.Message)
}

func TestValidateMonthlyHeadroom(t *testing.T) {
	limits := openLimits()
	limits.MonthlyUsed = decimal.NewFromInt(99950)

	res := Validate(Input{
		Method:    bankTransfer(),
		Kind:      domain.KindDeposit,
		RawAmount: "60",
		Fields:    validFields(),
		Limits:    limits,
	})
	require.False(t, res.Valid)
	assert.Equal(t, ReasonMonthlyLimitExceeded, res.Reason)
}

func TestValidateSkipsAccountRulesWithoutLimits(t *testing.T) {
	res := Validate(Input{
		Method:    bankTransfer(),
		Kind:      domain.KindDeposit,
		RawAmount: "99000",
		Fields:    validFields(),
		Limits:    nil,
	})
	require.True(t, res.Valid, res.Message)
	assert.False(t, res.LimitsVerified)
}

func TestValidateWithdrawalBalance(t *testing.T) {
	res := Validate(Input{
		Method:    bankTransfer(),
		Kind:      domain.KindWithdrawal,
		RawAmount: "500",
		Fields:    validFields(),
		Limits:    openLimits(),
		Balance:   decimal.NewFromInt(200),
	})
	require.False(t, res.Valid)
	assert.Equal(t, ReasonInsufficientBalance, res.Reason)

	// Deposits never look at the balance.
	res = Validate(Input{
		Method:    bankTransfer(),
		Kind:      domain.KindDeposit,
		RawAmount: "500",
		Fields:    validFields(),
		Limits:    openLimits(),
		Balance:   decimal.NewFromInt(200),
	})
	assert.True(t, res.Valid, res.Message)
}

func TestValidateRequiredFields(t *testing.T) {
	fields := validFields()
	delete(fields, "account_holder")

	res := Validate(Input{
		Method:    bankTransfer(),
		Kind:      domain.KindDeposit,
		RawAmount: "500",
		Fields:    fields,
		Limits:    openLimits(),
	})
	require.False(t, res.Valid)
	assert.Equal(t, ReasonFieldMissing, res.Reason)
	assert.Equal(t, "account_holder", res.Field)

	// Whitespace-only values count as missing.
	fields["account_holder"] = "   "
	res = Validate(Input{
		Method:    bankTransfer(),
		Kind:      domain.KindDeposit,
		RawAmount: "500",
		Fields:    fields,
		Limits:    openLimits(),
	})
	require.False(t, res.Valid)
	assert.Equal(t, ReasonFieldMissing, res.Reason)
}

func TestValidateFieldFormats(t *testing.T) {
	method := bankTransfer()

	fields := validFields()
	fields["iban"] = "not-an-iban"
	res := Validate(Input{
		Method:    method,
		Kind:      domain.KindDeposit,
		RawAmount: "500",
		Fields:    fields,
		Limits:    openLimits(),
	})
	require.False(t, res.Valid)
	assert.Equal(t, ReasonFieldFormat, res.Reason)
	assert.Equal(t, "iban", res.Field)
}

func TestValidateCardNumberLuhn(t *testing.T) {
	card := domain.PaymentMethod{
		ID:             "credit_card",
		Name:           "Credit Card",
		RequiredFields: []string{"card_number"},
		MinAmount:      decimal.NewFromInt(10),
		MaxAmount:      decimal.NewFromInt(10000),
		IsActive:       true,
	}

	res := Validate(Input{
		Method:    card,
		Kind:      domain.KindDeposit,
		RawAmount: "100",
		Fields:    map[string]string{"card_number": "4111 1111 1111 1111"},
		Limits:    openLimits(),
	})
	assert.True(t, res.Valid, res.Message)

	res = Validate(Input{
		Method:    card,
		Kind:      domain.KindDeposit,
		RawAmount: "100",
		Fields:    map[string]string{"card_number": "4111 1111 1111 1112"},
		Limits:    openLimits(),
	})
	require.False(t, res.Valid)
	assert.Equal(t, ReasonFieldFormat, res.Reason)
}

func TestValidateFirstFailureWins(t *testing.T) {
	// Bad amount and missing fields together: the amount rule fires first.
	res := Validate(Input{
		Method:    bankTransfer(),
		Kind:      domain.KindDeposit,
		RawAmount: "30",
		Fields:    map[string]string{},
		Limits:    openLimits(),
	})
	require.False(t, res.Valid)
	assert.Equal(t, ReasonBelowMethodMinimum, res.Reason)
}
