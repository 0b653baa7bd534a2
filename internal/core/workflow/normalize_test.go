package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovibet/cashier/internal/core/domain"
)

func TestAccountReferenceUsesMappedField(t *testing.T) {
	method := domain.PaymentMethod{
		ID:             "bank_transfer",
		RequiredFields: []string{"iban", "account_holder"},
	}
	ref, err := accountReference(method, map[string]string{
		"iban":           " DE89370400440532013000 ",
		"account_holder": "Jo Player",
	})
	require.NoError(t, err)
	assert.Equal(t, "DE89370400440532013000", ref)
}

func TestAccountReferenceFallsBackToFirstRequiredField(t *testing.T) {
	method := domain.PaymentMethod{
		ID:             "voucher",
		RequiredFields: []string{"voucher_code"},
	}
	ref, err := accountReference(method, map[string]string{"voucher_code": "V-123"})
	require.NoError(t, err)
	assert.Equal(t, "V-123", ref)
}

func TestAccountReferenceErrors(t *testing.T) {
	// No mapping and no required fields: nothing to index into.
	_, err := accountReference(domain.PaymentMethod{ID: "mystery"}, nil)
	assert.Error(t, err)

	// Mapped field present but empty.
	method := domain.PaymentMethod{ID: "crypto", RequiredFields: []string{"crypto_address"}}
	_, err = accountReference(method, map[string]string{"crypto_address": "  "})
	assert.Error(t, err)
}
