package workflow

import (
	"fmt"
	"strings"

	"github.com/ovibet/cashier/internal/core/domain"
)

// accountReferenceFields maps a method id to the collected field that
// identifies the destination account. One declarative table instead of
// per-method branching, so new methods only add a row here (or rely on the
// first-required-field fallback).
var accountReferenceFields = map[string]string{
	"bank_transfer": "iban",
	"credit_card":   "card_number",
	"crypto":        "crypto_address",
	"e_wallet":      "wallet_id",
	"mobile_money":  "phone_number",
}

// accountReference normalizes the method-specific fields into the single
// reference attribute of the canonical submission request.
func accountReference(method domain.PaymentMethod, fields map[string]string) (string, error) {
	key, ok := accountReferenceFields[method.ID]
	if !ok {
		if len(method.RequiredFields) == 0 {
			return "", fmt.Errorf("method %q collects no fields to derive an account reference from", method.ID)
		}
		key = method.RequiredFields[0]
	}
	ref := strings.TrimSpace(fields[key])
	if ref == "" {
		return "", fmt.Errorf("field %q is empty, cannot build account reference", key)
	}
	return ref, nil
}
