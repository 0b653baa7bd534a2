// Package validation holds the pure form validator gating the move from
// field collection to confirmation. It has no side effects and is safe to
// run on every keystroke.
package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ovibet/cashier/internal/core/domain"
)

type Reason string

const (
	ReasonAmountInvalid        Reason = "amount_invalid"
	ReasonBelowMethodMinimum   Reason = "below_method_minimum"
	ReasonAboveMethodMaximum   Reason = "above_method_maximum"
	ReasonAboveAccountMaximum  Reason = "above_account_maximum"
	ReasonDailyLimitExceeded   Reason = "daily_limit_exceeded"
	ReasonMonthlyLimitExceeded Reason = "monthly_limit_exceeded"
	ReasonInsufficientBalance  Reason = "insufficient_balance"
	ReasonFieldMissing         Reason = "field_missing"
	ReasonFieldFormat          Reason = "field_format"
)

// Input is everything the validator looks at. Limits is nil when the limits
// fetch failed; balance is supplied by the caller for withdrawals, the
// validator never fetches anything itself.
type Input struct {
	Method    domain.PaymentMethod
	Kind      domain.TransactionKind
	RawAmount string
	Fields    map[string]string
	Limits    *domain.AccountLimits
	Balance   decimal.Decimal
}

// Result is either valid or carries the first failing rule. LimitsVerified
// is false when account-level ceilings could not be checked because the
// limits snapshot was unavailable; the backend remains the authority.
type Result struct {
	Valid          bool
	Reason         Reason
	Message        string
	Field          string
	Amount         decimal.Decimal
	LimitsVerified bool
}

func invalid(reason Reason, message string) Result {
	return Result{Reason: reason, Message: message}
}

// Validate applies the rules in a fixed order so the surfaced message is
// deterministic: amount parses, method bounds, account ceiling, daily and
// monthly headroom, balance (withdrawals), required fields, field formats.
// First failure wins.
func Validate(in Input) Result {
	amount, err := domain.ParseAmount(in.RawAmount)
	if err != nil {
		return invalid(ReasonAmountInvalid, err.Error())
	}

	if amount.LessThan(in.Method.MinAmount) {
		return invalid(ReasonBelowMethodMinimum,
			fmt.Sprintf("amount is below the %s minimum of %s", in.Method.Name, in.Method.MinAmount))
	}
	if amount.GreaterThan(in.Method.MaxAmount) {
		return invalid(ReasonAboveMethodMaximum,
			fmt.Sprintf("amount exceeds the %s maximum of %s", in.Method.Name, in.Method.MaxAmount))
	}

	if in.Limits != nil {
		if amount.GreaterThan(in.Limits.MaxAmount) {
			return invalid(ReasonAboveAccountMaximum,
				fmt.Sprintf("amount exceeds your per-transaction limit of %s", in.Limits.MaxAmount))
		}
		if amount.GreaterThan(in.Limits.DailyRemaining()) {
			return invalid(ReasonDailyLimitExceeded,
				fmt.Sprintf("amount exceeds your remaining daily limit of %s", in.Limits.DailyRemaining()))
		}
		if amount.GreaterThan(in.Limits.MonthlyRemaining()) {
			return invalid(ReasonMonthlyLimitExceeded,
				fmt.Sprintf("amount exceeds your remaining monthly limit of %s", in.Limits.MonthlyRemaining()))
		}
	}

	if in.Kind == domain.KindWithdrawal && amount.GreaterThan(in.Balance) {
		return invalid(ReasonInsufficientBalance, "amount exceeds your available balance")
	}

	for _, key := range in.Method.RequiredFields {
		value, ok := in.Fields[key]
		if !ok || strings.TrimSpace(value) == "" {
			r := invalid(ReasonFieldMissing, fmt.Sprintf("%s is required", fieldLabel(key)))
			r.Field = key
			return r
		}
	}

	for _, key := range in.Method.RequiredFields {
		format, ok := fieldFormats[key]
		if !ok {
			continue
		}
		value := strings.TrimSpace(in.Fields[key])
		if format.MaxLen > 0 && len(value) > format.MaxLen {
			r := invalid(ReasonFieldFormat, fmt.Sprintf("%s is too long", fieldLabel(key)))
			r.Field = key
			return r
		}
		if format.Pattern != nil && !format.Pattern.MatchString(value) {
			r := invalid(ReasonFieldFormat, fmt.Sprintf("%s is not valid", fieldLabel(key)))
			r.Field = key
			return r
		}
		if format.Check != nil && !format.Check(value) {
			r := invalid(ReasonFieldFormat, fmt.Sprintf("%s is not valid", fieldLabel(key)))
			r.Field = key
			return r
		}
	}

	return Result{Valid: true, Amount: amount, LimitsVerified: in.Limits != nil}
}

func fieldLabel(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
