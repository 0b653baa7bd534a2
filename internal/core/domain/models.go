package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MethodCategory string

const (
	CategoryBank    MethodCategory = "bank"
	CategoryEWallet MethodCategory = "e-wallet"
	CategoryCrypto  MethodCategory = "crypto"
	CategoryOther   MethodCategory = "other"
)

type TransactionKind string

const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
)

// PaymentMethod is one catalog entry: a configured way of moving money in or
// out of a player account. Entries are immutable for the lifetime of a
// cashier session.
type PaymentMethod struct {
	ID             string
	Name           string
	Category       MethodCategory
	RequiredFields []string
	MinAmount      decimal.Decimal
	MaxAmount      decimal.Decimal
	ProcessingTime string
	FeeDescription string
	IsActive       bool
}

// AccountLimits is a read-only snapshot of the per-user ceilings, fetched
// once when a session opens. The backend re-checks these on submission; the
// client only blocks obviously invalid requests.
type AccountLimits struct {
	MinAmount    decimal.Decimal
	MaxAmount    decimal.Decimal
	DailyLimit   decimal.Decimal
	MonthlyLimit decimal.Decimal
	DailyUsed    decimal.Decimal
	MonthlyUsed  decimal.Decimal
}

// DailyRemaining returns the headroom left under the daily ceiling, floored
// at zero so an over-spent day never yields a negative allowance.
func (l AccountLimits) DailyRemaining() decimal.Decimal {
	rem := l.DailyLimit.Sub(l.DailyUsed)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

func (l AccountLimits) MonthlyRemaining() decimal.Decimal {
	rem := l.MonthlyLimit.Sub(l.MonthlyUsed)
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}

// TransactionResult is what a successful submission hands back. Display only;
// the ledger record lives on the platform backend.
type TransactionResult struct {
	TransactionID   string
	SubmittedAmount decimal.Decimal
	MethodID        string
	CreatedAt       time.Time
}

// SubmissionRequest is the canonical, method-agnostic shape sent to the
// payments backend. Whatever fields a method collects, its identifying
// account reference is normalized into AccountReference before this struct
// is built.
type SubmissionRequest struct {
	UserID           string
	Kind             TransactionKind
	MethodID         string
	Amount           decimal.Decimal
	AccountReference string
	IdempotencyToken string
	Timestamp        time.Time
}
