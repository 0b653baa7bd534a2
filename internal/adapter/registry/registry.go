// Package registry serves the payment method catalog. Listing returns
// active methods only; Get also resolves inactive methods so the UI can
// render a disabled entry the user once transacted with.
package registry

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ovibet/cashier/internal/core/domain"
)

type Registry interface {
	List(ctx context.Context) ([]domain.PaymentMethod, error)
	Get(ctx context.Context, id string) (domain.PaymentMethod, error)
}

// Static is an in-memory catalog in a fixed order. It backs tests and
// DB-less startup.
type Static struct {
	methods []domain.PaymentMethod
}

func NewStatic(methods []domain.PaymentMethod) *Static {
	return &Static{methods: methods}
}

func (s *Static) List(ctx context.Context) ([]domain.PaymentMethod, error) {
	out := make([]domain.PaymentMethod, 0, len(s.methods))
	for _, m := range s.methods {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Static) Get(ctx context.Context, id string) (domain.PaymentMethod, error) {
	for _, m := range s.methods {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.PaymentMethod{}, domain.ErrMethodNotFound
}

// DefaultCatalog is the seed catalog used when no database is configured.
func DefaultCatalog() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{
			ID:             "bank_transfer",
			Name:           "Bank Transfer",
			Category:       domain.CategoryBank,
			RequiredFields: []string{"iban", "account_holder"},
			MinAmount:      decimal.NewFromInt(50),
			MaxAmount:      decimal.NewFromInt(100000),
			ProcessingTime: "1-3 business days",
			FeeDescription: "free",
			IsActive:       true,
		},
		{
			ID:             "credit_card",
			Name:           "Credit Card",
			Category:       domain.CategoryOther,
			RequiredFields: []string{"card_number", "account_holder"},
			MinAmount:      decimal.NewFromInt(10),
			MaxAmount:      decimal.NewFromInt(10000),
			ProcessingTime: "instant",
			FeeDescription: "1.9%",
			IsActive:       true,
		},
		{
			ID:             "e_wallet",
			Name:           "E-Wallet",
			Category:       domain.CategoryEWallet,
			RequiredFields: []string{"wallet_id", "email"},
			MinAmount:      decimal.NewFromInt(10),
			MaxAmount:      decimal.NewFromInt(25000),
			ProcessingTime: "instant",
			FeeDescription: "free",
			IsActive:       true,
		},
		{
			ID:             "crypto",
			Name:           "Crypto",
			Category:       domain.CategoryCrypto,
			RequiredFields: []string{"crypto_address"},
			MinAmount:      decimal.NewFromInt(20),
			MaxAmount:      decimal.NewFromInt(250000),
			ProcessingTime: "up to 1 hour",
			FeeDescription: "network fee",
			IsActive:       true,
		},
		{
			ID:             "mobile_money",
			Name:           "Mobile Money",
			Category:       domain.CategoryEWallet,
			RequiredFields: []string{"phone_number"},
			MinAmount:      decimal.NewFromInt(5),
			MaxAmount:      decimal.NewFromInt(5000),
			ProcessingTime: "instant",
			FeeDescription: "free",
			IsActive:       false,
		},
	}
}
