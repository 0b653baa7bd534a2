package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovibet/cashier/internal/core/domain"
)

func TestStaticListReturnsActiveOnlyInOrder(t *testing.T) {
	reg := NewStatic(DefaultCatalog())

	methods, err := reg.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, methods)

	ids := make([]string, 0, len(methods))
	for _, m := range methods {
		assert.True(t, m.IsActive)
		assert.True(t, m.MinAmount.LessThan(m.MaxAmount), "method %s has min >= max", m.ID)
		assert.NotEmpty(t, m.RequiredFields, "method %s collects no fields", m.ID)
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"bank_transfer", "credit_card", "e_wallet", "crypto"}, ids)
}

func TestStaticGetResolvesInactiveMethods(t *testing.T) {
	reg := NewStatic(DefaultCatalog())

	// mobile_money is inactive: hidden from List, still resolvable for a
	// disabled display entry.
	m, err := reg.Get(context.Background(), "mobile_money")
	require.NoError(t, err)
	assert.False(t, m.IsActive)

	_, err = reg.Get(context.Background(), "no_such_method")
	assert.ErrorIs(t, err, domain.ErrMethodNotFound)
}
