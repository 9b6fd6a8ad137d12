package payments_test

import (
	"testing"

	"storefront/internal/payments"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	minor, err := payments.ToMinorUnits(decimal.RequireFromString("59.99"), "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(5999), minor)

	minor, err = payments.ToMinorUnits(decimal.RequireFromString("1500"), "jpy")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), minor)

	_, err = payments.ToMinorUnits(decimal.NewFromInt(1), "ZZZ")
	assert.Error(t, err)
}

func TestFromMinorUnits(t *testing.T) {
	amount, err := payments.FromMinorUnits(13798, "usd")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("137.98")), amount.String())
}

func TestSameCurrency(t *testing.T) {
	assert.True(t, payments.SameCurrency("usd", "USD"))
	assert.False(t, payments.SameCurrency("USD", "EUR"))
	assert.False(t, payments.SameCurrency("USD", ""))
}
