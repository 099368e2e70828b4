package currency

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finly-app/expense-service/internal/domain/approval"
)

func newTestConverter(t *testing.T, rates map[string]string) *StaticConverter {
	t.Helper()
	c, err := NewStaticConverter(rates, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestConvert_SameCurrencyIsIdentity(t *testing.T) {
	c := newTestConverter(t, nil)

	conv, err := c.Convert(context.Background(), decimal.RequireFromString("123.45"), "USD", "USD")
	require.NoError(t, err)

	assert.True(t, conv.Value.Equal(decimal.RequireFromString("123.45")))
	assert.True(t, conv.Rate.Equal(decimal.NewFromInt(1)))
	assert.False(t, conv.Timestamp.IsZero())
}

func TestConvert_ConfiguredRate(t *testing.T) {
	c := newTestConverter(t, map[string]string{"EUR/USD": "1.10"})

	conv, err := c.Convert(context.Background(), decimal.NewFromInt(200), "EUR", "USD")
	require.NoError(t, err)

	assert.True(t, conv.Value.Equal(decimal.RequireFromString("220")), "got %s", conv.Value)
	assert.True(t, conv.Rate.Equal(decimal.RequireFromString("1.10")))
}

func TestConvert_InverseRateDerived(t *testing.T) {
	c := newTestConverter(t, map[string]string{"EUR/USD": "1.25"})

	conv, err := c.Convert(context.Background(), decimal.NewFromInt(100), "USD", "EUR")
	require.NoError(t, err)

	// 1 / 1.25 = 0.8
	assert.True(t, conv.Value.Equal(decimal.RequireFromString("80")), "got %s", conv.Value)
}

func TestConvert_RoundsToTwoPlaces(t *testing.T) {
	c := newTestConverter(t, map[string]string{"GBP/USD": "1.333333"})

	conv, err := c.Convert(context.Background(), decimal.NewFromInt(10), "GBP", "USD")
	require.NoError(t, err)

	assert.True(t, conv.Value.Equal(decimal.RequireFromString("13.33")), "got %s", conv.Value)
}

func TestConvert_MissingRateIsConfigurationError(t *testing.T) {
	c := newTestConverter(t, map[string]string{"EUR/USD": "1.10"})

	_, err := c.Convert(context.Background(), decimal.NewFromInt(10), "JPY", "USD")
	assert.True(t, errors.Is(err, approval.ErrConfiguration))
}

func TestNewStaticConverter_RejectsBadRates(t *testing.T) {
	_, err := NewStaticConverter(map[string]string{"EUR/USD": "abc"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewStaticConverter(map[string]string{"EUR/USD": "-1"}, zap.NewNop())
	assert.Error(t, err)
}
