package loan

import (
	"agv-finance/internal/pkg/apperrors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGoldRates(t *testing.T) {
	g := NewGoldRates(7200, 80)
	assert.Equal(t, "7200", g.RatePerGram.String())
	assert.Equal(t, "80", g.MaxLTV.String())

	g = NewGoldRates(0, 150)
	assert.Equal(t, "7000", g.RatePerGram.String())
	assert.Equal(t, "75", g.MaxLTV.String())
}

func TestGoldRates_ValueGold(t *testing.T) {
	g := NewGoldRates(7000, 75)

	t.Run("22 karat at desk maximum", func(t *testing.T) {
		v, err := g.ValueGold(dec("10"), 22, decimal.Zero)
		require.NoError(t, err)
		assert.Equal(t, "9.167", v.FineGrams.StringFixed(3))
		assert.Equal(t, "64169.00", v.MarketValue.StringFixed(2))
		assert.Equal(t, "75", v.LTV.String())
		assert.Equal(t, "48126.75", v.EligibleAmount.StringFixed(2))
	})

	t.Run("Lower ltv is honoured", func(t *testing.T) {
		v, err := g.ValueGold(dec("20"), 24, dec("50"))
		require.NoError(t, err)
		assert.Equal(t, "140000.00", v.MarketValue.StringFixed(2))
		assert.Equal(t, "70000.00", v.EligibleAmount.StringFixed(2))
	})

	t.Run("Higher ltv is capped", func(t *testing.T) {
		v, err := g.ValueGold(dec("20"), 24, dec("90"))
		require.NoError(t, err)
		assert.Equal(t, "75", v.LTV.String())
		assert.Equal(t, "105000.00", v.EligibleAmount.StringFixed(2))
	})

	t.Run("Invalid input", func(t *testing.T) {
		_, err := g.ValueGold(decimal.Zero, 22, decimal.Zero)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		_, err = g.ValueGold(dec("10"), 23, decimal.Zero)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
		_, err = g.ValueGold(dec("10"), 22, dec("-5"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})
}

func TestConvertGold(t *testing.T) {
	t.Run("Down to 22 karat adds alloy", func(t *testing.T) {
		c, err := ConvertGold(dec("11"), 24, 22)
		require.NoError(t, err)
		assert.Equal(t, "11.000", c.FineGrams.StringFixed(3))
		assert.Equal(t, "12.000", c.ConvertedGrams.StringFixed(3))
		assert.Equal(t, "1.000", c.AlloyGrams.StringFixed(3))
	})

	t.Run("Up to 24 karat", func(t *testing.T) {
		c, err := ConvertGold(dec("12"), 18, 24)
		require.NoError(t, err)
		assert.Equal(t, "9.000", c.ConvertedGrams.StringFixed(3))
		assert.Equal(t, "-3.000", c.AlloyGrams.StringFixed(3))
	})

	t.Run("Unsupported karat", func(t *testing.T) {
		_, err := ConvertGold(dec("12"), 24, 9)
		assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	})
}
