package loan

import (
	"agv-finance/internal/pkg/apperrors"
	"agv-finance/internal/pkg/validation"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

var (
	fineKarat     = decimal.NewFromInt(24)
	defaultLTV    = decimal.NewFromInt(75)
	defaultRate   = decimal.NewFromInt(7000)
	weightDecimal = int32(3)
)

// GoldRates holds the desk's 24K rate per gram and the highest
// loan-to-value percentage it lends against.
type GoldRates struct {
	RatePerGram decimal.Decimal
	MaxLTV      decimal.Decimal
}

// NewGoldRates falls back to 7000 per gram and 75% for non-positive inputs.
func NewGoldRates(ratePerGram, maxLTV float64) GoldRates {
	g := GoldRates{RatePerGram: decimal.NewFromFloat(ratePerGram), MaxLTV: decimal.NewFromFloat(maxLTV)}
	if !g.RatePerGram.IsPositive() {
		g.RatePerGram = defaultRate
	}
	if !g.MaxLTV.IsPositive() || g.MaxLTV.GreaterThan(hundred) {
		g.MaxLTV = defaultLTV
	}
	return g
}

type GoldValuation struct {
	WeightGrams    decimal.Decimal `json:"weight_grams"`
	Karat          int             `json:"karat"`
	FineGrams      decimal.Decimal `json:"fine_grams"`
	RatePerGram    decimal.Decimal `json:"rate_per_gram"`
	MarketValue    decimal.Decimal `json:"market_value"`
	LTV            decimal.Decimal `json:"ltv"`
	EligibleAmount decimal.Decimal `json:"eligible_amount"`
}

type GoldConversion struct {
	WeightGrams    decimal.Decimal `json:"weight_grams"`
	FromKarat      int             `json:"from_karat"`
	ToKarat        int             `json:"to_karat"`
	FineGrams      decimal.Decimal `json:"fine_grams"`
	ConvertedGrams decimal.Decimal `json:"converted_grams"`
	AlloyGrams     decimal.Decimal `json:"alloy_grams"`
}

func checkKarat(k int) error {
	if !slices.Contains(validation.Karats, k) {
		return fmt.Errorf("%w: unsupported karat %d", apperrors.ErrInvalidArgument, k)
	}
	return nil
}

// ValueGold prices weight grams of k-karat gold at the 24K rate and applies
// the loan-to-value percentage. A zero ltv uses the desk maximum; a larger
// one is capped at it.
func (g GoldRates) ValueGold(weight decimal.Decimal, karat int, ltv decimal.Decimal) (GoldValuation, error) {
	if !weight.IsPositive() {
		return GoldValuation{}, fmt.Errorf("%w: weight must be greater than zero", apperrors.ErrInvalidArgument)
	}
	if err := checkKarat(karat); err != nil {
		return GoldValuation{}, err
	}
	if ltv.IsNegative() {
		return GoldValuation{}, fmt.Errorf("%w: loan-to-value cannot be negative", apperrors.ErrInvalidArgument)
	}
	if ltv.IsZero() || ltv.GreaterThan(g.MaxLTV) {
		ltv = g.MaxLTV
	}

	fine := weight.Mul(decimal.NewFromInt(int64(karat))).Div(fineKarat).Round(weightDecimal)
	value := fine.Mul(g.RatePerGram).Round(2)
	return GoldValuation{
		WeightGrams:    weight,
		Karat:          karat,
		FineGrams:      fine,
		RatePerGram:    g.RatePerGram,
		MarketValue:    value,
		LTV:            ltv,
		EligibleAmount: value.Mul(ltv).Div(hundred).RoundFloor(2),
	}, nil
}

// ConvertGold gives the weight of to-karat gold holding the same fine gold
// as weight grams of from-karat gold. Lowering purity adds alloy.
func ConvertGold(weight decimal.Decimal, fromKarat, toKarat int) (GoldConversion, error) {
	if !weight.IsPositive() {
		return GoldConversion{}, fmt.Errorf("%w: weight must be greater than zero", apperrors.ErrInvalidArgument)
	}
	if err := checkKarat(fromKarat); err != nil {
		return GoldConversion{}, err
	}
	if err := checkKarat(toKarat); err != nil {
		return GoldConversion{}, err
	}

	from := decimal.NewFromInt(int64(fromKarat))
	converted := weight.Mul(from).Div(decimal.NewFromInt(int64(toKarat))).Round(weightDecimal)
	return GoldConversion{
		WeightGrams:    weight,
		FromKarat:      fromKarat,
		ToKarat:        toKarat,
		FineGrams:      weight.Mul(from).Div(fineKarat).Round(weightDecimal),
		ConvertedGrams: converted,
		AlloyGrams:     converted.Sub(weight),
	}, nil
}
