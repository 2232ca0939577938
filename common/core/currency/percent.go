package currency

import (
	"math/big"

	"github.com/alexkalak/go_v2_router/common/core/fraction"
)

var hundred = fraction.FromInt64(100)

// Percent is a fraction shown as a percentage: 1/200 prints as 0.5.
type Percent struct {
	fraction.Fraction
}

func NewPercent(numerator, denominator *big.Int) (Percent, error) {
	f, err := fraction.New(numerator, denominator)
	if err != nil {
		return Percent{}, err
	}
	return Percent{Fraction: f}, nil
}

func PercentFromFraction(f fraction.Fraction) Percent {
	return Percent{Fraction: f}
}

// PercentFromBasisPoints turns 50 into 0.5%.
func PercentFromBasisPoints(bps int64) Percent {
	f, _ := fraction.NewInt64(bps, 10_000)
	return Percent{Fraction: f}
}

func (p Percent) ToSignificant(significantDigits int, rounding fraction.Rounding) (string, error) {
	return p.Fraction.Mul(hundred).ToSignificant(significantDigits, rounding)
}

func (p Percent) ToFixed(decimalPlaces int, rounding fraction.Rounding) (string, error) {
	return p.Fraction.Mul(hundred).ToFixed(decimalPlaces, rounding)
}
