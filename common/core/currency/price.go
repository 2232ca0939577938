package currency

import (
	"math/big"

	"github.com/alexkalak/go_v2_router/common/core/coreerrors/currencyerrors"
	"github.com/alexkalak/go_v2_router/common/core/fraction"
)

// Price is quote-per-base. raw is in smallest units; scalar moves it to whole units.
type Price struct {
	base   Currency
	quote  Currency
	raw    fraction.Fraction
	scalar fraction.Fraction
}

// NewPrice builds the price at which denominator of base trades for numerator of quote.
func NewPrice(base, quote Currency, denominator, numerator *big.Int) (Price, error) {
	raw, err := fraction.New(numerator, denominator)
	if err != nil {
		return Price{}, currencyerrors.ErrZeroPriceDenominator
	}
	return newPriceFromRaw(base, quote, raw), nil
}

func newPriceFromRaw(base, quote Currency, raw fraction.Fraction) Price {
	scalar, _ := fraction.New(
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(base.Decimals())), nil),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(quote.Decimals())), nil),
	)
	return Price{base: base, quote: quote, raw: raw, scalar: scalar}
}

func (p Price) BaseCurrency() Currency  { return p.base }
func (p Price) QuoteCurrency() Currency { return p.quote }
func (p Price) Raw() fraction.Fraction  { return p.raw }

func (p Price) Adjusted() fraction.Fraction {
	return p.raw.Mul(p.scalar)
}

func (p Price) Invert() (Price, error) {
	inverted, err := p.raw.Invert()
	if err != nil {
		return Price{}, currencyerrors.ErrZeroPriceDenominator
	}
	return newPriceFromRaw(p.quote, p.base, inverted), nil
}

// Multiply chains two prices: A/B times B/C gives A/C.
func (p Price) Multiply(other Price) (Price, error) {
	if !p.quote.Equals(other.base) {
		return Price{}, currencyerrors.ErrCurrencyMismatch
	}
	return newPriceFromRaw(p.base, other.quote, p.raw.Mul(other.raw)), nil
}

// Quote converts an amount of the base currency into the quote currency, truncating.
func (p Price) Quote(amount Amount) (Amount, error) {
	if !p.base.Equals(amount.Currency()) {
		return Amount{}, currencyerrors.ErrCurrencyMismatch
	}
	return NewAmount(p.quote, p.raw.MulInt(amount.Raw()).Quotient())
}

func (p Price) ToSignificant(significantDigits int, rounding fraction.Rounding) (string, error) {
	return p.Adjusted().ToSignificant(significantDigits, rounding)
}

func (p Price) ToFixed(decimalPlaces int, rounding fraction.Rounding) (string, error) {
	return p.Adjusted().ToFixed(decimalPlaces, rounding)
}
