package currency

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/alexkalak/go_v2_router/common/core/coreerrors/currencyerrors"
	"github.com/alexkalak/go_v2_router/common/core/fraction"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
)

// Amount is a raw integer quantity of a currency, in its smallest unit.
type Amount struct {
	currency Currency
	raw      *big.Int
}

func NewAmount(c Currency, raw *big.Int) (Amount, error) {
	if c == nil || raw == nil {
		return Amount{}, errors.New("amount requires a currency and a value")
	}
	if raw.Sign() < 0 {
		return Amount{}, currencyerrors.ErrNegativeAmount
	}
	if raw.Cmp(math.MaxBig256) > 0 {
		return Amount{}, currencyerrors.ErrAmountOverflow
	}

	return Amount{currency: c, raw: new(big.Int).Set(raw)}, nil
}

func NewEtherAmount(raw *big.Int) (Amount, error) {
	return NewAmount(Ether, raw)
}

func (a Amount) Currency() Currency {
	return a.currency
}

func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.raw)
}

func (a Amount) IsNative() bool {
	return a.currency != nil && a.currency.IsNative()
}

// Token reports the token of a token amount.
func (a Amount) Token() (Token, bool) {
	token, ok := a.currency.(Token)
	return token, ok
}

func (a Amount) Fraction() fraction.Fraction {
	return fraction.FromInt(a.Raw())
}

// Wrap converts a native amount into the chain's WETH amount; token amounts are
// returned unchanged.
func (a Amount) Wrap(chainID ChainID) (Amount, error) {
	token, err := Wrap(a.currency, chainID)
	if err != nil {
		return Amount{}, err
	}
	return Amount{currency: token, raw: a.Raw()}, nil
}

func (a Amount) Add(other Amount) (Amount, error) {
	if a.currency == nil || other.currency == nil || !a.currency.Equals(other.currency) {
		return Amount{}, currencyerrors.ErrCurrencyMismatch
	}
	return NewAmount(a.currency, new(big.Int).Add(a.Raw(), other.Raw()))
}

func (a Amount) Sub(other Amount) (Amount, error) {
	if a.currency == nil || other.currency == nil || !a.currency.Equals(other.currency) {
		return Amount{}, currencyerrors.ErrCurrencyMismatch
	}
	return NewAmount(a.currency, new(big.Int).Sub(a.Raw(), other.Raw()))
}

func (a Amount) Cmp(other Amount) int {
	return a.Raw().Cmp(other.Raw())
}

func (a Amount) LessThan(other Amount) bool {
	return a.Cmp(other) < 0
}

func (a Amount) EqualTo(other Amount) bool {
	return a.Cmp(other) == 0
}

func (a Amount) GreaterThan(other Amount) bool {
	return a.Cmp(other) > 0
}

func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

func (a Amount) decimalScale() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(a.currency.Decimals())), nil)
}

func (a Amount) adjusted() fraction.Fraction {
	adjusted, _ := fraction.New(a.Raw(), a.decimalScale())
	return adjusted
}

func (a Amount) ToSignificant(significantDigits int, rounding fraction.Rounding) (string, error) {
	return a.adjusted().ToSignificant(significantDigits, rounding)
}

func (a Amount) ToFixed(decimalPlaces int, rounding fraction.Rounding) (string, error) {
	if decimalPlaces > int(a.currency.Decimals()) {
		return "", fmt.Errorf("%w: %d places for %d decimals", fraction.ErrInvalidDecimalPlaces, decimalPlaces, a.currency.Decimals())
	}
	return a.adjusted().ToFixed(decimalPlaces, rounding)
}

// ToExact is the full precision decimal value in whole units.
func (a Amount) ToExact() string {
	return decimal.NewFromBigInt(a.Raw(), -int32(a.currency.Decimals())).String()
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.ToExact(), a.currency.Symbol())
}
