package fraction

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrZeroDenominator = errors.New("fraction denominator cannot be zero")
var ErrInvalidSignificantDigits = errors.New("significant digits must be greater than zero")
var ErrInvalidDecimalPlaces = errors.New("decimal places cannot be negative")

type Rounding int

const (
	RoundDown Rounding = iota
	RoundHalfUp
	RoundUp
)

var (
	zero = big.NewInt(0)
	one  = big.NewInt(1)
	ten  = big.NewInt(10)
)

// Fraction is an exact rational number. It is never mutated after construction and is
// not kept in lowest terms; every comparison cross-multiplies instead.
type Fraction struct {
	numerator   *big.Int
	denominator *big.Int
}

// New copies its arguments. A negative denominator moves its sign to the numerator.
func New(numerator, denominator *big.Int) (Fraction, error) {
	if numerator == nil || denominator == nil || denominator.Sign() == 0 {
		return Fraction{}, ErrZeroDenominator
	}
	num := new(big.Int).Set(numerator)
	den := new(big.Int).Set(denominator)
	if den.Sign() < 0 {
		num.Neg(num)
		den.Neg(den)
	}
	return Fraction{numerator: num, denominator: den}, nil
}

func FromInt(n *big.Int) Fraction {
	return Fraction{numerator: new(big.Int).Set(n), denominator: big.NewInt(1)}
}

func FromInt64(n int64) Fraction {
	return Fraction{numerator: big.NewInt(n), denominator: big.NewInt(1)}
}

func NewInt64(numerator, denominator int64) (Fraction, error) {
	return New(big.NewInt(numerator), big.NewInt(denominator))
}

func (f Fraction) Numerator() *big.Int {
	return new(big.Int).Set(f.num())
}

func (f Fraction) Denominator() *big.Int {
	return new(big.Int).Set(f.den())
}

// zero value Fraction reads as 0/1
func (f Fraction) num() *big.Int {
	if f.numerator == nil {
		return zero
	}
	return f.numerator
}

func (f Fraction) den() *big.Int {
	if f.denominator == nil {
		return one
	}
	return f.denominator
}

func (f Fraction) Sign() int {
	return f.num().Sign()
}

func (f Fraction) IsZero() bool {
	return f.num().Sign() == 0
}

// Quotient truncates toward zero: -7/2 gives -3, not -4.
func (f Fraction) Quotient() *big.Int {
	return new(big.Int).Quo(f.num(), f.den())
}

// Remainder is what Quotient dropped, over the same denominator.
func (f Fraction) Remainder() Fraction {
	return Fraction{
		numerator:   new(big.Int).Rem(f.num(), f.den()),
		denominator: new(big.Int).Set(f.den()),
	}
}

func (f Fraction) Invert() (Fraction, error) {
	return New(f.den(), f.num())
}

func (f Fraction) Add(other Fraction) Fraction {
	if f.den().Cmp(other.den()) == 0 {
		return Fraction{
			numerator:   new(big.Int).Add(f.num(), other.num()),
			denominator: new(big.Int).Set(f.den()),
		}
	}
	return Fraction{
		numerator: new(big.Int).Add(
			new(big.Int).Mul(f.num(), other.den()),
			new(big.Int).Mul(other.num(), f.den()),
		),
		denominator: new(big.Int).Mul(f.den(), other.den()),
	}
}

func (f Fraction) Sub(other Fraction) Fraction {
	if f.den().Cmp(other.den()) == 0 {
		return Fraction{
			numerator:   new(big.Int).Sub(f.num(), other.num()),
			denominator: new(big.Int).Set(f.den()),
		}
	}
	return Fraction{
		numerator: new(big.Int).Sub(
			new(big.Int).Mul(f.num(), other.den()),
			new(big.Int).Mul(other.num(), f.den()),
		),
		denominator: new(big.Int).Mul(f.den(), other.den()),
	}
}

func (f Fraction) Mul(other Fraction) Fraction {
	return Fraction{
		numerator:   new(big.Int).Mul(f.num(), other.num()),
		denominator: new(big.Int).Mul(f.den(), other.den()),
	}
}

func (f Fraction) MulInt(n *big.Int) Fraction {
	return f.Mul(FromInt(n))
}

func (f Fraction) Div(other Fraction) (Fraction, error) {
	return New(
		new(big.Int).Mul(f.num(), other.den()),
		new(big.Int).Mul(f.den(), other.num()),
	)
}

// Cmp returns -1, 0 or +1. Denominators are always positive, so cross products keep
// the ordering.
func (f Fraction) Cmp(other Fraction) int {
	left := new(big.Int).Mul(f.num(), other.den())
	right := new(big.Int).Mul(other.num(), f.den())
	return left.Cmp(right)
}

func (f Fraction) LessThan(other Fraction) bool {
	return f.Cmp(other) < 0
}

func (f Fraction) EqualTo(other Fraction) bool {
	return f.Cmp(other) == 0
}

func (f Fraction) GreaterThan(other Fraction) bool {
	return f.Cmp(other) > 0
}

// ToSignificant renders the value with the given number of significant digits. Trailing
// zeros after the decimal point are dropped.
func (f Fraction) ToSignificant(significantDigits int, rounding Rounding) (string, error) {
	if significantDigits <= 0 {
		return "", ErrInvalidSignificantDigits
	}
	if f.IsZero() {
		return "0", nil
	}

	negative := f.Sign() < 0
	numerator := new(big.Int).Abs(f.num())
	denominator := f.den()

	shift := significantDigits - 1 - floorLog10(numerator, denominator)
	var scaled *big.Int
	if shift >= 0 {
		scaled = roundQuo(new(big.Int).Mul(numerator, pow10(shift)), denominator, rounding)
	} else {
		scaled = roundQuo(numerator, new(big.Int).Mul(denominator, pow10(-shift)), rounding)
	}
	if negative {
		scaled.Neg(scaled)
	}

	return decimal.NewFromBigInt(scaled, int32(-shift)).String(), nil
}

// ToFixed renders the value with exactly decimalPlaces digits after the point.
func (f Fraction) ToFixed(decimalPlaces int, rounding Rounding) (string, error) {
	if decimalPlaces < 0 {
		return "", ErrInvalidDecimalPlaces
	}

	numerator := new(big.Int).Abs(f.num())
	scaled := roundQuo(new(big.Int).Mul(numerator, pow10(decimalPlaces)), f.den(), rounding)
	if f.Sign() < 0 {
		scaled.Neg(scaled)
	}

	res := decimal.NewFromBigInt(scaled, int32(-decimalPlaces)).StringFixed(int32(decimalPlaces))
	if scaled.Sign() == 0 {
		res = strings.TrimPrefix(res, "-")
	}
	return res, nil
}

func (f Fraction) String() string {
	return f.num().String() + "/" + f.den().String()
}

// roundQuo divides two non-negative integers with the given rounding.
func roundQuo(numerator, denominator *big.Int, rounding Rounding) *big.Int {
	quotient, remainder := new(big.Int).QuoRem(numerator, denominator, new(big.Int))
	if remainder.Sign() == 0 {
		return quotient
	}

	switch rounding {
	case RoundUp:
		quotient.Add(quotient, one)
	case RoundHalfUp:
		if new(big.Int).Lsh(remainder, 1).Cmp(denominator) >= 0 {
			quotient.Add(quotient, one)
		}
	}
	return quotient
}

// floorLog10 of numerator/denominator, both positive.
func floorLog10(numerator, denominator *big.Int) int {
	exponent := len(numerator.String()) - len(denominator.String())

	left := new(big.Int).Set(numerator)
	right := new(big.Int).Set(denominator)
	if exponent >= 0 {
		right.Mul(right, pow10(exponent))
	} else {
		left.Mul(left, pow10(-exponent))
	}
	if left.Cmp(right) < 0 {
		exponent--
	}
	return exponent
}

func pow10(exponent int) *big.Int {
	return new(big.Int).Exp(ten, big.NewInt(int64(exponent)), nil)
}
