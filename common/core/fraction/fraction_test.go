package fraction

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, numerator, denominator int64) Fraction {
	t.Helper()
	f, err := NewInt64(numerator, denominator)
	require.NoError(t, err)
	return f
}

func TestQuotientTruncatesTowardZero(t *testing.T) {
	require.Equal(t, int64(2), mustNew(t, 8, 3).Quotient().Int64())
	require.Equal(t, int64(4), mustNew(t, 12, 3).Quotient().Int64())
	require.Equal(t, int64(-3), mustNew(t, -7, 2).Quotient().Int64())
	require.Equal(t, int64(-3), mustNew(t, 7, -2).Quotient().Int64())
	require.Equal(t, int64(0), mustNew(t, -1, 2).Quotient().Int64())
}

func TestRemainder(t *testing.T) {
	r := mustNew(t, 8, 3).Remainder()
	require.True(t, r.EqualTo(mustNew(t, 2, 3)))

	r = mustNew(t, 12, 3).Remainder()
	require.True(t, r.IsZero())
}

func TestNewRejectsZeroDenominator(t *testing.T) {
	_, err := NewInt64(1, 0)
	require.ErrorIs(t, err, ErrZeroDenominator)

	_, err = New(big.NewInt(1), nil)
	require.ErrorIs(t, err, ErrZeroDenominator)
}

func TestNegativeDenominatorIsNormalised(t *testing.T) {
	f := mustNew(t, 3, -4)
	require.Equal(t, int64(-3), f.Numerator().Int64())
	require.Equal(t, int64(4), f.Denominator().Int64())
	require.Equal(t, -1, f.Sign())
}

func TestArithmetic(t *testing.T) {
	require.True(t, mustNew(t, 1, 10).Add(mustNew(t, 4, 12)).EqualTo(mustNew(t, 52, 120)))
	require.True(t, mustNew(t, 1, 5).Add(mustNew(t, 2, 5)).EqualTo(mustNew(t, 3, 5)))
	require.True(t, mustNew(t, 1, 10).Sub(mustNew(t, 4, 12)).EqualTo(mustNew(t, -28, 120)))
	require.True(t, mustNew(t, 3, 5).Sub(mustNew(t, 2, 5)).EqualTo(mustNew(t, 1, 5)))
	require.True(t, mustNew(t, 1, 10).Mul(mustNew(t, 4, 12)).EqualTo(mustNew(t, 4, 120)))
	require.True(t, mustNew(t, 2, 3).MulInt(big.NewInt(6)).EqualTo(FromInt64(4)))

	quotient, err := mustNew(t, 1, 10).Div(mustNew(t, 4, 12))
	require.NoError(t, err)
	require.True(t, quotient.EqualTo(mustNew(t, 12, 40)))

	_, err = mustNew(t, 1, 10).Div(FromInt64(0))
	require.ErrorIs(t, err, ErrZeroDenominator)
}

func TestInvert(t *testing.T) {
	inverted, err := mustNew(t, 5, 10).Invert()
	require.NoError(t, err)
	require.True(t, inverted.EqualTo(FromInt64(2)))

	_, err = FromInt64(0).Invert()
	require.ErrorIs(t, err, ErrZeroDenominator)
}

func TestComparisonsIgnoreReduction(t *testing.T) {
	require.True(t, mustNew(t, 1, 2).EqualTo(mustNew(t, 50, 100)))
	require.True(t, mustNew(t, 1, 3).LessThan(mustNew(t, 1, 2)))
	require.True(t, mustNew(t, 2, 3).GreaterThan(mustNew(t, 1, 2)))
	require.True(t, mustNew(t, -1, 2).LessThan(FromInt64(0)))
	require.Equal(t, 0, mustNew(t, 4, 8).Cmp(mustNew(t, -1, -2)))
}

func TestZeroValue(t *testing.T) {
	var f Fraction
	require.True(t, f.IsZero())
	require.Equal(t, int64(1), f.Denominator().Int64())
	require.True(t, f.Add(FromInt64(3)).EqualTo(FromInt64(3)))
}

func TestToSignificant(t *testing.T) {
	cases := []struct {
		name     string
		f        Fraction
		digits   int
		rounding Rounding
		want     string
	}{
		{"round down", mustNew(t, 2, 3), 3, RoundDown, "0.666"},
		{"round half up", mustNew(t, 2, 3), 3, RoundHalfUp, "0.667"},
		{"round up", mustNew(t, 1, 3), 2, RoundUp, "0.34"},
		{"integer", FromInt64(123456), 3, RoundDown, "123000"},
		{"trailing zeros dropped", mustNew(t, 1, 2), 5, RoundDown, "0.5"},
		{"negative", mustNew(t, -2, 3), 3, RoundHalfUp, "-0.667"},
		{"zero", FromInt64(0), 4, RoundDown, "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.f.ToSignificant(tc.digits, tc.rounding)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err := FromInt64(1).ToSignificant(0, RoundDown)
	require.ErrorIs(t, err, ErrInvalidSignificantDigits)
}

func TestToFixed(t *testing.T) {
	got, err := mustNew(t, 2, 3).ToFixed(2, RoundHalfUp)
	require.NoError(t, err)
	require.Equal(t, "0.67", got)

	got, err = mustNew(t, 2, 3).ToFixed(2, RoundDown)
	require.NoError(t, err)
	require.Equal(t, "0.66", got)

	got, err = FromInt64(5).ToFixed(3, RoundDown)
	require.NoError(t, err)
	require.Equal(t, "5.000", got)

	got, err = mustNew(t, -1, 1000).ToFixed(2, RoundDown)
	require.NoError(t, err)
	require.Equal(t, "0.00", got)

	_, err = FromInt64(1).ToFixed(-1, RoundDown)
	require.ErrorIs(t, err, ErrInvalidDecimalPlaces)
}
