package currency

import (
	"math/big"
	"testing"

	"github.com/alexkalak/go_v2_router/common/core/coreerrors/currencyerrors"
	"github.com/alexkalak/go_v2_router/common/core/fraction"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/require"
)

func testToken(t *testing.T, chainID ChainID, address string, decimals uint8) Token {
	t.Helper()
	token, err := NewToken(chainID, common.HexToAddress(address), decimals, "T", "Test")
	require.NoError(t, err)
	return token
}

func testAmount(t *testing.T, c Currency, raw int64) Amount {
	t.Helper()
	a, err := NewAmount(c, big.NewInt(raw))
	require.NoError(t, err)
	return a
}

const (
	addrA = "0x0000000000000000000000000000000000000001"
	addrB = "0x0000000000000000000000000000000000000002"
)

func TestTokenEquality(t *testing.T) {
	a := testToken(t, Mainnet, addrA, 18)
	sameAddressOtherMeta, err := NewToken(Mainnet, common.HexToAddress(addrA), 6, "X", "Other")
	require.NoError(t, err)

	require.True(t, a.Equals(sameAddressOtherMeta))
	require.False(t, a.Equals(testToken(t, Goerli, addrA, 18)))
	require.False(t, a.Equals(testToken(t, Mainnet, addrB, 18)))
	require.False(t, a.Equals(Ether))
	require.False(t, Ether.Equals(a))
	require.True(t, Ether.Equals(NativeCurrency{}))
}

func TestSortsBefore(t *testing.T) {
	a := testToken(t, Mainnet, addrA, 18)
	b := testToken(t, Mainnet, addrB, 18)

	before, err := a.SortsBefore(b)
	require.NoError(t, err)
	require.True(t, before)

	before, err = b.SortsBefore(a)
	require.NoError(t, err)
	require.False(t, before)

	_, err = a.SortsBefore(a)
	require.ErrorIs(t, err, currencyerrors.ErrSameAddress)

	_, err = a.SortsBefore(testToken(t, Goerli, addrB, 18))
	require.ErrorIs(t, err, currencyerrors.ErrChainIDMismatch)
}

func TestWrap(t *testing.T) {
	weth, err := Wrap(Ether, Mainnet)
	require.NoError(t, err)
	require.True(t, weth.Equals(WETH[Mainnet]))

	token := testToken(t, Mainnet, addrA, 18)
	wrapped, err := Wrap(token, Mainnet)
	require.NoError(t, err)
	require.True(t, wrapped.Equals(token))

	_, err = Wrap(Ether, ChainID(999))
	require.ErrorIs(t, err, currencyerrors.ErrNoWrappedToken)

	amount, err := testAmount(t, Ether, 7).Wrap(Goerli)
	require.NoError(t, err)
	require.True(t, amount.Currency().Equals(WETH[Goerli]))
	require.Equal(t, int64(7), amount.Raw().Int64())
}

func TestNewAmountBounds(t *testing.T) {
	token := testToken(t, Mainnet, addrA, 18)

	_, err := NewAmount(token, big.NewInt(-1))
	require.ErrorIs(t, err, currencyerrors.ErrNegativeAmount)

	_, err = NewAmount(token, new(big.Int).Add(math.MaxBig256, big.NewInt(1)))
	require.ErrorIs(t, err, currencyerrors.ErrAmountOverflow)

	maxAmount, err := NewAmount(token, math.MaxBig256)
	require.NoError(t, err)
	_, err = maxAmount.Add(testAmount(t, token, 1))
	require.ErrorIs(t, err, currencyerrors.ErrAmountOverflow)
}

func TestAmountArithmetic(t *testing.T) {
	a := testToken(t, Mainnet, addrA, 18)
	b := testToken(t, Mainnet, addrB, 18)

	sum, err := testAmount(t, a, 5).Add(testAmount(t, a, 7))
	require.NoError(t, err)
	require.Equal(t, int64(12), sum.Raw().Int64())

	_, err = testAmount(t, a, 5).Add(testAmount(t, b, 7))
	require.ErrorIs(t, err, currencyerrors.ErrCurrencyMismatch)

	_, err = testAmount(t, a, 5).Sub(testAmount(t, a, 7))
	require.ErrorIs(t, err, currencyerrors.ErrNegativeAmount)

	require.True(t, testAmount(t, a, 5).LessThan(testAmount(t, a, 6)))
	require.True(t, testAmount(t, a, 0).IsZero())
}

func TestZeroValueAmountArithmetic(t *testing.T) {
	a := testAmount(t, testToken(t, Mainnet, addrA, 18), 5)

	_, err := Amount{}.Add(a)
	require.ErrorIs(t, err, currencyerrors.ErrCurrencyMismatch)
	_, err = a.Add(Amount{})
	require.ErrorIs(t, err, currencyerrors.ErrCurrencyMismatch)
	_, err = Amount{}.Sub(Amount{})
	require.ErrorIs(t, err, currencyerrors.ErrCurrencyMismatch)
}

func TestAmountRaw(t *testing.T) {
	token := testToken(t, Mainnet, addrA, 18)
	amount := testAmount(t, token, 10)

	raw := amount.Raw()
	raw.SetInt64(99)
	require.Equal(t, int64(10), amount.Raw().Int64(), "Raw returns a copy")
}

func TestAmountFormatting(t *testing.T) {
	usdc := testToken(t, Mainnet, addrA, 6)
	amount := testAmount(t, usdc, 123456789)

	require.Equal(t, "123.456789", amount.ToExact())

	fixed, err := amount.ToFixed(2, fraction.RoundDown)
	require.NoError(t, err)
	require.Equal(t, "123.45", fixed)

	significant, err := amount.ToSignificant(4, fraction.RoundHalfUp)
	require.NoError(t, err)
	require.Equal(t, "123.5", significant)

	_, err = amount.ToFixed(7, fraction.RoundDown)
	require.ErrorIs(t, err, fraction.ErrInvalidDecimalPlaces)

	wei := testAmount(t, Ether, 1000000000000000000)
	require.Equal(t, "1", wei.ToExact())
	require.Equal(t, "1 ETH", wei.String())
}

func TestPrice(t *testing.T) {
	dai := testToken(t, Mainnet, addrA, 18)
	usdc := testToken(t, Mainnet, addrB, 6)

	// 1 DAI (1e18 raw) buys 1 USDC (1e6 raw)
	price, err := NewPrice(dai, usdc, big.NewInt(1000000000000000000), big.NewInt(1000000))
	require.NoError(t, err)

	adjusted, err := price.ToSignificant(5, fraction.RoundDown)
	require.NoError(t, err)
	require.Equal(t, "1", adjusted)

	inverted, err := price.Invert()
	require.NoError(t, err)
	require.True(t, inverted.BaseCurrency().Equals(usdc))
	require.True(t, inverted.QuoteCurrency().Equals(dai))
	invertedStr, err := inverted.ToSignificant(5, fraction.RoundDown)
	require.NoError(t, err)
	require.Equal(t, "1", invertedStr)

	quoted, err := price.Quote(testAmount(t, dai, 2000000000000000000))
	require.NoError(t, err)
	require.True(t, quoted.Currency().Equals(usdc))
	require.Equal(t, int64(2000000), quoted.Raw().Int64())

	_, err = price.Quote(testAmount(t, usdc, 1))
	require.ErrorIs(t, err, currencyerrors.ErrCurrencyMismatch)

	_, err = NewPrice(dai, usdc, big.NewInt(0), big.NewInt(1))
	require.ErrorIs(t, err, currencyerrors.ErrZeroPriceDenominator)
}

func TestPriceMultiply(t *testing.T) {
	a := testToken(t, Mainnet, addrA, 18)
	b := testToken(t, Mainnet, addrB, 18)
	c := testToken(t, Mainnet, "0x0000000000000000000000000000000000000003", 18)

	ab, err := NewPrice(a, b, big.NewInt(1), big.NewInt(2))
	require.NoError(t, err)
	bc, err := NewPrice(b, c, big.NewInt(1), big.NewInt(3))
	require.NoError(t, err)

	ac, err := ab.Multiply(bc)
	require.NoError(t, err)
	require.True(t, ac.BaseCurrency().Equals(a))
	require.True(t, ac.QuoteCurrency().Equals(c))
	require.True(t, ac.Raw().EqualTo(fraction.FromInt64(6)))

	_, err = bc.Multiply(ab)
	require.ErrorIs(t, err, currencyerrors.ErrCurrencyMismatch)
}

func TestPercent(t *testing.T) {
	half := PercentFromBasisPoints(50)
	s, err := half.ToSignificant(2, fraction.RoundDown)
	require.NoError(t, err)
	require.Equal(t, "0.5", s)

	fixed, err := half.ToFixed(2, fraction.RoundDown)
	require.NoError(t, err)
	require.Equal(t, "0.50", fixed)

	p, err := NewPercent(big.NewInt(1), big.NewInt(3))
	require.NoError(t, err)
	fixed, err = p.ToFixed(2, fraction.RoundHalfUp)
	require.NoError(t, err)
	require.Equal(t, "33.33", fixed)
}
