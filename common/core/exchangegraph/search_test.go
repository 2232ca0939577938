package exchangegraph

import (
	"math/big"
	"testing"

	"github.com/alexkalak/go_v2_router/common/core/coreerrors/exchangegrapherrors"
	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/exchangables"
	"github.com/alexkalak/go_v2_router/common/core/exchangables/v2pairexchangable"
	"github.com/alexkalak/go_v2_router/common/core/trade"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	token0, token1, token2, token3 currency.Token
	weth                           currency.Token

	pair01, pair02, pair03, pair12, pair13 exchangables.Exchangable
	pairWeth0, emptyPair01                 exchangables.Exchangable
}

func newToken(t *testing.T, address, symbol string) currency.Token {
	t.Helper()
	token, err := currency.NewToken(currency.Mainnet, common.HexToAddress(address), 18, symbol, symbol)
	require.NoError(t, err)
	return token
}

func amount(t *testing.T, c currency.Currency, raw int64) currency.Amount {
	t.Helper()
	a, err := currency.NewAmount(c, big.NewInt(raw))
	require.NoError(t, err)
	return a
}

func newPair(t *testing.T, a currency.Token, reserveA int64, b currency.Token, reserveB int64) exchangables.Exchangable {
	t.Helper()
	p, err := v2pairexchangable.New(amount(t, a, reserveA), amount(t, b, reserveB))
	require.NoError(t, err)
	return p
}

func newFixture(t *testing.T) fixture {
	f := fixture{
		token0: newToken(t, "0x0000000000000000000000000000000000000001", "T0"),
		token1: newToken(t, "0x0000000000000000000000000000000000000002", "T1"),
		token2: newToken(t, "0x0000000000000000000000000000000000000003", "T2"),
		token3: newToken(t, "0x0000000000000000000000000000000000000004", "T3"),
		weth:   currency.WETH[currency.Mainnet],
	}
	f.pair01 = newPair(t, f.token0, 1000, f.token1, 1000)
	f.pair02 = newPair(t, f.token0, 1000, f.token2, 1100)
	f.pair03 = newPair(t, f.token0, 1000, f.token3, 900)
	f.pair12 = newPair(t, f.token1, 1200, f.token2, 1000)
	f.pair13 = newPair(t, f.token1, 1200, f.token3, 1300)
	f.pairWeth0 = newPair(t, f.weth, 1000, f.token0, 1000)
	f.emptyPair01 = newPair(t, f.token0, 0, f.token1, 0)
	return f
}

func pairs(p ...exchangables.Exchangable) []exchangables.Exchangable {
	return p
}

func requirePath(t *testing.T, tr *trade.Trade, want ...currency.Token) {
	t.Helper()
	require.Equal(t, want, tr.Route().Path())
}

func TestBestTradeExactIn(t *testing.T) {
	f := newFixture(t)

	t.Run("empty pairs", func(t *testing.T) {
		_, err := BestTradeExactIn(nil, amount(t, f.token0, 100), f.token2)
		require.ErrorIs(t, err, exchangegrapherrors.ErrNoPairs)
	})

	t.Run("zero max hops", func(t *testing.T) {
		_, err := BestTradeExactIn(pairs(f.pair01), amount(t, f.token0, 100), f.token2, WithMaxHops(0))
		require.ErrorIs(t, err, exchangegrapherrors.ErrInvalidMaxHops)
	})

	t.Run("zero max results", func(t *testing.T) {
		_, err := BestTradeExactIn(pairs(f.pair01), amount(t, f.token0, 100), f.token2, WithMaxNumResults(0))
		require.ErrorIs(t, err, exchangegrapherrors.ErrInvalidMaxNumResults)
	})

	t.Run("best route first", func(t *testing.T) {
		result, err := BestTradeExactIn(pairs(f.pair01, f.pair02, f.pair12), amount(t, f.token0, 100), f.token2)
		require.NoError(t, err)
		require.Len(t, result, 2)

		require.Len(t, result[0].Route().Pairs(), 1)
		requirePath(t, result[0], f.token0, f.token2)
		require.Equal(t, int64(100), result[0].InputAmount().Raw().Int64())
		require.Equal(t, int64(99), result[0].OutputAmount().Raw().Int64())

		require.Len(t, result[1].Route().Pairs(), 2)
		requirePath(t, result[1], f.token0, f.token1, f.token2)
		require.Equal(t, int64(100), result[1].InputAmount().Raw().Int64())
		require.Equal(t, int64(69), result[1].OutputAmount().Raw().Int64())
	})

	t.Run("zero liquidity pairs are skipped", func(t *testing.T) {
		result, err := BestTradeExactIn(pairs(f.emptyPair01), amount(t, f.token0, 100), f.token1)
		require.NoError(t, err)
		require.Empty(t, result)
	})

	t.Run("max hops", func(t *testing.T) {
		result, err := BestTradeExactIn(pairs(f.pair01, f.pair02, f.pair12), amount(t, f.token0, 10), f.token2, WithMaxHops(1))
		require.NoError(t, err)
		require.Len(t, result, 1)
		require.Equal(t, f.pair02.Address(), result[0].Route().Pairs()[0].Address())
	})

	t.Run("insufficient input for one pair", func(t *testing.T) {
		result, err := BestTradeExactIn(pairs(f.pair01, f.pair02, f.pair12), amount(t, f.token0, 1), f.token2)
		require.NoError(t, err)
		require.Len(t, result, 1)
		requirePath(t, result[0], f.token0, f.token2)
		require.Equal(t, int64(1), result[0].OutputAmount().Raw().Int64())
	})

	t.Run("max results", func(t *testing.T) {
		result, err := BestTradeExactIn(pairs(f.pair01, f.pair02, f.pair12), amount(t, f.token0, 10), f.token2, WithMaxNumResults(1))
		require.NoError(t, err)
		require.Len(t, result, 1)
	})

	t.Run("no path", func(t *testing.T) {
		result, err := BestTradeExactIn(pairs(f.pair01, f.pair03, f.pair13), amount(t, f.token0, 10), f.token2)
		require.NoError(t, err)
		require.Empty(t, result)
	})

	t.Run("ether input", func(t *testing.T) {
		result, err := BestTradeExactIn(pairs(f.pairWeth0, f.pair01, f.pair03, f.pair13), amount(t, currency.Ether, 100), f.token3)
		require.NoError(t, err)
		require.Len(t, result, 2)
		require.True(t, result[0].InputAmount().IsNative())
		requirePath(t, result[0], f.weth, f.token0, f.token1, f.token3)
		require.True(t, result[0].OutputAmount().Currency().Equals(f.token3))
		require.True(t, result[1].InputAmount().IsNative())
		requirePath(t, result[1], f.weth, f.token0, f.token3)
	})

	t.Run("ether output", func(t *testing.T) {
		result, err := BestTradeExactIn(pairs(f.pairWeth0, f.pair01, f.pair03, f.pair13), amount(t, f.token3, 100), currency.Ether)
		require.NoError(t, err)
		require.Len(t, result, 2)
		requirePath(t, result[0], f.token3, f.token0, f.weth)
		require.True(t, result[0].OutputAmount().IsNative())
		requirePath(t, result[1], f.token3, f.token1, f.token0, f.weth)
		require.True(t, result[1].OutputAmount().IsNative())
	})

	t.Run("native on both sides", func(t *testing.T) {
		_, err := BestTradeExactIn(pairs(f.pairWeth0), amount(t, currency.Ether, 100), currency.Ether)
		require.ErrorIs(t, err, exchangegrapherrors.ErrChainIDUnknown)
	})
}

func TestBestTradeExactOut(t *testing.T) {
	f := newFixture(t)

	t.Run("empty pairs", func(t *testing.T) {
		_, err := BestTradeExactOut(nil, f.token0, amount(t, f.token2, 100))
		require.ErrorIs(t, err, exchangegrapherrors.ErrNoPairs)
	})

	t.Run("zero max hops", func(t *testing.T) {
		_, err := BestTradeExactOut(pairs(f.pair01), f.token0, amount(t, f.token2, 100), WithMaxHops(0))
		require.ErrorIs(t, err, exchangegrapherrors.ErrInvalidMaxHops)
	})

	t.Run("best route first", func(t *testing.T) {
		result, err := BestTradeExactOut(pairs(f.pair01, f.pair02, f.pair12), f.token0, amount(t, f.token2, 100))
		require.NoError(t, err)
		require.Len(t, result, 2)

		require.Len(t, result[0].Route().Pairs(), 1)
		requirePath(t, result[0], f.token0, f.token2)
		require.Equal(t, int64(101), result[0].InputAmount().Raw().Int64())
		require.Equal(t, int64(100), result[0].OutputAmount().Raw().Int64())

		require.Len(t, result[1].Route().Pairs(), 2)
		requirePath(t, result[1], f.token0, f.token1, f.token2)
		require.Equal(t, int64(156), result[1].InputAmount().Raw().Int64())
		require.Equal(t, int64(100), result[1].OutputAmount().Raw().Int64())
	})

	t.Run("zero liquidity pairs are skipped", func(t *testing.T) {
		result, err := BestTradeExactOut(pairs(f.emptyPair01), f.token1, amount(t, f.token1, 100))
		require.NoError(t, err)
		require.Empty(t, result)
	})

	t.Run("max hops", func(t *testing.T) {
		result, err := BestTradeExactOut(pairs(f.pair01, f.pair02, f.pair12), f.token0, amount(t, f.token2, 10), WithMaxHops(1))
		require.NoError(t, err)
		require.Len(t, result, 1)
		requirePath(t, result[0], f.token0, f.token2)
	})

	t.Run("insufficient liquidity everywhere", func(t *testing.T) {
		result, err := BestTradeExactOut(pairs(f.pair01, f.pair02, f.pair12), f.token0, amount(t, f.token2, 1200))
		require.NoError(t, err)
		require.Empty(t, result)
	})

	t.Run("insufficient liquidity in one pair", func(t *testing.T) {
		result, err := BestTradeExactOut(pairs(f.pair01, f.pair02, f.pair12), f.token0, amount(t, f.token2, 1050))
		require.NoError(t, err)
		require.Len(t, result, 1)
	})

	t.Run("max results", func(t *testing.T) {
		result, err := BestTradeExactOut(pairs(f.pair01, f.pair02, f.pair12), f.token0, amount(t, f.token2, 10), WithMaxNumResults(1))
		require.NoError(t, err)
		require.Len(t, result, 1)
	})

	t.Run("no path", func(t *testing.T) {
		result, err := BestTradeExactOut(pairs(f.pair01, f.pair03, f.pair13), f.token0, amount(t, f.token2, 10))
		require.NoError(t, err)
		require.Empty(t, result)
	})

	t.Run("ether input", func(t *testing.T) {
		result, err := BestTradeExactOut(pairs(f.pairWeth0, f.pair01, f.pair03, f.pair13), currency.Ether, amount(t, f.token3, 100))
		require.NoError(t, err)
		require.Len(t, result, 2)
		require.True(t, result[0].InputAmount().IsNative())
		requirePath(t, result[0], f.weth, f.token0, f.token1, f.token3)
		requirePath(t, result[1], f.weth, f.token0, f.token3)
	})

	t.Run("ether output", func(t *testing.T) {
		result, err := BestTradeExactOut(pairs(f.pairWeth0, f.pair01, f.pair03, f.pair13), f.token3, amount(t, currency.Ether, 100))
		require.NoError(t, err)
		require.Len(t, result, 2)
		require.True(t, result[0].OutputAmount().IsNative())
		requirePath(t, result[0], f.token3, f.token0, f.weth)
		requirePath(t, result[1], f.token3, f.token1, f.token0, f.weth)
	})
}

func TestBestTradeResultsAreRanked(t *testing.T) {
	f := newFixture(t)
	all := pairs(f.pair01, f.pair02, f.pair03, f.pair12, f.pair13, f.pairWeth0)

	for _, maxResults := range []int{1, 2, 3, 10} {
		result, err := BestTradeExactIn(all, amount(t, f.token0, 50), f.token3, WithMaxNumResults(maxResults))
		require.NoError(t, err)
		require.LessOrEqual(t, len(result), maxResults)

		for i := 1; i < len(result); i++ {
			c, err := trade.TradeComparator(result[i-1], result[i])
			require.NoError(t, err)
			require.LessOrEqual(t, c, 0)
		}
		for _, tr := range result {
			require.LessOrEqual(t, tr.Route().Hops(), DefaultMaxHops)
		}
	}

	first, err := BestTradeExactIn(all, amount(t, f.token0, 50), f.token3)
	require.NoError(t, err)
	second, err := BestTradeExactIn(all, amount(t, f.token0, 50), f.token3)
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i].Route().Path(), second[i].Route().Path())
	}
}
