package v2pairexchangable

import (
	"math/big"

	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/exchangables"
	"github.com/alexkalak/go_v2_router/common/core/exchangables/exchangableerrors"
)

var minimumLiquidity = big.NewInt(MinimumLiquidity)

// GetLiquidityMinted is the amount of liquidity tokens minted for depositing
// tokenAmountA and tokenAmountB into a pair whose supply is totalSupply.
func (p Pair) GetLiquidityMinted(totalSupply, tokenAmountA, tokenAmountB currency.Amount) (currency.Amount, error) {
	if !totalSupply.Currency().Equals(p.liquidityToken) {
		return currency.Amount{}, exchangableerrors.ErrLiquidityTokenMismatch
	}

	tokenA, okA := tokenAmountA.Token()
	tokenB, okB := tokenAmountB.Token()
	if !okA || !okB {
		return currency.Amount{}, exchangableerrors.ErrTokenNotInPair
	}
	before, err := tokenA.SortsBefore(tokenB)
	if err != nil {
		return currency.Amount{}, err
	}
	if !before {
		tokenAmountA, tokenAmountB = tokenAmountB, tokenAmountA
		tokenA, tokenB = tokenB, tokenA
	}
	if !tokenA.Equals(p.token0) || !tokenB.Equals(p.token1) {
		return currency.Amount{}, exchangableerrors.ErrTokenNotInPair
	}

	amount0, amount1 := tokenAmountA.Raw(), tokenAmountB.Raw()

	var liquidity *big.Int
	if totalSupply.IsZero() {
		liquidity = new(big.Int).Mul(amount0, amount1)
		liquidity.Sqrt(liquidity)
		liquidity.Sub(liquidity, minimumLiquidity)
	} else {
		if exchangables.HasEmptyReserve(p) {
			return currency.Amount{}, exchangableerrors.ErrInsufficientReserves
		}
		supply := totalSupply.Raw()
		liquidity0 := new(big.Int).Mul(amount0, supply)
		liquidity0.Quo(liquidity0, p.reserve0.Raw())
		liquidity1 := new(big.Int).Mul(amount1, supply)
		liquidity1.Quo(liquidity1, p.reserve1.Raw())

		liquidity = liquidity0
		if liquidity1.Cmp(liquidity0) < 0 {
			liquidity = liquidity1
		}
	}

	if liquidity.Sign() <= 0 {
		return currency.Amount{}, exchangableerrors.ErrInsufficientInputAmount
	}

	return currency.NewAmount(p.liquidityToken, liquidity)
}

// GetLiquidityValue is how much of token a holder of liquidity can withdraw. With feeOn
// the supply is first grown by the protocol fee accrued since kLast.
func (p Pair) GetLiquidityValue(token currency.Token, totalSupply, liquidity currency.Amount, feeOn bool, kLast *big.Int) (currency.Amount, error) {
	if !p.InvolvesToken(token) {
		return currency.Amount{}, exchangableerrors.ErrTokenNotInPair
	}
	if !totalSupply.Currency().Equals(p.liquidityToken) || !liquidity.Currency().Equals(p.liquidityToken) {
		return currency.Amount{}, exchangableerrors.ErrLiquidityTokenMismatch
	}
	if liquidity.GreaterThan(totalSupply) {
		return currency.Amount{}, exchangableerrors.ErrLiquidityExceedsSupply
	}

	supply := totalSupply.Raw()
	if feeOn {
		if kLast == nil {
			return currency.Amount{}, exchangableerrors.ErrMissingKLast
		}
		if kLast.Sign() != 0 {
			rootK := new(big.Int).Mul(p.reserve0.Raw(), p.reserve1.Raw())
			rootK.Sqrt(rootK)
			rootKLast := new(big.Int).Sqrt(kLast)

			if rootK.Cmp(rootKLast) > 0 {
				numerator := new(big.Int).Sub(rootK, rootKLast)
				numerator.Mul(numerator, supply)
				denominator := new(big.Int).Mul(rootK, big.NewInt(5))
				denominator.Add(denominator, rootKLast)
				feeLiquidity := numerator.Quo(numerator, denominator)
				supply.Add(supply, feeLiquidity)
			}
		}
	}

	reserve, err := p.ReserveOf(token)
	if err != nil {
		return currency.Amount{}, err
	}
	if supply.Sign() == 0 {
		return currency.NewAmount(token, big.NewInt(0))
	}

	value := new(big.Int).Mul(liquidity.Raw(), reserve.Raw())
	value.Quo(value, supply)

	return currency.NewAmount(token, value)
}
