package v2pairexchangable

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/exchangables/exchangableerrors"
	"github.com/alexkalak/go_v2_router/common/models"
	"github.com/ethereum/go-ethereum/common"
)

func TokenFromModel(token *models.Token) (currency.Token, error) {
	if token == nil {
		return currency.Token{}, exchangableerrors.ErrInvalidArgsOnExchangablePair
	}
	if !common.IsHexAddress(token.Address) {
		return currency.Token{}, fmt.Errorf("invalid token address %q", token.Address)
	}
	if token.Decimals < 0 || token.Decimals > 254 {
		return currency.Token{}, fmt.Errorf("token %s: invalid decimals %d", token.Address, token.Decimals)
	}

	return currency.NewToken(
		currency.ChainID(token.ChainID),
		common.HexToAddress(token.Address),
		uint8(token.Decimals),
		token.Symbol,
		token.Name,
	)
}

// NewFromModel turns a stored reserve snapshot into a Pair. The pair's tokens must be
// token0 and token1 in either order. A valid stored address replaces the CREATE2 one,
// so pairs of forked factories keep their own address.
func NewFromModel(pair *models.UniswapV2Pair, token0 *models.Token, token1 *models.Token) (Pair, error) {
	if pair == nil || token0 == nil || token1 == nil {
		return Pair{}, exchangableerrors.ErrInvalidArgsOnExchangablePair
	}
	if !strings.EqualFold(pair.Token0, token0.Address) {
		token0, token1 = token1, token0
	}
	if !strings.EqualFold(pair.Token0, token0.Address) || !strings.EqualFold(pair.Token1, token1.Address) {
		return Pair{}, fmt.Errorf("%w: pair %s", exchangableerrors.ErrTokenNotInPair, pair.Address)
	}

	t0, err := TokenFromModel(token0)
	if err != nil {
		return Pair{}, err
	}
	t1, err := TokenFromModel(token1)
	if err != nil {
		return Pair{}, err
	}

	amount0, err := currency.NewAmount(t0, orZero(pair.Amount0))
	if err != nil {
		return Pair{}, err
	}
	amount1, err := currency.NewAmount(t1, orZero(pair.Amount1))
	if err != nil {
		return Pair{}, err
	}

	p, err := New(amount0, amount1)
	if err != nil {
		return Pair{}, err
	}
	if common.IsHexAddress(pair.Address) {
		p.liquidityToken, err = currency.NewToken(p.ChainID(), common.HexToAddress(pair.Address), 18, "UNI-V2", "Uniswap V2")
		if err != nil {
			return Pair{}, err
		}
	}

	return p, nil
}

// ToModel is the stored form of p at blockNumber.
func (p Pair) ToModel(exchangeName string, blockNumber uint64) models.UniswapV2Pair {
	return models.UniswapV2Pair{
		Address:      p.Address().Hex(),
		ExchangeName: exchangeName,
		ChainID:      uint(p.ChainID()),
		Token0:       p.token0.Address().Hex(),
		Token1:       p.token1.Address().Hex(),
		Amount0:      p.reserve0.Raw(),
		Amount1:      p.reserve1.Raw(),
		BlockNumber:  blockNumber,
	}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
