package exchangegraph

import (
	"fmt"
	"sync"

	"github.com/alexkalak/go_v2_router/common/core/coreerrors/exchangegrapherrors"
	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/exchangables"
	"github.com/alexkalak/go_v2_router/common/core/trade"
	"github.com/ethereum/go-ethereum/common"
)

// ExchangesGraph is the live pair set of one chain. Searches run on a copy of the
// pairs taken under a read lock, so reserve updates never block a running search.
type ExchangesGraph interface {
	ChainID() currency.ChainID
	Len() int
	GetExchangables() []exchangables.Exchangable
	GetToken(address common.Address) (currency.Token, error)
	UpdateExchangable(exchangableIdentifier string, exchangable exchangables.Exchangable) error

	BestTradeExactIn(amountIn currency.Amount, currencyOut currency.Currency, opts ...Option) ([]*trade.Trade, error)
	BestTradeExactOut(currencyIn currency.Currency, amountOut currency.Amount, opts ...Option) ([]*trade.Trade, error)
}

type exchangesGraph struct {
	mu                 sync.RWMutex
	chainID            currency.ChainID
	tokens             map[common.Address]currency.Token
	exchangableIndexes map[string]int
	exchangablesArray  []exchangables.Exchangable
}

// New all the exchangables must be on chainID
func New(chainID currency.ChainID, arrayOfExchangables []exchangables.Exchangable) (ExchangesGraph, error) {
	res := exchangesGraph{
		chainID:            chainID,
		tokens:             map[common.Address]currency.Token{},
		exchangableIndexes: map[string]int{},
		exchangablesArray:  make([]exchangables.Exchangable, 0, len(arrayOfExchangables)),
	}

	for _, exchangable := range arrayOfExchangables {
		if exchangable.ChainID() != chainID {
			return nil, fmt.Errorf("%w: %s", exchangegrapherrors.ErrPairChainMismatch, exchangable.GetIdentifier())
		}
		if _, ok := res.exchangableIndexes[exchangable.GetIdentifier()]; ok {
			continue
		}

		res.exchangableIndexes[exchangable.GetIdentifier()] = len(res.exchangablesArray)
		res.exchangablesArray = append(res.exchangablesArray, exchangable)
		res.tokens[exchangable.Token0().Address()] = exchangable.Token0()
		res.tokens[exchangable.Token1().Address()] = exchangable.Token1()
	}

	return &res, nil
}

func (g *exchangesGraph) ChainID() currency.ChainID {
	return g.chainID
}

func (g *exchangesGraph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.exchangablesArray)
}

func (g *exchangesGraph) GetExchangables() []exchangables.Exchangable {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return append([]exchangables.Exchangable(nil), g.exchangablesArray...)
}

func (g *exchangesGraph) GetToken(address common.Address) (currency.Token, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if token, ok := g.tokens[address]; ok {
		return token, nil
	}
	return currency.Token{}, fmt.Errorf("%w: %s", exchangegrapherrors.ErrTokenNotFoundInGraph, address.Hex())
}

func (g *exchangesGraph) UpdateExchangable(exchangableIdentifier string, exchangable exchangables.Exchangable) error {
	if exchangable.ChainID() != g.chainID {
		return exchangegrapherrors.ErrPairChainMismatch
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	index, ok := g.exchangableIndexes[exchangableIdentifier]
	if !ok {
		return fmt.Errorf("%w: %s", exchangegrapherrors.ErrExchangableNotFound, exchangableIdentifier)
	}

	g.exchangablesArray[index] = exchangable

	return nil
}

func (g *exchangesGraph) BestTradeExactIn(amountIn currency.Amount, currencyOut currency.Currency, opts ...Option) ([]*trade.Trade, error) {
	return BestTradeExactIn(g.GetExchangables(), amountIn, currencyOut, opts...)
}

func (g *exchangesGraph) BestTradeExactOut(currencyIn currency.Currency, amountOut currency.Amount, opts ...Option) ([]*trade.Trade, error) {
	return BestTradeExactOut(g.GetExchangables(), currencyIn, amountOut, opts...)
}
