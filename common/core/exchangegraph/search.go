package exchangegraph

import (
	"slices"

	"github.com/alexkalak/go_v2_router/common/core/coreerrors/exchangegrapherrors"
	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/exchangables"
	"github.com/alexkalak/go_v2_router/common/core/exchangables/exchangableerrors"
	"github.com/alexkalak/go_v2_router/common/core/route"
	"github.com/alexkalak/go_v2_router/common/core/trade"
)

// frame is one level of the depth first search. cursor is the next pair to try, so a
// child frame pushed on top runs to completion before its parent moves on. That keeps
// the visiting order of a recursive walk.
type frame struct {
	pairs   []exchangables.Exchangable
	amount  currency.Amount
	path    []exchangables.Exchangable
	maxHops int
	cursor  int
}

// next pops exhausted frames and returns the top frame with its next pair.
func next(stack []*frame) ([]*frame, *frame, exchangables.Exchangable) {
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.cursor < len(top.pairs) {
			pair := top.pairs[top.cursor]
			top.cursor++
			return stack, top, pair
		}
		stack = stack[:len(stack)-1]
	}
	return stack, nil, nil
}

// without returns a copy of pairs missing the element the frame just used.
func (f *frame) without() []exchangables.Exchangable {
	i := f.cursor - 1
	return slices.Concat(f.pairs[:i], f.pairs[i+1:])
}

func chainIDOf(primary, secondary currency.Currency) (currency.ChainID, error) {
	if token, ok := primary.(currency.Token); ok {
		return token.ChainID(), nil
	}
	if token, ok := secondary.(currency.Token); ok {
		return token.ChainID(), nil
	}
	return 0, exchangegrapherrors.ErrChainIDUnknown
}

func usable(pair exchangables.Exchangable, frontier currency.Token) bool {
	return pair.InvolvesToken(frontier) && !exchangables.HasEmptyReserve(pair)
}

// BestTradeExactIn returns up to maxNumResults trades spending exactly amountIn for
// currencyOut, best first. Routes never reuse a pair and have at most maxHops pairs.
func BestTradeExactIn(pairs []exchangables.Exchangable, amountIn currency.Amount, currencyOut currency.Currency, opts ...Option) ([]*trade.Trade, error) {
	o, err := newSearchOptions(opts)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, exchangegrapherrors.ErrNoPairs
	}

	chainID, err := chainIDOf(amountIn.Currency(), currencyOut)
	if err != nil {
		return nil, err
	}
	wrappedIn, err := amountIn.Wrap(chainID)
	if err != nil {
		return nil, err
	}
	tokenOut, err := currency.Wrap(currencyOut, chainID)
	if err != nil {
		return nil, err
	}

	bestTrades := make([]*trade.Trade, 0, o.maxNumResults+1)
	stack := []*frame{{pairs: pairs, amount: wrappedIn, maxHops: o.maxHops}}

	for {
		var top *frame
		var pair exchangables.Exchangable
		stack, top, pair = next(stack)
		if top == nil {
			break
		}

		frontier, _ := top.amount.Token()
		if !usable(pair, frontier) {
			continue
		}

		amountOut, _, err := pair.GetOutputAmount(top.amount)
		if err != nil {
			if exchangableerrors.IsLiquidityError(err) {
				continue
			}
			return nil, err
		}

		path := append(slices.Clone(top.path), pair)
		if token, _ := amountOut.Token(); token.Equals(tokenOut) {
			r, err := route.New(path, amountIn.Currency(), currencyOut)
			if err != nil {
				return nil, err
			}
			t, err := trade.ExactIn(r, amountIn)
			if err != nil {
				return nil, err
			}
			bestTrades, err = sortedInsert(bestTrades, t, o.maxNumResults, trade.TradeComparator)
			if err != nil {
				return nil, err
			}
			continue
		}

		if top.maxHops > 1 && len(top.pairs) > 1 {
			stack = append(stack, &frame{
				pairs:   top.without(),
				amount:  amountOut,
				path:    path,
				maxHops: top.maxHops - 1,
			})
		}
	}

	return bestTrades, nil
}

// BestTradeExactOut returns up to maxNumResults trades buying exactly amountOut with
// currencyIn, best first. The search walks backwards from the output.
func BestTradeExactOut(pairs []exchangables.Exchangable, currencyIn currency.Currency, amountOut currency.Amount, opts ...Option) ([]*trade.Trade, error) {
	o, err := newSearchOptions(opts)
	if err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, exchangegrapherrors.ErrNoPairs
	}

	chainID, err := chainIDOf(amountOut.Currency(), currencyIn)
	if err != nil {
		return nil, err
	}
	wrappedOut, err := amountOut.Wrap(chainID)
	if err != nil {
		return nil, err
	}
	tokenIn, err := currency.Wrap(currencyIn, chainID)
	if err != nil {
		return nil, err
	}

	bestTrades := make([]*trade.Trade, 0, o.maxNumResults+1)
	stack := []*frame{{pairs: pairs, amount: wrappedOut, maxHops: o.maxHops}}

	for {
		var top *frame
		var pair exchangables.Exchangable
		stack, top, pair = next(stack)
		if top == nil {
			break
		}

		frontier, _ := top.amount.Token()
		if !usable(pair, frontier) {
			continue
		}

		amountIn, _, err := pair.GetInputAmount(top.amount)
		if err != nil {
			if exchangableerrors.IsLiquidityError(err) {
				continue
			}
			return nil, err
		}

		path := append([]exchangables.Exchangable{pair}, top.path...)
		if token, _ := amountIn.Token(); token.Equals(tokenIn) {
			r, err := route.New(path, currencyIn, amountOut.Currency())
			if err != nil {
				return nil, err
			}
			t, err := trade.ExactOut(r, amountOut)
			if err != nil {
				return nil, err
			}
			bestTrades, err = sortedInsert(bestTrades, t, o.maxNumResults, trade.TradeComparator)
			if err != nil {
				return nil, err
			}
			continue
		}

		if top.maxHops > 1 && len(top.pairs) > 1 {
			stack = append(stack, &frame{
				pairs:   top.without(),
				amount:  amountIn,
				path:    path,
				maxHops: top.maxHops - 1,
			})
		}
	}

	return bestTrades, nil
}
