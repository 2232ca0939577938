// Package trade quotes a swap along a route: amounts on both ends, execution price,
// price impact and slippage bounds.
package trade

import (
	"fmt"

	"github.com/alexkalak/go_v2_router/common/core/coreerrors/tradeerrors"
	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/exchangables"
	"github.com/alexkalak/go_v2_router/common/core/fraction"
	"github.com/alexkalak/go_v2_router/common/core/route"
)

type TradeType int

const (
	ExactInput TradeType = iota
	ExactOutput
)

func (t TradeType) String() string {
	switch t {
	case ExactInput:
		return "EXACT_INPUT"
	case ExactOutput:
		return "EXACT_OUTPUT"
	default:
		return fmt.Sprintf("TradeType(%d)", int(t))
	}
}

type Trade struct {
	route          *route.Route
	tradeType      TradeType
	inputAmount    currency.Amount
	outputAmount   currency.Amount
	executionPrice currency.Price
	nextMidPrice   currency.Price
	priceImpact    currency.Percent
}

func ExactIn(r *route.Route, amountIn currency.Amount) (*Trade, error) {
	return New(r, amountIn, ExactInput)
}

func ExactOut(r *route.Route, amountOut currency.Amount) (*Trade, error) {
	return New(r, amountOut, ExactOutput)
}

// New walks amount through r: forward for ExactInput, backward for ExactOutput.
// Liquidity errors of the pairs are returned as is.
func New(r *route.Route, amount currency.Amount, tradeType TradeType) (*Trade, error) {
	pairs := r.Pairs()
	amounts := make([]currency.Amount, len(pairs)+1)
	nextPairs := make([]exchangables.Exchangable, len(pairs))

	switch {
	case tradeType == ExactInput && !amount.Currency().Equals(r.Input()):
		return nil, tradeerrors.ErrInputCurrencyMismatch
	case tradeType == ExactOutput && !amount.Currency().Equals(r.Output()):
		return nil, tradeerrors.ErrOutputCurrencyMismatch
	}

	wrapped, err := amount.Wrap(r.ChainID())
	if err != nil {
		return nil, err
	}

	switch tradeType {
	case ExactInput:
		amounts[0] = wrapped
		for i, pair := range pairs {
			out, next, err := pair.GetOutputAmount(amounts[i])
			if err != nil {
				return nil, err
			}
			amounts[i+1] = out
			nextPairs[i] = next
		}
	case ExactOutput:
		amounts[len(amounts)-1] = wrapped
		for i := len(pairs); i > 0; i-- {
			in, next, err := pairs[i-1].GetInputAmount(amounts[i])
			if err != nil {
				return nil, err
			}
			amounts[i-1] = in
			nextPairs[i-1] = next
		}
	default:
		return nil, tradeerrors.ErrUnknownTradeType
	}

	inputAmount, err := currency.NewAmount(r.Input(), amounts[0].Raw())
	if err != nil {
		return nil, err
	}
	outputAmount, err := currency.NewAmount(r.Output(), amounts[len(amounts)-1].Raw())
	if err != nil {
		return nil, err
	}

	executionPrice, err := currency.NewPrice(r.Input(), r.Output(), inputAmount.Raw(), outputAmount.Raw())
	if err != nil {
		return nil, err
	}

	nextRoute, err := route.New(nextPairs, r.Input(), nil)
	if err != nil {
		return nil, err
	}

	priceImpact, err := computePriceImpact(r.MidPrice(), inputAmount, outputAmount)
	if err != nil {
		return nil, err
	}

	return &Trade{
		route:          r,
		tradeType:      tradeType,
		inputAmount:    inputAmount,
		outputAmount:   outputAmount,
		executionPrice: executionPrice,
		nextMidPrice:   nextRoute.MidPrice(),
		priceImpact:    priceImpact,
	}, nil
}

// computePriceImpact is (quote at mid price - actual output) / quote at mid price.
func computePriceImpact(midPrice currency.Price, inputAmount, outputAmount currency.Amount) (currency.Percent, error) {
	exactQuote := midPrice.Raw().MulInt(inputAmount.Raw())
	slippage, err := exactQuote.Sub(outputAmount.Fraction()).Div(exactQuote)
	if err != nil {
		return currency.Percent{}, err
	}
	return currency.PercentFromFraction(slippage), nil
}

func (t *Trade) Route() *route.Route            { return t.route }
func (t *Trade) TradeType() TradeType           { return t.tradeType }
func (t *Trade) InputAmount() currency.Amount   { return t.inputAmount }
func (t *Trade) OutputAmount() currency.Amount  { return t.outputAmount }
func (t *Trade) ExecutionPrice() currency.Price { return t.executionPrice }
func (t *Trade) NextMidPrice() currency.Price   { return t.nextMidPrice }
func (t *Trade) PriceImpact() currency.Percent  { return t.priceImpact }

// MinimumAmountOut is the least output accepted at slippageTolerance.
func (t *Trade) MinimumAmountOut(slippageTolerance currency.Percent) (currency.Amount, error) {
	if slippageTolerance.Sign() < 0 {
		return currency.Amount{}, tradeerrors.ErrNegativeSlippageTolerance
	}
	if t.tradeType == ExactOutput {
		return t.outputAmount, nil
	}

	adjusted, err := fraction.FromInt64(1).Add(slippageTolerance.Fraction).Invert()
	if err != nil {
		return currency.Amount{}, err
	}
	return currency.NewAmount(t.outputAmount.Currency(), adjusted.MulInt(t.outputAmount.Raw()).Quotient())
}

// MaximumAmountIn is the most input spent at slippageTolerance. The product is truncated,
// which never drops below the quoted input.
func (t *Trade) MaximumAmountIn(slippageTolerance currency.Percent) (currency.Amount, error) {
	if slippageTolerance.Sign() < 0 {
		return currency.Amount{}, tradeerrors.ErrNegativeSlippageTolerance
	}
	if t.tradeType == ExactInput {
		return t.inputAmount, nil
	}

	adjusted := fraction.FromInt64(1).Add(slippageTolerance.Fraction)
	return currency.NewAmount(t.inputAmount.Currency(), adjusted.MulInt(t.inputAmount.Raw()).Quotient())
}

// WorstExecutionPrice is the price of the trade when both slippage bounds are hit.
func (t *Trade) WorstExecutionPrice(slippageTolerance currency.Percent) (currency.Price, error) {
	maxIn, err := t.MaximumAmountIn(slippageTolerance)
	if err != nil {
		return currency.Price{}, err
	}
	minOut, err := t.MinimumAmountOut(slippageTolerance)
	if err != nil {
		return currency.Price{}, err
	}
	return currency.NewPrice(maxIn.Currency(), minOut.Currency(), maxIn.Raw(), minOut.Raw())
}

func (t *Trade) String() string {
	return fmt.Sprintf("%s %s -> %s via %s", t.tradeType, t.inputAmount, t.outputAmount, t.route)
}
