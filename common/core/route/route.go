// Package route describes a linear path of pairs from an input currency to an output
// currency and the mid price along it.
package route

import (
	"fmt"
	"strings"

	"github.com/alexkalak/go_v2_router/common/core/coreerrors/routeerrors"
	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/exchangables"
)

type Route struct {
	pairs    []exchangables.Exchangable
	path     []currency.Token
	input    currency.Currency
	output   currency.Currency
	midPrice currency.Price
}

// New validates pairs as a connected path starting at input. A nil output is taken
// from the end of the path. Native endpoints are matched through the chain's WETH.
func New(pairs []exchangables.Exchangable, input currency.Currency, output currency.Currency) (*Route, error) {
	if len(pairs) == 0 {
		return nil, routeerrors.ErrNoPairs
	}

	chainID := pairs[0].ChainID()
	for _, pair := range pairs[1:] {
		if pair.ChainID() != chainID {
			return nil, routeerrors.ErrChainIDs
		}
	}

	wrappedInput, err := currency.Wrap(input, chainID)
	if err != nil {
		return nil, err
	}
	if !pairs[0].InvolvesToken(wrappedInput) {
		return nil, routeerrors.ErrInvalidInput
	}

	if output != nil {
		wrappedOutput, err := currency.Wrap(output, chainID)
		if err != nil {
			return nil, err
		}
		if !pairs[len(pairs)-1].InvolvesToken(wrappedOutput) {
			return nil, routeerrors.ErrInvalidOutput
		}
	}

	path := make([]currency.Token, 0, len(pairs)+1)
	path = append(path, wrappedInput)
	for i, pair := range pairs {
		current := path[i]
		if !pair.InvolvesToken(current) {
			return nil, fmt.Errorf("%w: pair %d does not hold %s", routeerrors.ErrBrokenPath, i, current)
		}
		path = append(path, exchangables.OtherToken(pair, current))
	}

	if output == nil {
		output = path[len(path)-1]
	}

	midPrice, err := computeMidPrice(pairs, path, input, output)
	if err != nil {
		return nil, err
	}

	return &Route{
		pairs:    append([]exchangables.Exchangable(nil), pairs...),
		path:     path,
		input:    input,
		output:   output,
		midPrice: midPrice,
	}, nil
}

// computeMidPrice multiplies the reserve ratio of every hop in path direction.
func computeMidPrice(pairs []exchangables.Exchangable, path []currency.Token, input, output currency.Currency) (currency.Price, error) {
	var product currency.Price
	for i, pair := range pairs {
		reserveIn, err := pair.ReserveOf(path[i])
		if err != nil {
			return currency.Price{}, err
		}
		reserveOut, err := pair.ReserveOf(path[i+1])
		if err != nil {
			return currency.Price{}, err
		}
		hop, err := currency.NewPrice(path[i], path[i+1], reserveIn.Raw(), reserveOut.Raw())
		if err != nil {
			return currency.Price{}, err
		}

		if i == 0 {
			product = hop
			continue
		}
		product, err = product.Multiply(hop)
		if err != nil {
			return currency.Price{}, err
		}
	}

	raw := product.Raw()
	return currency.NewPrice(input, output, raw.Denominator(), raw.Numerator())
}

func (r *Route) Pairs() []exchangables.Exchangable {
	return append([]exchangables.Exchangable(nil), r.pairs...)
}

func (r *Route) Path() []currency.Token {
	return append([]currency.Token(nil), r.path...)
}

// Hops is the number of pairs on the route.
func (r *Route) Hops() int {
	return len(r.pairs)
}

func (r *Route) Input() currency.Currency  { return r.input }
func (r *Route) Output() currency.Currency { return r.output }
func (r *Route) MidPrice() currency.Price  { return r.midPrice }

func (r *Route) ChainID() currency.ChainID {
	return r.pairs[0].ChainID()
}

func (r *Route) String() string {
	symbols := make([]string, 0, len(r.path))
	for _, token := range r.path {
		symbols = append(symbols, token.String())
	}
	return strings.Join(symbols, " -> ")
}
