package v2pairexchangable

import (
	"math/big"

	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/fraction"
	"github.com/alexkalak/go_v2_router/common/models"
)

// a probe of reserve/1000 must come back at least 98% intact after a round trip
var (
	probeDivisor    = big.NewInt(1000)
	minRoundTrip, _ = fraction.NewInt64(98, 100)
)

// IsDusty reports whether swapping through p is dominated by integer rounding: a small
// probe swapped to the other side and back loses more than 2% on either side.
func IsDusty(p Pair) bool {
	for _, reserve := range []currency.Amount{p.reserve0, p.reserve1} {
		if !roundTripHolds(p, reserve) {
			return true
		}
	}
	return false
}

func roundTripHolds(p Pair, reserve currency.Amount) bool {
	probeRaw := new(big.Int).Quo(reserve.Raw(), probeDivisor)
	if probeRaw.Sign() == 0 {
		return false
	}
	probe, err := currency.NewAmount(reserve.Currency(), probeRaw)
	if err != nil {
		return false
	}

	out, next, err := p.GetOutputAmount(probe)
	if err != nil {
		return false
	}
	back, _, err := next.GetOutputAmount(out)
	if err != nil {
		return false
	}

	ratio, err := fraction.New(back.Raw(), probe.Raw())
	if err != nil {
		return false
	}
	return !ratio.LessThan(minRoundTrip)
}

// MarkDustyPairs sets IsDusty on every pair. Pairs whose tokens are unknown or whose
// snapshot is malformed are dusty.
func MarkDustyPairs(tokens []models.Token, pairs []models.UniswapV2Pair) []models.UniswapV2Pair {
	tokensByID := make(map[string]*models.Token, len(tokens))
	for i := range tokens {
		tokensByID[tokens[i].GetIdentificator().String()] = &tokens[i]
	}

	marked := make([]models.UniswapV2Pair, 0, len(pairs))
	for _, pair := range pairs {
		pair.IsDusty = true

		token0, ok0 := tokensByID[models.TokenIdentificator{Address: pair.Token0, ChainID: pair.ChainID}.String()]
		token1, ok1 := tokensByID[models.TokenIdentificator{Address: pair.Token1, ChainID: pair.ChainID}.String()]
		if ok0 && ok1 {
			if p, err := NewFromModel(&pair, token0, token1); err == nil {
				pair.IsDusty = IsDusty(p)
			}
		}

		marked = append(marked, pair)
	}

	return marked
}
