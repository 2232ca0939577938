package trade

import (
	"github.com/alexkalak/go_v2_router/common/core/coreerrors/tradeerrors"
)

// InputOutputComparator orders trades between the same currencies: more output first,
// then less input. It returns 0 only when both amounts match.
func InputOutputComparator(a, b *Trade) (int, error) {
	if !a.inputAmount.Currency().Equals(b.inputAmount.Currency()) {
		return 0, tradeerrors.ErrInputCurrencyMismatch
	}
	if !a.outputAmount.Currency().Equals(b.outputAmount.Currency()) {
		return 0, tradeerrors.ErrOutputCurrencyMismatch
	}

	if a.outputAmount.EqualTo(b.outputAmount) {
		switch {
		case a.inputAmount.EqualTo(b.inputAmount):
			return 0, nil
		case a.inputAmount.LessThan(b.inputAmount):
			return -1, nil
		default:
			return 1, nil
		}
	}

	if a.outputAmount.LessThan(b.outputAmount) {
		return 1, nil
	}
	return -1, nil
}

// TradeComparator breaks InputOutputComparator ties by lower price impact, then by
// fewer hops.
func TradeComparator(a, b *Trade) (int, error) {
	ioComp, err := InputOutputComparator(a, b)
	if err != nil {
		return 0, err
	}
	if ioComp != 0 {
		return ioComp, nil
	}

	if a.priceImpact.LessThan(b.priceImpact.Fraction) {
		return -1, nil
	}
	if a.priceImpact.GreaterThan(b.priceImpact.Fraction) {
		return 1, nil
	}

	return a.route.Hops() - b.route.Hops(), nil
}
