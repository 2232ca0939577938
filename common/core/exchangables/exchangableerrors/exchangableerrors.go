package exchangableerrors

import "errors"

// Liquidity failures. These are expected outcomes of a single swap attempt.
var ErrInsufficientReserves = errors.New("insufficient reserves")
var ErrInsufficientInputAmount = errors.New("insufficient input amount")

var ErrTokenNotInPair = errors.New("token is not in pair")
var ErrInvalidArgsOnExchangablePair = errors.New("invalid args on exchangable pair")
var ErrLiquidityTokenMismatch = errors.New("amount is not the pair liquidity token")
var ErrLiquidityExceedsSupply = errors.New("liquidity exceeds total supply")
var ErrMissingKLast = errors.New("kLast is required when fee is on")

func IsLiquidityError(err error) bool {
	return errors.Is(err, ErrInsufficientReserves) || errors.Is(err, ErrInsufficientInputAmount)
}
