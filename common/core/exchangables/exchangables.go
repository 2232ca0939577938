package exchangables

import (
	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/ethereum/go-ethereum/common"
)

// Exchangable is an immutable reserve snapshot that can be swapped through. Swaps
// return the post-trade snapshot and never change the receiver.
type Exchangable interface {
	ChainID() currency.ChainID
	Address() common.Address
	GetIdentifier() string

	Token0() currency.Token
	Token1() currency.Token
	Reserve0() currency.Amount
	Reserve1() currency.Amount

	InvolvesToken(token currency.Token) bool
	ReserveOf(token currency.Token) (currency.Amount, error)
	PriceOf(token currency.Token) (currency.Price, error)

	GetOutputAmount(amountIn currency.Amount) (currency.Amount, Exchangable, error)
	GetInputAmount(amountOut currency.Amount) (currency.Amount, Exchangable, error)
}

// OtherToken returns the side of e that is not token.
func OtherToken(e Exchangable, token currency.Token) currency.Token {
	if token.Equals(e.Token0()) {
		return e.Token1()
	}
	return e.Token0()
}

// HasEmptyReserve reports whether either side of e holds nothing.
func HasEmptyReserve(e Exchangable) bool {
	return e.Reserve0().IsZero() || e.Reserve1().IsZero()
}
