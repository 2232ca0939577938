// Package currency holds the value types the swap engine computes with: the native
// currency and ERC-20 tokens, amounts of them, prices between them and percentages.
package currency

import (
	"bytes"
	"fmt"

	"github.com/alexkalak/go_v2_router/common/core/coreerrors/currencyerrors"
	"github.com/ethereum/go-ethereum/common"
)

type ChainID uint

const (
	Mainnet ChainID = 1
	Ropsten ChainID = 3
	Rinkeby ChainID = 4
	Goerli  ChainID = 5
	Kovan   ChainID = 42
)

// Currency is either NativeCurrency or Token.
type Currency interface {
	Decimals() uint8
	Symbol() string
	Name() string
	IsNative() bool
	Equals(other Currency) bool
}

type NativeCurrency struct {
	decimals uint8
	symbol   string
	name     string
}

var Ether = NativeCurrency{decimals: 18, symbol: "ETH", name: "Ether"}

func (n NativeCurrency) Decimals() uint8 { return n.decimals }
func (n NativeCurrency) Symbol() string  { return n.symbol }
func (n NativeCurrency) Name() string    { return n.name }
func (n NativeCurrency) IsNative() bool  { return true }

func (n NativeCurrency) Equals(other Currency) bool {
	return other != nil && other.IsNative()
}

type Token struct {
	chainID  ChainID
	address  common.Address
	decimals uint8
	symbol   string
	name     string
}

func NewToken(chainID ChainID, address common.Address, decimals uint8, symbol, name string) (Token, error) {
	if decimals == 255 {
		return Token{}, currencyerrors.ErrInvalidDecimals
	}

	return Token{
		chainID:  chainID,
		address:  address,
		decimals: decimals,
		symbol:   symbol,
		name:     name,
	}, nil
}

func mustToken(chainID ChainID, address string, decimals uint8, symbol, name string) Token {
	token, err := NewToken(chainID, common.HexToAddress(address), decimals, symbol, name)
	if err != nil {
		panic(err)
	}
	return token
}

func (t Token) ChainID() ChainID        { return t.chainID }
func (t Token) Address() common.Address { return t.address }
func (t Token) Decimals() uint8         { return t.decimals }
func (t Token) Symbol() string          { return t.symbol }
func (t Token) Name() string            { return t.name }
func (t Token) IsNative() bool          { return false }

func (t Token) Equals(other Currency) bool {
	otherToken, ok := other.(Token)
	if !ok {
		return false
	}
	return t.chainID == otherToken.chainID && t.address == otherToken.address
}

// SortsBefore orders tokens of one chain by address.
func (t Token) SortsBefore(other Token) (bool, error) {
	if t.chainID != other.chainID {
		return false, currencyerrors.ErrChainIDMismatch
	}
	if t.address == other.address {
		return false, currencyerrors.ErrSameAddress
	}
	return bytes.Compare(t.address.Bytes(), other.address.Bytes()) < 0, nil
}

func (t Token) String() string {
	if t.symbol != "" {
		return t.symbol
	}
	return t.address.Hex()
}

var WETH = map[ChainID]Token{
	Mainnet: mustToken(Mainnet, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", 18, "WETH", "Wrapped Ether"),
	Ropsten: mustToken(Ropsten, "0xc778417E063141139Fce010982780140Aa0cD5Ab", 18, "WETH", "Wrapped Ether"),
	Rinkeby: mustToken(Rinkeby, "0xc778417E063141139Fce010982780140Aa0cD5Ab", 18, "WETH", "Wrapped Ether"),
	Goerli:  mustToken(Goerli, "0xB4FBF271143F4FBf7B91A5ded31805e42b2208d6", 18, "WETH", "Wrapped Ether"),
	Kovan:   mustToken(Kovan, "0xd0A1E359811322d97991E03f863a0C30C2cF029C", 18, "WETH", "Wrapped Ether"),
}

// Wrap returns the token the swap math uses for c: c itself, or WETH of chainID.
func Wrap(c Currency, chainID ChainID) (Token, error) {
	switch v := c.(type) {
	case Token:
		return v, nil
	case NativeCurrency:
		weth, ok := WETH[chainID]
		if !ok {
			return Token{}, fmt.Errorf("%w: %d", currencyerrors.ErrNoWrappedToken, chainID)
		}
		return weth, nil
	default:
		return Token{}, fmt.Errorf("unsupported currency %T", c)
	}
}
