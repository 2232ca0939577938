package v2pairexchangable

import (
	"fmt"
	"math/big"

	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/exchangables"
	"github.com/alexkalak/go_v2_router/common/core/exchangables/exchangableerrors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var FactoryAddress = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
var InitCodeHash = common.HexToHash("0x96e8ac4277198ff8b6f785478aa9a39f403cb768dd02cbee326c3e7da348845f")

const MinimumLiquidity = 1000

// 0.3% fee on the input side
var (
	feeNumerator   = big.NewInt(997)
	feeDenominator = big.NewInt(1000)
)

type Pair struct {
	liquidityToken currency.Token
	token0         currency.Token
	token1         currency.Token
	reserve0       currency.Amount
	reserve1       currency.Amount
}

var _ exchangables.Exchangable = Pair{}

// ComputePairAddress is the CREATE2 address the factory deploys the pair of tokenA and
// tokenB at.
func ComputePairAddress(factory common.Address, tokenA, tokenB currency.Token) (common.Address, error) {
	token0, token1, err := sortTokens(tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}

	salt := crypto.Keccak256Hash(token0.Address().Bytes(), token1.Address().Bytes())
	return crypto.CreateAddress2(factory, salt, InitCodeHash.Bytes()), nil
}

func sortTokens(tokenA, tokenB currency.Token) (currency.Token, currency.Token, error) {
	before, err := tokenA.SortsBefore(tokenB)
	if err != nil {
		return currency.Token{}, currency.Token{}, err
	}
	if before {
		return tokenA, tokenB, nil
	}
	return tokenB, tokenA, nil
}

// New builds the pair holding amountA and amountB. Argument order does not matter.
func New(amountA, amountB currency.Amount) (Pair, error) {
	tokenA, okA := amountA.Token()
	tokenB, okB := amountB.Token()
	if !okA || !okB {
		return Pair{}, exchangableerrors.ErrInvalidArgsOnExchangablePair
	}

	before, err := tokenA.SortsBefore(tokenB)
	if err != nil {
		return Pair{}, err
	}
	if !before {
		amountA, amountB = amountB, amountA
		tokenA, tokenB = tokenB, tokenA
	}

	address, err := ComputePairAddress(FactoryAddress, tokenA, tokenB)
	if err != nil {
		return Pair{}, err
	}
	liquidityToken, err := currency.NewToken(tokenA.ChainID(), address, 18, "UNI-V2", "Uniswap V2")
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		liquidityToken: liquidityToken,
		token0:         tokenA,
		token1:         tokenB,
		reserve0:       amountA,
		reserve1:       amountB,
	}, nil
}

// withReserves keeps token order and the liquidity token, swapping in new reserves.
func (p Pair) withReserves(reserveA, reserveB currency.Amount) Pair {
	next := p
	if token, _ := reserveA.Token(); token.Equals(p.token0) {
		next.reserve0, next.reserve1 = reserveA, reserveB
	} else {
		next.reserve0, next.reserve1 = reserveB, reserveA
	}
	return next
}

func (p Pair) ChainID() currency.ChainID {
	return p.token0.ChainID()
}

func (p Pair) Address() common.Address {
	return p.liquidityToken.Address()
}

func (p Pair) GetIdentifier() string {
	return fmt.Sprintf("%d.%s", p.ChainID(), p.Address().Hex())
}

func (p Pair) LiquidityToken() currency.Token { return p.liquidityToken }
func (p Pair) Token0() currency.Token         { return p.token0 }
func (p Pair) Token1() currency.Token         { return p.token1 }
func (p Pair) Reserve0() currency.Amount      { return p.reserve0 }
func (p Pair) Reserve1() currency.Amount      { return p.reserve1 }

func (p Pair) InvolvesToken(token currency.Token) bool {
	return token.Equals(p.token0) || token.Equals(p.token1)
}

func (p Pair) ReserveOf(token currency.Token) (currency.Amount, error) {
	switch {
	case token.Equals(p.token0):
		return p.reserve0, nil
	case token.Equals(p.token1):
		return p.reserve1, nil
	default:
		return currency.Amount{}, exchangableerrors.ErrTokenNotInPair
	}
}

// Token0Price is how much token1 one token0 is worth at current reserves.
func (p Pair) Token0Price() (currency.Price, error) {
	return currency.NewPrice(p.token0, p.token1, p.reserve0.Raw(), p.reserve1.Raw())
}

func (p Pair) Token1Price() (currency.Price, error) {
	return currency.NewPrice(p.token1, p.token0, p.reserve1.Raw(), p.reserve0.Raw())
}

func (p Pair) PriceOf(token currency.Token) (currency.Price, error) {
	switch {
	case token.Equals(p.token0):
		return p.Token0Price()
	case token.Equals(p.token1):
		return p.Token1Price()
	default:
		return currency.Price{}, exchangableerrors.ErrTokenNotInPair
	}
}

// reservesFor returns (reserve of token, reserve of the other side).
func (p Pair) reservesFor(token currency.Token) (currency.Amount, currency.Amount) {
	if token.Equals(p.token0) {
		return p.reserve0, p.reserve1
	}
	return p.reserve1, p.reserve0
}

func (p Pair) tokenOf(amount currency.Amount) (currency.Token, error) {
	token, ok := amount.Token()
	if !ok || !p.InvolvesToken(token) {
		return currency.Token{}, exchangableerrors.ErrTokenNotInPair
	}
	return token, nil
}

// GetOutputAmount swaps amountIn into the pair:
// out = reserveOut*in*997 / (reserveIn*1000 + in*997), truncated.
func (p Pair) GetOutputAmount(amountIn currency.Amount) (currency.Amount, exchangables.Exchangable, error) {
	tokenIn, err := p.tokenOf(amountIn)
	if err != nil {
		return currency.Amount{}, nil, err
	}
	if exchangables.HasEmptyReserve(p) {
		return currency.Amount{}, nil, exchangableerrors.ErrInsufficientReserves
	}

	inputReserve, outputReserve := p.reservesFor(tokenIn)

	amountInWithFee := new(big.Int).Mul(amountIn.Raw(), feeNumerator)
	numerator := new(big.Int).Mul(amountInWithFee, outputReserve.Raw())
	denominator := new(big.Int).Add(
		new(big.Int).Mul(inputReserve.Raw(), feeDenominator),
		amountInWithFee,
	)
	out := numerator.Quo(numerator, denominator)
	if out.Sign() == 0 {
		return currency.Amount{}, nil, exchangableerrors.ErrInsufficientInputAmount
	}

	amountOut, err := currency.NewAmount(outputReserve.Currency(), out)
	if err != nil {
		return currency.Amount{}, nil, err
	}
	nextIn, err := inputReserve.Add(amountIn)
	if err != nil {
		return currency.Amount{}, nil, err
	}
	nextOut, err := outputReserve.Sub(amountOut)
	if err != nil {
		return currency.Amount{}, nil, err
	}

	return amountOut, p.withReserves(nextIn, nextOut), nil
}

// GetInputAmount is the smallest input that yields at least amountOut:
// in = reserveIn*out*1000 / ((reserveOut-out)*997) + 1.
func (p Pair) GetInputAmount(amountOut currency.Amount) (currency.Amount, exchangables.Exchangable, error) {
	tokenOut, err := p.tokenOf(amountOut)
	if err != nil {
		return currency.Amount{}, nil, err
	}

	outputReserve, inputReserve := p.reservesFor(tokenOut)
	if exchangables.HasEmptyReserve(p) || amountOut.Cmp(outputReserve) >= 0 {
		return currency.Amount{}, nil, exchangableerrors.ErrInsufficientReserves
	}

	numerator := new(big.Int).Mul(inputReserve.Raw(), amountOut.Raw())
	numerator.Mul(numerator, feeDenominator)
	denominator := new(big.Int).Sub(outputReserve.Raw(), amountOut.Raw())
	denominator.Mul(denominator, feeNumerator)
	in := numerator.Quo(numerator, denominator)
	in.Add(in, big.NewInt(1))

	amountIn, err := currency.NewAmount(inputReserve.Currency(), in)
	if err != nil {
		return currency.Amount{}, nil, err
	}
	nextIn, err := inputReserve.Add(amountIn)
	if err != nil {
		return currency.Amount{}, nil, err
	}
	nextOut, err := outputReserve.Sub(amountOut)
	if err != nil {
		return currency.Amount{}, nil, err
	}

	return amountIn, p.withReserves(nextIn, nextOut), nil
}

func (p Pair) String() string {
	return fmt.Sprintf("%s/%s %s", p.token0, p.token1, p.Address().Hex())
}
