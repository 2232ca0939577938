// Package router turns a quoted trade into the UniswapV2Router02 call that executes it.
package router

import (
	_ "embed"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/trade"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var RouterAddress = common.HexToAddress("0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")

var ErrEtherInAndOut = errors.New("trade cannot have ether on both sides")
var ErrExactOutFeeOnTransfer = errors.New("fee on transfer tokens are only supported for exact input")
var ErrInvalidTTL = errors.New("ttl must be greater than zero")
var ErrMissingDeadline = errors.New("either ttl or deadline is required")
var ErrInvalidRecipient = errors.New("recipient cannot be the zero address")

//go:embed router02.abi.json
var router02ABIJSON string

var router02ABI = mustParseABI(router02ABIJSON)

func mustParseABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(err)
	}
	return parsed
}

type TradeOptions struct {
	AllowedSlippage currency.Percent
	Recipient       common.Address
	// TTL wins over Deadline when set.
	TTL           time.Duration
	Deadline      uint64
	FeeOnTransfer bool
	Now           func() time.Time
}

type SwapParameters struct {
	MethodName string
	Args       []any
	Value      *big.Int
	Calldata   []byte
}

func (o TradeOptions) deadline() (*big.Int, error) {
	if o.TTL != 0 {
		if o.TTL < 0 {
			return nil, ErrInvalidTTL
		}
		now := time.Now
		if o.Now != nil {
			now = o.Now
		}
		return big.NewInt(now().Unix() + int64(o.TTL/time.Second)), nil
	}
	if o.Deadline == 0 {
		return nil, ErrMissingDeadline
	}
	return new(big.Int).SetUint64(o.Deadline), nil
}

// SwapCallParameters picks the router method for t and packs its arguments. Value is
// the ether to attach to the call.
func SwapCallParameters(t *trade.Trade, options TradeOptions) (SwapParameters, error) {
	etherIn := t.InputAmount().IsNative()
	etherOut := t.OutputAmount().IsNative()
	if etherIn && etherOut {
		return SwapParameters{}, ErrEtherInAndOut
	}
	if options.Recipient == (common.Address{}) {
		return SwapParameters{}, ErrInvalidRecipient
	}

	deadline, err := options.deadline()
	if err != nil {
		return SwapParameters{}, err
	}
	maxIn, err := t.MaximumAmountIn(options.AllowedSlippage)
	if err != nil {
		return SwapParameters{}, err
	}
	minOut, err := t.MinimumAmountOut(options.AllowedSlippage)
	if err != nil {
		return SwapParameters{}, err
	}

	amountIn, amountOut := maxIn.Raw(), minOut.Raw()
	tokens := t.Route().Path()
	path := make([]common.Address, 0, len(tokens))
	for _, token := range tokens {
		path = append(path, token.Address())
	}
	to := options.Recipient

	var methodName string
	var args []any
	value := new(big.Int)

	switch t.TradeType() {
	case trade.ExactInput:
		switch {
		case etherIn:
			methodName = "swapExactETHForTokens"
			args = []any{amountOut, path, to, deadline}
			value = amountIn
		case etherOut:
			methodName = "swapExactTokensForETH"
			args = []any{amountIn, amountOut, path, to, deadline}
		default:
			methodName = "swapExactTokensForTokens"
			args = []any{amountIn, amountOut, path, to, deadline}
		}
		if options.FeeOnTransfer {
			methodName += "SupportingFeeOnTransferTokens"
		}
	case trade.ExactOutput:
		if options.FeeOnTransfer {
			return SwapParameters{}, ErrExactOutFeeOnTransfer
		}
		switch {
		case etherIn:
			methodName = "swapETHForExactTokens"
			args = []any{amountOut, path, to, deadline}
			value = amountIn
		case etherOut:
			methodName = "swapTokensForExactETH"
			args = []any{amountOut, amountIn, path, to, deadline}
		default:
			methodName = "swapTokensForExactTokens"
			args = []any{amountOut, amountIn, path, to, deadline}
		}
	default:
		return SwapParameters{}, fmt.Errorf("unsupported trade type %s", t.TradeType())
	}

	calldata, err := router02ABI.Pack(methodName, args...)
	if err != nil {
		return SwapParameters{}, fmt.Errorf("pack %s: %w", methodName, err)
	}

	return SwapParameters{
		MethodName: methodName,
		Args:       args,
		Value:      value,
		Calldata:   calldata,
	}, nil
}
