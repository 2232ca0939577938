package routerservice

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/exchangegraph"
	"github.com/alexkalak/go_v2_router/common/core/router"
	"github.com/alexkalak/go_v2_router/common/core/trade"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const NativeSymbol = "ETH"

const DefaultTTL = 20 * time.Minute

var ErrInvalidAmount = errors.New("invalid amount")
var ErrInvalidSlippage = errors.New("slippage must be a percentage in [0, 100)")
var ErrInvalidCurrency = errors.New("currency must be ETH or a token address")

type QuoteRequest struct {
	// CurrencyIn and CurrencyOut are token addresses or ETH.
	CurrencyIn  string
	CurrencyOut string
	// Amount is in whole units of the exact side, e.g. "1.5".
	Amount     string
	TradeType  trade.TradeType
	MaxHops    int
	MaxResults int
	Slippage   currency.Percent

	// Recipient, when set, asks for router call parameters too.
	Recipient string
	TTL       time.Duration
}

type Quote struct {
	Trade *trade.Trade
	// Limit is the minimum output for exact input trades and the maximum input for
	// exact output trades.
	Limit    currency.Amount
	Slippage currency.Percent
	Swap     *router.SwapParameters
}

// ParseAmount converts a whole unit decimal into a raw amount of c. More fractional
// digits than c has decimals is an error.
func ParseAmount(c currency.Currency, amount string) (currency.Amount, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return currency.Amount{}, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if value.Sign() <= 0 {
		return currency.Amount{}, fmt.Errorf("%w: %q must be positive", ErrInvalidAmount, amount)
	}

	raw := value.Shift(int32(c.Decimals()))
	if !raw.IsInteger() {
		return currency.Amount{}, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, amount, c.Decimals())
	}

	return currency.NewAmount(c, raw.BigInt())
}

// ParseSlippage reads a percentage such as "0.5".
func ParseSlippage(slippage string) (currency.Percent, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(slippage))
	if err != nil || value.IsNegative() || value.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return currency.Percent{}, fmt.Errorf("%w: %q", ErrInvalidSlippage, slippage)
	}

	numerator := value.Coefficient()
	denominator := big.NewInt(100)
	if exp := value.Exponent(); exp < 0 {
		denominator.Mul(denominator, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-exp)), nil))
	} else {
		numerator.Mul(numerator, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil))
	}

	return currency.NewPercent(numerator, denominator)
}

func resolveCurrency(graph exchangegraph.ExchangesGraph, value string) (currency.Currency, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, NativeSymbol) {
		return currency.Ether, nil
	}
	if !common.IsHexAddress(value) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, value)
	}

	return graph.GetToken(common.HexToAddress(value))
}

func (s *routerService) Quote(request QuoteRequest) ([]Quote, error) {
	graph := s.Graph()

	currencyIn, err := resolveCurrency(graph, request.CurrencyIn)
	if err != nil {
		return nil, err
	}
	currencyOut, err := resolveCurrency(graph, request.CurrencyOut)
	if err != nil {
		return nil, err
	}

	opts := []exchangegraph.Option{}
	if request.MaxHops != 0 {
		opts = append(opts, exchangegraph.WithMaxHops(request.MaxHops))
	}
	if request.MaxResults != 0 {
		opts = append(opts, exchangegraph.WithMaxNumResults(request.MaxResults))
	}

	var trades []*trade.Trade
	switch request.TradeType {
	case trade.ExactInput:
		amountIn, err := ParseAmount(currencyIn, request.Amount)
		if err != nil {
			return nil, err
		}
		trades, err = graph.BestTradeExactIn(amountIn, currencyOut, opts...)
		if err != nil {
			return nil, err
		}
	case trade.ExactOutput:
		amountOut, err := ParseAmount(currencyOut, request.Amount)
		if err != nil {
			return nil, err
		}
		trades, err = graph.BestTradeExactOut(currencyIn, amountOut, opts...)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported trade type %s", request.TradeType)
	}

	quotes := make([]Quote, 0, len(trades))
	for _, t := range trades {
		quote, err := s.buildQuote(t, request)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, quote)
	}

	s.logger.Debug("quoted",
		"in", currencyIn.Symbol(),
		"out", currencyOut.Symbol(),
		"amount", request.Amount,
		"type", request.TradeType.String(),
		"results", len(quotes),
	)

	return quotes, nil
}

func (s *routerService) buildQuote(t *trade.Trade, request QuoteRequest) (Quote, error) {
	quote := Quote{Trade: t, Slippage: request.Slippage}

	var err error
	if t.TradeType() == trade.ExactInput {
		quote.Limit, err = t.MinimumAmountOut(request.Slippage)
	} else {
		quote.Limit, err = t.MaximumAmountIn(request.Slippage)
	}
	if err != nil {
		return Quote{}, err
	}

	if request.Recipient == "" {
		return quote, nil
	}
	if !common.IsHexAddress(request.Recipient) {
		return Quote{}, fmt.Errorf("invalid recipient %q", request.Recipient)
	}

	ttl := request.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	swap, err := router.SwapCallParameters(t, router.TradeOptions{
		AllowedSlippage: request.Slippage,
		Recipient:       common.HexToAddress(request.Recipient),
		TTL:             ttl,
	})
	if err != nil {
		return Quote{}, err
	}
	quote.Swap = &swap

	return quote, nil
}
