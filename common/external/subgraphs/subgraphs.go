package subgraphs

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"sync"

	"github.com/alexkalak/go_v2_router/common/external/subgraphs/subgrapherrors"
	"github.com/alexkalak/go_v2_router/common/models"
	"github.com/machinebox/graphql"
	"github.com/shopspring/decimal"
)

type ExchangeType string
type ExchangeName string

const (
	uniV2Fork ExchangeType = "uni_v2_fork"
)

//go:embed subgraphassets/subgraphurls.json
var subgraphUrlsMapString string

//go:embed subgraphassets/v2pairsquery.graphql
var pairsQuery string

type subgraphUrlsMap map[uint]map[ExchangeType]map[ExchangeName]string

type SubgraphClient interface {
	GetV2PairsWithTokens(ctx context.Context, chainID uint) ([]models.Token, []models.UniswapV2Pair, error)
}

type SubgraphClientConfig struct {
	APIKey string
	// URLs overrides the embedded endpoints when set.
	URLs   map[uint]map[ExchangeName]string
	Logger *slog.Logger
}

type subgraphClient struct {
	subgraphUrlsMap subgraphUrlsMap
	apiKey          string
	logger          *slog.Logger
}

func NewSubgraphClient(config SubgraphClientConfig) (SubgraphClient, error) {
	urls := subgraphUrlsMap{}

	if config.URLs != nil {
		for chainID, exchanges := range config.URLs {
			urls[chainID] = map[ExchangeType]map[ExchangeName]string{uniV2Fork: exchanges}
		}
	} else if err := json.Unmarshal([]byte(subgraphUrlsMapString), &urls); err != nil {
		return nil, errors.New("unable to parse subgraph urls map")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &subgraphClient{
		subgraphUrlsMap: urls,
		apiKey:          config.APIKey,
		logger:          logger,
	}, nil
}

const pairsChunkSize = 1000
const parallelQueries = 5

// GetV2PairsWithTokens pages through the pairs of every v2 exchange on chainID and
// returns the pairs with their reserves in raw units plus the distinct tokens they use.
func (s *subgraphClient) GetV2PairsWithTokens(ctx context.Context, chainID uint) ([]models.Token, []models.UniswapV2Pair, error) {
	exchanges, ok := s.subgraphUrlsMap[chainID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", subgrapherrors.ErrChainIDNotFound, chainID)
	}
	urls, ok := exchanges[uniV2Fork]
	if !ok {
		return nil, nil, subgrapherrors.ErrExchangeTypeNotFound
	}

	pairResponses := []PairResponse{}
	for exchangeName, url := range urls {
		responses, err := s.queryAllPairs(ctx, url)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", exchangeName, err)
		}
		for i := range responses {
			responses[i].ExchangeName = string(exchangeName)
		}
		s.logger.Info("fetched v2 pairs", "exchange", exchangeName, "count", len(responses))
		pairResponses = append(pairResponses, responses...)
	}

	tokens := []models.Token{}
	seenTokens := map[string]struct{}{}
	pairs := make([]models.UniswapV2Pair, 0, len(pairResponses))

	for _, pairResp := range pairResponses {
		pair, token0, token1, err := convertPair(pairResp, chainID)
		if err != nil {
			s.logger.Debug("skipping pair", "pair", pairResp.ID, "err", err)
			continue
		}

		for _, token := range []models.Token{token0, token1} {
			key := token.GetIdentificator().String()
			if _, ok := seenTokens[key]; ok {
				continue
			}
			seenTokens[key] = struct{}{}
			tokens = append(tokens, token)
		}
		pairs = append(pairs, pair)
	}

	return tokens, pairs, nil
}

// queryAllPairs runs parallelQueries pages at a time until a round returns nothing.
func (s *subgraphClient) queryAllPairs(ctx context.Context, url string) ([]PairResponse, error) {
	client := graphql.NewClient(url)
	result := []PairResponse{}

	currentChunk := 0
	for {
		pages := make([][]PairResponse, parallelQueries)
		errs := make([]error, parallelQueries)

		wg := sync.WaitGroup{}
		for i := range parallelQueries {
			skip := (currentChunk + i) * pairsChunkSize
			wg.Go(func() {
				pages[i], errs[i] = s.queryPairs(ctx, client, skip)
			})
		}
		wg.Wait()
		currentChunk += parallelQueries

		if err := errors.Join(errs...); err != nil {
			return nil, err
		}

		total := 0
		for _, page := range pages {
			total += len(page)
			result = append(result, page...)
		}
		if total < parallelQueries*pairsChunkSize {
			return result, nil
		}
	}
}

func (s *subgraphClient) queryPairs(ctx context.Context, client *graphql.Client, skip int) ([]PairResponse, error) {
	req := graphql.NewRequest(pairsQuery)
	if s.apiKey != "" {
		req.Header.Add("Authorization", "Bearer "+s.apiKey)
	}

	req.Var("first", pairsChunkSize)
	req.Var("skip", skip)

	respData := struct {
		Pairs []PairResponse `json:"pairs"`
	}{}

	if err := client.Run(ctx, req, &respData); err != nil {
		return nil, err
	}

	return respData.Pairs, nil
}

func convertToken(resp TokenResponse, chainID uint) (models.Token, error) {
	decimals, err := strconv.Atoi(resp.Decimals)
	if err != nil || decimals < 0 || decimals > 255 {
		return models.Token{}, fmt.Errorf("%w: token %s decimals %q", subgrapherrors.ErrInvalidPairResponse, resp.ID, resp.Decimals)
	}

	return models.Token{
		Address:  strings.ToLower(resp.ID),
		ChainID:  chainID,
		Decimals: decimals,
		Name:     resp.Name,
		Symbol:   resp.Symbol,
	}, nil
}

// rawReserve scales a human readable reserve back to integer units. Digits past
// decimals are dropped.
func rawReserve(reserve string, decimals int) (*big.Int, error) {
	value, err := decimal.NewFromString(reserve)
	if err != nil {
		return nil, err
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("%w: negative reserve %s", subgrapherrors.ErrInvalidPairResponse, reserve)
	}
	return value.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}

func convertPair(resp PairResponse, chainID uint) (models.UniswapV2Pair, models.Token, models.Token, error) {
	if resp.ID == "" || resp.Token0.ID == "" || resp.Token1.ID == "" {
		return models.UniswapV2Pair{}, models.Token{}, models.Token{}, subgrapherrors.ErrInvalidPairResponse
	}

	token0, err := convertToken(resp.Token0, chainID)
	if err != nil {
		return models.UniswapV2Pair{}, models.Token{}, models.Token{}, err
	}
	token1, err := convertToken(resp.Token1, chainID)
	if err != nil {
		return models.UniswapV2Pair{}, models.Token{}, models.Token{}, err
	}

	amount0, err := rawReserve(resp.Reserve0, token0.Decimals)
	if err != nil {
		return models.UniswapV2Pair{}, models.Token{}, models.Token{}, err
	}
	amount1, err := rawReserve(resp.Reserve1, token1.Decimals)
	if err != nil {
		return models.UniswapV2Pair{}, models.Token{}, models.Token{}, err
	}

	return models.UniswapV2Pair{
		Address:      strings.ToLower(resp.ID),
		ExchangeName: resp.ExchangeName,
		ChainID:      chainID,
		Token0:       token0.Address,
		Token1:       token1.Address,
		Amount0:      amount0,
		Amount1:      amount1,
	}, token0, token1, nil
}
