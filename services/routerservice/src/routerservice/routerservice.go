package routerservice

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"

	"github.com/alexkalak/go_v2_router/common/core/coreerrors/exchangegrapherrors"
	"github.com/alexkalak/go_v2_router/common/core/currency"
	"github.com/alexkalak/go_v2_router/common/core/exchangables"
	"github.com/alexkalak/go_v2_router/common/core/exchangables/v2pairexchangable"
	"github.com/alexkalak/go_v2_router/common/core/exchangegraph"
	"github.com/alexkalak/go_v2_router/common/models"
)

var ErrUnknownPair = errors.New("pair is not loaded")
var ErrInvalidReserveUpdate = errors.New("invalid reserve update")

type RouterService interface {
	ChainID() uint
	Reload() error
	Graph() exchangegraph.ExchangesGraph
	Quote(request QuoteRequest) ([]Quote, error)
	ApplyReserveUpdate(update ReserveUpdate) (models.UniswapV2Pair, error)
}

type RouterServiceConfig struct {
	ChainID uint
}

func (c *RouterServiceConfig) validate() error {
	if c.ChainID == 0 {
		return errors.New("router service config ChainID not set")
	}
	return nil
}

type RouterServiceDependencies struct {
	Tokens TokenSource
	Pairs  PairSource
	Logger *slog.Logger
}

func (d *RouterServiceDependencies) validate() error {
	if d.Tokens == nil {
		return errors.New("router service dependencies Tokens cannot be nil")
	}
	if d.Pairs == nil {
		return errors.New("router service dependencies Pairs cannot be nil")
	}
	if d.Logger == nil {
		return errors.New("router service dependencies Logger cannot be nil")
	}
	return nil
}

// ReserveUpdate is the new state of one pair after a Sync event.
type ReserveUpdate struct {
	Address     string
	Reserve0    *big.Int
	Reserve1    *big.Int
	BlockNumber uint64
}

type routerService struct {
	config RouterServiceConfig
	logger *slog.Logger

	tokenSource TokenSource
	pairSource  PairSource

	mu sync.RWMutex
	// lower case address -> token
	tokens map[string]*models.Token
	pairs  map[models.V2PairIdentificator]models.UniswapV2Pair
	graph  exchangegraph.ExchangesGraph
}

func New(config RouterServiceConfig, dependencies RouterServiceDependencies) (RouterService, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	service := &routerService{
		config:      config,
		logger:      dependencies.Logger,
		tokenSource: dependencies.Tokens,
		pairSource:  dependencies.Pairs,
	}

	if err := service.Reload(); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *routerService) ChainID() uint {
	return s.config.ChainID
}

func (s *routerService) Graph() exchangegraph.ExchangesGraph {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.graph
}

func pairKey(chainID uint, address string) models.V2PairIdentificator {
	return models.V2PairIdentificator{Address: strings.ToLower(address), ChainID: chainID}
}

// Reload reads tokens and pairs from the sources and swaps in a fresh graph. Dusty pairs
// and pairs with unknown tokens stay out of the graph but still accept reserve updates.
func (s *routerService) Reload() error {
	tokens, err := s.tokenSource.GetTokens(s.config.ChainID)
	if err != nil {
		return fmt.Errorf("load tokens: %w", err)
	}
	pairs, err := s.pairSource.GetPairs(s.config.ChainID)
	if err != nil {
		return fmt.Errorf("load pairs: %w", err)
	}

	tokensMap := make(map[string]*models.Token, len(tokens))
	for i := range tokens {
		tokensMap[strings.ToLower(tokens[i].Address)] = &tokens[i]
	}

	pairsMap := make(map[models.V2PairIdentificator]models.UniswapV2Pair, len(pairs))
	exchangablesArray := make([]exchangables.Exchangable, 0, len(pairs))
	dusty := 0
	for _, pair := range v2pairexchangable.MarkDustyPairs(tokens, pairs) {
		pairsMap[pairKey(pair.ChainID, pair.Address)] = pair
		if pair.IsDusty {
			dusty++
			continue
		}

		exchangable, err := s.toExchangable(tokensMap, pair)
		if err != nil {
			s.logger.Warn("skipping pair", "pair", pair.Address, "err", err)
			continue
		}
		exchangablesArray = append(exchangablesArray, exchangable)
	}

	graph, err := exchangegraph.New(currency.ChainID(s.config.ChainID), exchangablesArray)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tokens = tokensMap
	s.pairs = pairsMap
	s.graph = graph
	s.mu.Unlock()

	s.logger.Info("graph loaded",
		"chain_id", s.config.ChainID,
		"tokens", len(tokens),
		"pairs", len(pairs),
		"dusty", dusty,
		"routable", graph.Len(),
	)

	return nil
}

func (s *routerService) toExchangable(tokens map[string]*models.Token, pair models.UniswapV2Pair) (v2pairexchangable.Pair, error) {
	token0, ok := tokens[strings.ToLower(pair.Token0)]
	if !ok {
		return v2pairexchangable.Pair{}, fmt.Errorf("unknown token %s", pair.Token0)
	}
	token1, ok := tokens[strings.ToLower(pair.Token1)]
	if !ok {
		return v2pairexchangable.Pair{}, fmt.Errorf("unknown token %s", pair.Token1)
	}

	return v2pairexchangable.NewFromModel(&pair, token0, token1)
}

// ApplyReserveUpdate records the new reserves and, for routable pairs, swaps the pair in
// the graph. The returned model is what sinks should persist.
func (s *routerService) ApplyReserveUpdate(update ReserveUpdate) (models.UniswapV2Pair, error) {
	if update.Reserve0 == nil || update.Reserve1 == nil || update.Reserve0.Sign() < 0 || update.Reserve1.Sign() < 0 {
		return models.UniswapV2Pair{}, fmt.Errorf("%w: %s", ErrInvalidReserveUpdate, update.Address)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(s.config.ChainID, update.Address)
	pair, ok := s.pairs[key]
	if !ok {
		return models.UniswapV2Pair{}, fmt.Errorf("%w: %s", ErrUnknownPair, update.Address)
	}
	if update.BlockNumber < pair.BlockNumber {
		s.logger.Debug("stale reserve update", "pair", pair.Address, "block", update.BlockNumber, "stored_block", pair.BlockNumber)
		return pair, nil
	}

	pair.Amount0 = new(big.Int).Set(update.Reserve0)
	pair.Amount1 = new(big.Int).Set(update.Reserve1)
	pair.BlockNumber = update.BlockNumber
	s.pairs[key] = pair

	if pair.IsDusty {
		return pair, nil
	}

	exchangable, err := s.toExchangable(s.tokens, pair)
	if err != nil {
		return models.UniswapV2Pair{}, err
	}
	err = s.graph.UpdateExchangable(exchangable.GetIdentifier(), exchangable)
	if err != nil && !errors.Is(err, exchangegrapherrors.ErrExchangableNotFound) {
		return models.UniswapV2Pair{}, err
	}

	return pair, nil
}
