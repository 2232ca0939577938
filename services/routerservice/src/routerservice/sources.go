package routerservice

import (
	"github.com/alexkalak/go_v2_router/common/models"
	"github.com/alexkalak/go_v2_router/common/repo/exchangerepo/v2pairsrepo"
	"github.com/alexkalak/go_v2_router/common/repo/tokenrepo"
)

// TokenSource and PairSource are satisfied by the snapshot repo directly, by the
// Redis pair cache, and by the Postgres repos through the adapters below.
type TokenSource interface {
	GetTokens(chainID uint) ([]models.Token, error)
}

type PairSource interface {
	GetPairs(chainID uint) ([]models.UniswapV2Pair, error)
}

// ReserveSink receives reserve changes once a block is over.
type ReserveSink interface {
	SetPair(pair models.UniswapV2Pair) error
	SetBlockNumber(chainID uint, blockNumber uint64) error
}

type dbTokens struct {
	repo tokenrepo.TokenRepo
}

func TokensFromDB(repo tokenrepo.TokenRepo) TokenSource {
	return dbTokens{repo: repo}
}

func (s dbTokens) GetTokens(chainID uint) ([]models.Token, error) {
	return s.repo.GetTokensByChainID(chainID)
}

type dbPairs struct {
	repo v2pairsrepo.V2PairDBRepo
}

func PairsFromDB(repo v2pairsrepo.V2PairDBRepo) PairSource {
	return dbPairs{repo: repo}
}

func (s dbPairs) GetPairs(chainID uint) ([]models.UniswapV2Pair, error) {
	return s.repo.GetNonDustyPairsByChainID(chainID)
}

type dbSink struct {
	repo v2pairsrepo.V2PairDBRepo
}

// SinkToDB writes reserve changes back to Postgres. The block number lives on each row.
func SinkToDB(repo v2pairsrepo.V2PairDBRepo) ReserveSink {
	return dbSink{repo: repo}
}

func (s dbSink) SetPair(pair models.UniswapV2Pair) error {
	return s.repo.UpdatePairsReserves([]models.UniswapV2Pair{pair})
}

func (s dbSink) SetBlockNumber(uint, uint64) error {
	return nil
}
