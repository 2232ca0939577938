package v2pairsrepo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexkalak/go_v2_router/common/models"
	"github.com/alexkalak/go_v2_router/common/periphery/redisdb"
)

const PAIRS_HASH = "v2pairs"

func getPairsHashByChainID(chainID uint) string {
	return fmt.Sprintf("%d.%s", chainID, PAIRS_HASH)
}

const BLOCK_NUMBER_KEY = "block_number"

type V2PairCacheRepo interface {
	GetPairs(chainID uint) ([]models.UniswapV2Pair, error)
	GetNonDustyPairs(chainID uint) ([]models.UniswapV2Pair, error)
	GetBlockNumber(chainID uint) (uint64, error)

	SetPairs(chainID uint, pairs []models.UniswapV2Pair) error
	SetPair(pair models.UniswapV2Pair) error
	SetBlockNumber(chainID uint, blockNumber uint64) error

	ClearPairs(chainID uint) error
}

type V2PairCacheRepoDependencies struct {
	Database *redisdb.RedisDatabase
}

type v2pairCacheRepo struct {
	redisDB *redisdb.RedisDatabase
	ctx     context.Context
}

func NewCacheRepo(ctx context.Context, dependencies V2PairCacheRepoDependencies) (V2PairCacheRepo, error) {
	if dependencies.Database == nil {
		return nil, fmt.Errorf("v2 pair cache repo database dependency cannot be nil")
	}

	return &v2pairCacheRepo{
		redisDB: dependencies.Database,
		ctx:     ctx,
	}, nil
}

// decodePairs skips the block number field and entries that do not parse.
func decodePairs(hash map[string]string, skipDusty bool) []models.UniswapV2Pair {
	pairs := make([]models.UniswapV2Pair, 0, len(hash))
	for key, pairStr := range hash {
		if key == BLOCK_NUMBER_KEY {
			continue
		}

		pair := models.UniswapV2Pair{}
		if err := pair.FillFromJSON([]byte(pairStr)); err != nil {
			continue
		}
		if skipDusty && pair.IsDusty {
			continue
		}

		pairs = append(pairs, pair)
	}

	return pairs
}

func (r *v2pairCacheRepo) getAll(chainID uint) (map[string]string, error) {
	rdb, err := r.redisDB.GetDB()
	if err != nil {
		return nil, err
	}

	return rdb.HGetAll(r.ctx, getPairsHashByChainID(chainID)).Result()
}

func (r *v2pairCacheRepo) GetPairs(chainID uint) ([]models.UniswapV2Pair, error) {
	hash, err := r.getAll(chainID)
	if err != nil {
		return nil, err
	}

	return decodePairs(hash, false), nil
}

func (r *v2pairCacheRepo) GetNonDustyPairs(chainID uint) ([]models.UniswapV2Pair, error) {
	hash, err := r.getAll(chainID)
	if err != nil {
		return nil, err
	}

	return decodePairs(hash, true), nil
}

func (r *v2pairCacheRepo) GetBlockNumber(chainID uint) (uint64, error) {
	rdb, err := r.redisDB.GetDB()
	if err != nil {
		return 0, err
	}

	blockNumberStr, err := rdb.HGet(r.ctx, getPairsHashByChainID(chainID), BLOCK_NUMBER_KEY).Result()
	if err != nil {
		return 0, err
	}

	return strconv.ParseUint(blockNumberStr, 10, 64)
}

func encodePairs(pairs []models.UniswapV2Pair) ([]string, error) {
	pairsForRedis := make([]string, 0, len(pairs)*2)
	for _, pair := range pairs {
		pairJSON, err := pair.GetJSON()
		if err != nil {
			return nil, err
		}

		pairsForRedis = append(pairsForRedis, pair.GetIdentificator().String(), string(pairJSON))
	}

	return pairsForRedis, nil
}

func (r *v2pairCacheRepo) SetPairs(chainID uint, pairs []models.UniswapV2Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	rdb, err := r.redisDB.GetDB()
	if err != nil {
		return err
	}

	pairsForRedis, err := encodePairs(pairs)
	if err != nil {
		return err
	}

	return rdb.HSet(r.ctx, getPairsHashByChainID(chainID), pairsForRedis).Err()
}

func (r *v2pairCacheRepo) SetPair(pair models.UniswapV2Pair) error {
	rdb, err := r.redisDB.GetDB()
	if err != nil {
		return err
	}

	pairJSON, err := pair.GetJSON()
	if err != nil {
		return err
	}

	return rdb.HSet(r.ctx, getPairsHashByChainID(pair.ChainID), pair.GetIdentificator().String(), pairJSON).Err()
}

func (r *v2pairCacheRepo) SetBlockNumber(chainID uint, blockNumber uint64) error {
	rdb, err := r.redisDB.GetDB()
	if err != nil {
		return err
	}

	return rdb.HSet(r.ctx, getPairsHashByChainID(chainID), BLOCK_NUMBER_KEY, blockNumber).Err()
}

func (r *v2pairCacheRepo) ClearPairs(chainID uint) error {
	rdb, err := r.redisDB.GetDB()
	if err != nil {
		return err
	}

	return rdb.Del(r.ctx, getPairsHashByChainID(chainID)).Err()
}
