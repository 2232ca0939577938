// Package snapshotrepo keeps tokens and pair reserves in a local bbolt file so quotes
// can run without Postgres or Redis.
package snapshotrepo

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/alexkalak/go_v2_router/common/models"
	bolt "go.etcd.io/bbolt"
)

const TOKENS_BUCKET = "tokens"
const PAIRS_BUCKET = "v2pairs"
const META_BUCKET = "meta"

const BLOCK_NUMBER_KEY = "block_number"

var ErrNoBlockNumber = errors.New("snapshot has no block number")

func chainBucket(chainID uint) []byte {
	return []byte(strconv.FormatUint(uint64(chainID), 10))
}

type SnapshotRepo interface {
	SaveTokens(chainID uint, tokens []models.Token) error
	GetTokens(chainID uint) ([]models.Token, error)

	SavePairs(chainID uint, pairs []models.UniswapV2Pair) error
	SetPair(pair models.UniswapV2Pair) error
	GetPairs(chainID uint) ([]models.UniswapV2Pair, error)

	SetBlockNumber(chainID uint, blockNumber uint64) error
	GetBlockNumber(chainID uint) (uint64, error)

	Close() error
}

type SnapshotRepoConfig struct {
	Path    string
	Timeout time.Duration
}

type snapshotRepo struct {
	db *bolt.DB
}

func New(config SnapshotRepoConfig) (SnapshotRepo, error) {
	if config.Path == "" {
		return nil, errors.New("snapshot repo path cannot be empty")
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = time.Second
	}

	db, err := bolt.Open(config.Path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", config.Path, err)
	}

	return &snapshotRepo{db: db}, nil
}

func (r *snapshotRepo) Close() error {
	return r.db.Close()
}

// chainBucketFor returns the per-chain bucket nested under name, creating both when
// the transaction is writable.
func chainBucketFor(tx *bolt.Tx, name string, chainID uint) (*bolt.Bucket, error) {
	if !tx.Writable() {
		root := tx.Bucket([]byte(name))
		if root == nil {
			return nil, nil
		}
		return root.Bucket(chainBucket(chainID)), nil
	}

	root, err := tx.CreateBucketIfNotExists([]byte(name))
	if err != nil {
		return nil, err
	}
	return root.CreateBucketIfNotExists(chainBucket(chainID))
}

func (r *snapshotRepo) SaveTokens(chainID uint, tokens []models.Token) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket, err := chainBucketFor(tx, TOKENS_BUCKET, chainID)
		if err != nil {
			return err
		}

		for _, token := range tokens {
			tokenJSON, err := token.GetJSON()
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(token.GetIdentificator().String()), tokenJSON); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *snapshotRepo) GetTokens(chainID uint) ([]models.Token, error) {
	tokens := []models.Token{}
	err := r.db.View(func(tx *bolt.Tx) error {
		bucket, err := chainBucketFor(tx, TOKENS_BUCKET, chainID)
		if err != nil || bucket == nil {
			return err
		}

		return bucket.ForEach(func(k, v []byte) error {
			var token models.Token
			if err := token.FillFromJSON(v); err != nil {
				return fmt.Errorf("token %s: %w", k, err)
			}
			tokens = append(tokens, token)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

func putPair(bucket *bolt.Bucket, pair models.UniswapV2Pair) error {
	pairJSON, err := pair.GetJSON()
	if err != nil {
		return err
	}
	return bucket.Put([]byte(pair.GetIdentificator().String()), pairJSON)
}

func (r *snapshotRepo) SavePairs(chainID uint, pairs []models.UniswapV2Pair) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket, err := chainBucketFor(tx, PAIRS_BUCKET, chainID)
		if err != nil {
			return err
		}

		for _, pair := range pairs {
			if pair.ChainID != chainID {
				return fmt.Errorf("pair %s is on chain %d, not %d", pair.Address, pair.ChainID, chainID)
			}
			if err := putPair(bucket, pair); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *snapshotRepo) SetPair(pair models.UniswapV2Pair) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket, err := chainBucketFor(tx, PAIRS_BUCKET, pair.ChainID)
		if err != nil {
			return err
		}
		return putPair(bucket, pair)
	})
}

func (r *snapshotRepo) GetPairs(chainID uint) ([]models.UniswapV2Pair, error) {
	pairs := []models.UniswapV2Pair{}
	err := r.db.View(func(tx *bolt.Tx) error {
		bucket, err := chainBucketFor(tx, PAIRS_BUCKET, chainID)
		if err != nil || bucket == nil {
			return err
		}

		return bucket.ForEach(func(k, v []byte) error {
			var pair models.UniswapV2Pair
			if err := pair.FillFromJSON(v); err != nil {
				return fmt.Errorf("pair %s: %w", k, err)
			}
			pairs = append(pairs, pair)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return pairs, nil
}

func (r *snapshotRepo) SetBlockNumber(chainID uint, blockNumber uint64) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		bucket, err := chainBucketFor(tx, META_BUCKET, chainID)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(BLOCK_NUMBER_KEY), []byte(strconv.FormatUint(blockNumber, 10)))
	})
}

func (r *snapshotRepo) GetBlockNumber(chainID uint) (uint64, error) {
	var blockNumber uint64
	err := r.db.View(func(tx *bolt.Tx) error {
		bucket, err := chainBucketFor(tx, META_BUCKET, chainID)
		if err != nil {
			return err
		}
		if bucket == nil {
			return ErrNoBlockNumber
		}

		value := bucket.Get([]byte(BLOCK_NUMBER_KEY))
		if value == nil {
			return ErrNoBlockNumber
		}

		blockNumber, err = strconv.ParseUint(string(value), 10, 64)
		return err
	})

	return blockNumber, err
}
