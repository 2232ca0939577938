package rpcclient

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/alexkalak/go_v2_router/common/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Storage layout of UniswapV2Pair. Slot 8 packs reserve0 (low 112 bits), reserve1
// (next 112 bits) and blockTimestampLast (top 32 bits).
const (
	token0Slot   = 6
	token1Slot   = 7
	reservesSlot = 8
)

const chunkSize = 50
const maxParallelChunks = 7

var ErrTokenMismatch = errors.New("pair tokens on chain do not match the stored pair")
var ErrUnknownChain = errors.New("no rpc client for chain")

var uint112Mask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 112), big.NewInt(1))

type RpcClient interface {
	BlockNumber(ctx context.Context, chainID uint) (uint64, error)
	GetPairsData(ctx context.Context, pairs []models.UniswapV2Pair, chainID uint, blockNumber *big.Int) ([]models.UniswapV2Pair, error)
}

type RpcClientConfig struct {
	EthMainnetHttp string
}

type rpcClient struct {
	//chainID -> client
	clients map[uint]*rpc.Client
}

func NewRpcClient(config RpcClientConfig) (RpcClient, error) {
	ethClient, err := ethclient.Dial(config.EthMainnetHttp)
	if err != nil {
		return nil, err
	}

	return newWithClients(map[uint]*rpc.Client{
		1: ethClient.Client(),
	}), nil
}

func newWithClients(clients map[uint]*rpc.Client) *rpcClient {
	return &rpcClient{clients: clients}
}

func (c *rpcClient) client(chainID uint) (*rpc.Client, error) {
	client, ok := c.clients[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChain, chainID)
	}
	return client, nil
}

func (c *rpcClient) BlockNumber(ctx context.Context, chainID uint) (uint64, error) {
	client, err := c.client(chainID)
	if err != nil {
		return 0, err
	}

	return ethclient.NewClient(client).BlockNumber(ctx)
}

func slotKey(slot int64) common.Hash {
	return common.BigToHash(big.NewInt(slot))
}

func blockArg(blockNumber *big.Int) string {
	if blockNumber == nil {
		return "latest"
	}
	return hexutil.EncodeBig(blockNumber)
}

// unpackReserves splits the packed reserves slot.
func unpackReserves(word []byte) (*big.Int, *big.Int) {
	packed := new(big.Int).SetBytes(word)
	reserve0 := new(big.Int).And(packed, uint112Mask)
	reserve1 := new(big.Int).Rsh(packed, 112)
	reserve1.And(reserve1, uint112Mask)
	return reserve0, reserve1
}

func (c *rpcClient) getChunk(ctx context.Context, client *rpc.Client, pairs []models.UniswapV2Pair, blockNumber *big.Int) ([]models.UniswapV2Pair, error) {
	results := make([]hexutil.Bytes, len(pairs)*3)
	batch := make([]rpc.BatchElem, 0, len(results))
	for i, pair := range pairs {
		address := common.HexToAddress(pair.Address)
		for j, slot := range []int64{token0Slot, token1Slot, reservesSlot} {
			batch = append(batch, rpc.BatchElem{
				Method: "eth_getStorageAt",
				Args:   []any{address, slotKey(slot), blockArg(blockNumber)},
				Result: &results[i*3+j],
			})
		}
	}

	if err := client.BatchCallContext(ctx, batch); err != nil {
		return nil, err
	}

	updated := make([]models.UniswapV2Pair, 0, len(pairs))
	for i, pair := range pairs {
		for _, elem := range batch[i*3 : i*3+3] {
			if elem.Error != nil {
				return nil, fmt.Errorf("pair %s: %w", pair.Address, elem.Error)
			}
		}

		token0 := common.BytesToAddress(results[i*3]).Hex()
		token1 := common.BytesToAddress(results[i*3+1]).Hex()
		if (pair.Token0 != "" && !strings.EqualFold(pair.Token0, token0)) ||
			(pair.Token1 != "" && !strings.EqualFold(pair.Token1, token1)) {
			return nil, fmt.Errorf("%w: %s", ErrTokenMismatch, pair.Address)
		}

		pair.Token0 = token0
		pair.Token1 = token1
		pair.Amount0, pair.Amount1 = unpackReserves(results[i*3+2])
		if blockNumber != nil {
			pair.BlockNumber = blockNumber.Uint64()
		}

		updated = append(updated, pair)
	}

	return updated, nil
}

// GetPairsData reads token addresses and reserves of pairs at blockNumber (nil means
// latest). Chunks are fetched as JSON-RPC batches, a few at a time. Output order follows
// pairs.
func (c *rpcClient) GetPairsData(ctx context.Context, pairs []models.UniswapV2Pair, chainID uint, blockNumber *big.Int) ([]models.UniswapV2Pair, error) {
	client, err := c.client(chainID)
	if err != nil {
		return nil, err
	}

	numChunks := (len(pairs) + chunkSize - 1) / chunkSize
	chunks := make([][]models.UniswapV2Pair, numChunks)
	errs := make([]error, numChunks)

	sem := make(chan struct{}, maxParallelChunks)
	wg := sync.WaitGroup{}
	for i := range numChunks {
		end := min((i+1)*chunkSize, len(pairs))
		slice := pairs[i*chunkSize : end]

		sem <- struct{}{}
		wg.Go(func() {
			defer func() { <-sem }()
			chunks[i], errs[i] = c.getChunk(ctx, client, slice, blockNumber)
		})
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	res := make([]models.UniswapV2Pair, 0, len(pairs))
	for _, chunk := range chunks {
		res = append(res, chunk...)
	}

	return res, nil
}
