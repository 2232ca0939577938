package reservelistener

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/alexkalak/go_v2_router/common/helpers/logging"
	"github.com/alexkalak/go_v2_router/common/models"
	"github.com/alexkalak/go_v2_router/services/routerservice/src/routerservice"
	"github.com/stretchr/testify/require"
)

type fakeUpdater struct {
	known   map[string]bool
	updates []routerservice.ReserveUpdate
}

func (f *fakeUpdater) ChainID() uint { return 1 }

func (f *fakeUpdater) ApplyReserveUpdate(update routerservice.ReserveUpdate) (models.UniswapV2Pair, error) {
	if !f.known[strings.ToLower(update.Address)] {
		return models.UniswapV2Pair{}, routerservice.ErrUnknownPair
	}
	f.updates = append(f.updates, update)
	return models.UniswapV2Pair{
		Address:     update.Address,
		ChainID:     1,
		Amount0:     update.Reserve0,
		Amount1:     update.Reserve1,
		BlockNumber: update.BlockNumber,
	}, nil
}

type fakeSink struct {
	pairs  map[string]models.UniswapV2Pair
	blocks []uint64
	err    error
}

func (f *fakeSink) SetPair(pair models.UniswapV2Pair) error {
	if f.err != nil {
		return f.err
	}
	f.pairs[strings.ToLower(pair.Address)] = pair
	return nil
}

func (f *fakeSink) SetBlockNumber(_ uint, blockNumber uint64) error {
	f.blocks = append(f.blocks, blockNumber)
	return nil
}

const pairA = "0xAE461cA67B15dc8dc81CE7615e0320dA1A9aB8D5"

func syncMessage(block uint64, address string, reserve0, reserve1 int64) []byte {
	return []byte(fmt.Sprintf(`{"type":"Sync","block_number":%d,"address":%q,"tx_hash":"0x01","data":{"reserve0":%d,"reserve1":%d}}`,
		block, address, reserve0, reserve1))
}

func blockOver(block uint64) []byte {
	return []byte(fmt.Sprintf(`{"type":"BlockOver","block_number":%d}`, block))
}

func newTestListener(sinks ...routerservice.ReserveSink) (*reserveListener, *fakeUpdater) {
	updater := &fakeUpdater{known: map[string]bool{strings.ToLower(pairA): true}}
	return newListener(ReserveListenerConfig{}, ReserveListenerDependencies{
		Updater: updater,
		Sinks:   sinks,
		Logger:  logging.Discard(),
	}), updater
}

func TestNewValidation(t *testing.T) {
	_, err := New(ReserveListenerConfig{}, ReserveListenerDependencies{})
	require.Error(t, err)

	_, err = New(ReserveListenerConfig{KafkaServer: "localhost:9092", Topic: "reserves", GroupID: "router"}, ReserveListenerDependencies{})
	require.Error(t, err)
}

func TestSyncThenBlockOver(t *testing.T) {
	sink := &fakeSink{pairs: map[string]models.UniswapV2Pair{}}
	listener, updater := newTestListener(sink)

	require.NoError(t, listener.handleMessage(syncMessage(100, pairA, 10, 20)))
	require.NoError(t, listener.handleMessage(syncMessage(100, pairA, 11, 19)))
	require.Len(t, updater.updates, 2)
	require.Empty(t, sink.pairs)

	// a BlockOver for another block leaves the pending changes alone
	require.NoError(t, listener.handleMessage(blockOver(99)))
	require.Empty(t, sink.pairs)

	require.NoError(t, listener.handleMessage(blockOver(100)))
	require.Equal(t, []uint64{100}, sink.blocks)
	require.Equal(t, big.NewInt(11), sink.pairs[strings.ToLower(pairA)].Amount0)
	require.Empty(t, listener.currentBlockPairChanges)
}

func TestUnknownPairAndBadMessages(t *testing.T) {
	sink := &fakeSink{pairs: map[string]models.UniswapV2Pair{}}
	listener, updater := newTestListener(sink)

	require.NoError(t, listener.handleMessage(syncMessage(5, "0x0000000000000000000000000000000000000009", 1, 1)))
	require.Empty(t, updater.updates)

	require.ErrorIs(t, listener.handleMessage([]byte("{")), ErrInvalidEvent)
	require.ErrorIs(t, listener.handleMessage([]byte(`{"type":"Sync","block_number":5,"address":"0x01"}`)), ErrInvalidEvent)
	require.NoError(t, listener.handleMessage([]byte(`{"type":"Swap","block_number":5}`)))
}

func TestFlushCollectsSinkErrors(t *testing.T) {
	failing := &fakeSink{pairs: map[string]models.UniswapV2Pair{}, err: errors.New("redis down")}
	healthy := &fakeSink{pairs: map[string]models.UniswapV2Pair{}}
	listener, _ := newTestListener(failing, healthy)

	require.NoError(t, listener.handleMessage(syncMessage(7, pairA, 3, 4)))
	err := listener.handleMessage(blockOver(7))
	require.ErrorContains(t, err, "redis down")

	require.Len(t, healthy.pairs, 1)
	require.Equal(t, []uint64{7}, healthy.blocks)
}
