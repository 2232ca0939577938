package eventcollectorservice

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/alexkalak/go_v2_router/common/helpers/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

var (
	trackedPair   = common.HexToAddress("0xA478c2975Ab1Ea89e8196811F51A7B7Ade33eB11")
	untrackedPair = common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc")
)

type fakeWriter struct {
	messages []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func newTestCollector(t *testing.T) (*rpcEventsCollector, *fakeWriter) {
	t.Helper()

	writer := &fakeWriter{}
	collector, err := newCollector(
		RPCEventsCollectorServiceConfig{ChainID: 1, MainnetRPCWS: "ws://localhost", KafkaServer: "localhost:9092", KafkaTopic: "reserves"},
		RPCEventCollectorServiceDependencies{Addresses: []common.Address{trackedPair}, Logger: logging.Discard()},
		kafkaClient{writer: writer},
	)
	require.NoError(t, err)
	return collector, writer
}

func (s *rpcEventsCollector) syncLog(t *testing.T, address common.Address, blockNumber uint64, reserve0, reserve1 int64) types.Log {
	t.Helper()

	data, err := s.syncABI.Events[SYNC_KAFKA_EVENT].Inputs.Pack(big.NewInt(reserve0), big.NewInt(reserve1))
	require.NoError(t, err)

	return types.Log{
		Address:     address,
		Topics:      []common.Hash{s.syncSig},
		Data:        data,
		BlockNumber: blockNumber,
		TxHash:      common.HexToHash("0x01"),
	}
}

func decodeEvents(t *testing.T, messages []kafka.Message) []pairEvent {
	t.Helper()

	events := make([]pairEvent, len(messages))
	for i, message := range messages {
		require.NoError(t, json.Unmarshal(message.Value, &events[i]))
	}
	return events
}

func TestNewValidation(t *testing.T) {
	_, err := New(RPCEventsCollectorServiceConfig{}, RPCEventCollectorServiceDependencies{})
	require.Error(t, err)

	_, err = New(
		RPCEventsCollectorServiceConfig{ChainID: 1, MainnetRPCWS: "ws://localhost", KafkaServer: "localhost:9092", KafkaTopic: "reserves"},
		RPCEventCollectorServiceDependencies{Logger: logging.Discard()},
	)
	require.ErrorContains(t, err, "Addresses")
}

func TestSyncSignature(t *testing.T) {
	collector, _ := newTestCollector(t)
	require.Equal(t, "0x1c411e9a96e071241c2f21f7726b17ae89e3cab4c78be50e062b03a9fffbbad1", collector.syncSig.Hex())
}

func TestDecodeSyncLog(t *testing.T) {
	collector, _ := newTestCollector(t)

	event, err := collector.decodeSyncLog(collector.syncLog(t, trackedPair, 7, 1000, 2500))
	require.NoError(t, err)
	require.Equal(t, SYNC_KAFKA_EVENT, event.Type)
	require.Equal(t, uint64(7), event.BlockNumber)
	require.Equal(t, strings.ToLower(trackedPair.Hex()), event.Address)
	require.Equal(t, "1000", event.Data.Reserve0.String())
	require.Equal(t, "2500", event.Data.Reserve1.String())

	encoded, err := json.Marshal(event)
	require.NoError(t, err)
	require.Contains(t, string(encoded), `"data":{"reserve0":1000,"reserve1":2500}`)

	bad := collector.syncLog(t, trackedPair, 7, 1, 1)
	bad.Data = bad.Data[:10]
	_, err = collector.decodeSyncLog(bad)
	require.ErrorIs(t, err, ErrInvalidSyncLog)

	bad.Topics = []common.Hash{common.HexToHash("0x02")}
	_, err = collector.decodeSyncLog(bad)
	require.ErrorIs(t, err, ErrInvalidSyncLog)
}

func TestBlockOverOnNextBlockAndHead(t *testing.T) {
	ctx := context.Background()
	collector, writer := newTestCollector(t)

	require.NoError(t, collector.handleLog(ctx, collector.syncLog(t, trackedPair, 10, 1, 2)))
	require.NoError(t, collector.handleLog(ctx, collector.syncLog(t, trackedPair, 10, 3, 4)))
	require.NoError(t, collector.handleLog(ctx, collector.syncLog(t, trackedPair, 11, 5, 6)))

	require.NoError(t, collector.handleHead(ctx, 11))
	require.NoError(t, collector.handleHead(ctx, 12))
	require.NoError(t, collector.handleHead(ctx, 13))

	events := decodeEvents(t, writer.messages)
	require.Len(t, events, 5)

	kinds := []string{}
	blocks := []uint64{}
	for _, event := range events {
		kinds = append(kinds, event.Type)
		blocks = append(blocks, event.BlockNumber)
	}
	require.Equal(t, []string{SYNC_KAFKA_EVENT, SYNC_KAFKA_EVENT, BLOCK_OVER, SYNC_KAFKA_EVENT, BLOCK_OVER}, kinds)
	require.Equal(t, []uint64{10, 10, 10, 11, 11}, blocks)
	require.Equal(t, "3", events[1].Data.Reserve0.String())
	require.Nil(t, events[2].Data)
}

func TestSkippedLogs(t *testing.T) {
	ctx := context.Background()
	collector, writer := newTestCollector(t)

	require.NoError(t, collector.handleLog(ctx, collector.syncLog(t, untrackedPair, 10, 1, 2)))

	removed := collector.syncLog(t, trackedPair, 10, 1, 2)
	removed.Removed = true
	require.NoError(t, collector.handleLog(ctx, removed))
	require.Empty(t, writer.messages)

	require.NoError(t, collector.handleLog(ctx, collector.syncLog(t, trackedPair, 10, 1, 2)))
	require.NoError(t, collector.handleHead(ctx, 11))
	require.Len(t, writer.messages, 2)

	// block 10 is closed already
	require.NoError(t, collector.handleLog(ctx, collector.syncLog(t, trackedPair, 10, 9, 9)))
	require.Len(t, writer.messages, 2)
}

func TestBlockOverAfterQuietDelay(t *testing.T) {
	ctx := context.Background()
	collector, writer := newTestCollector(t)

	require.NoError(t, collector.handleTick(ctx, time.Now()))
	require.Empty(t, writer.messages)

	require.NoError(t, collector.handleLog(ctx, collector.syncLog(t, trackedPair, 20, 1, 2)))
	require.NoError(t, collector.handleTick(ctx, collector.lastLogTime))
	require.Len(t, writer.messages, 1)

	require.NoError(t, collector.handleTick(ctx, collector.lastLogTime.Add(time.Second)))
	require.NoError(t, collector.handleTick(ctx, collector.lastLogTime.Add(2*time.Second)))

	events := decodeEvents(t, writer.messages)
	require.Len(t, events, 2)
	require.Equal(t, BLOCK_OVER, events[1].Type)
	require.Equal(t, uint64(20), events[1].BlockNumber)
}

func TestLateLogKeepsLatestBlock(t *testing.T) {
	ctx := context.Background()
	collector, writer := newTestCollector(t)

	require.NoError(t, collector.handleLog(ctx, collector.syncLog(t, trackedPair, 10, 1, 2)))
	require.NoError(t, collector.handleLog(ctx, collector.syncLog(t, trackedPair, 12, 3, 4)))
	// block 11 is still open when its log shows up after block 12
	require.NoError(t, collector.handleLog(ctx, collector.syncLog(t, trackedPair, 11, 5, 6)))
	require.Equal(t, uint64(12), collector.lastLogBlockNumber)

	require.NoError(t, collector.handleHead(ctx, 13))

	events := decodeEvents(t, writer.messages)
	require.Len(t, events, 5)
	require.Equal(t, BLOCK_OVER, events[4].Type)
	require.Equal(t, uint64(12), events[4].BlockNumber)
}
