// Package eventcollectorservice turns Sync logs of tracked v2 pairs into reserve events
// on Kafka, closing every block with a BlockOver event.
package eventcollectorservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

const quietDelay = 150 * time.Millisecond

const syncEventABI = `[{"anonymous":false,"inputs":[{"indexed":false,"internalType":"uint112","name":"reserve0","type":"uint112"},{"indexed":false,"internalType":"uint112","name":"reserve1","type":"uint112"}],"name":"Sync","type":"event"}]`

var ErrInvalidSyncLog = errors.New("invalid sync log")

type RPCEventsCollectorService interface {
	Start(ctx context.Context) error
}

type RPCEventsCollectorServiceConfig struct {
	ChainID      uint
	MainnetRPCWS string
	KafkaServer  string
	KafkaTopic   string
}

func (d *RPCEventsCollectorServiceConfig) validate() error {
	if d.ChainID == 0 {
		return errors.New("RPCEventsCollectorServiceConfig.ChainID cannot be empty")
	}
	if d.MainnetRPCWS == "" {
		return errors.New("RPCEventsCollectorServiceConfig.MainnetRPCWS cannot be empty")
	}
	if d.KafkaServer == "" {
		return errors.New("RPCEventsCollectorServiceConfig.KafkaServer cannot be empty")
	}
	if d.KafkaTopic == "" {
		return errors.New("RPCEventsCollectorServiceConfig.KafkaTopic cannot be empty")
	}

	return nil
}

type RPCEventCollectorServiceDependencies struct {
	// Addresses are the pairs whose Sync logs get forwarded.
	Addresses []common.Address
	Logger    *slog.Logger
}

func (d *RPCEventCollectorServiceDependencies) validate() error {
	if len(d.Addresses) == 0 {
		return errors.New("RPCEventCollectorServiceDependencies.Addresses cannot be empty")
	}
	if d.Logger == nil {
		return errors.New("RPCEventCollectorServiceDependencies.Logger cannot be nil")
	}
	return nil
}

type rpcEventsCollector struct {
	config RPCEventsCollectorServiceConfig
	logger *slog.Logger

	syncABI abi.ABI
	syncSig common.Hash

	kafkaClient kafkaClient
	addresses   map[common.Address]any

	lastLogTime           time.Time
	lastLogBlockNumber    uint64
	lastOveredBlockNumber uint64
}

func New(config RPCEventsCollectorServiceConfig, dependencies RPCEventCollectorServiceDependencies) (RPCEventsCollectorService, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	kafkaClient := newKafkaClient(kafkaClientConfig{
		KafkaServer: config.KafkaServer,
		KafkaTopic:  config.KafkaTopic,
	})
	return newCollector(config, dependencies, kafkaClient)
}

func newCollector(config RPCEventsCollectorServiceConfig, dependencies RPCEventCollectorServiceDependencies, kafkaClient kafkaClient) (*rpcEventsCollector, error) {
	syncABI, err := abi.JSON(strings.NewReader(syncEventABI))
	if err != nil {
		return nil, err
	}

	addresses := make(map[common.Address]any, len(dependencies.Addresses))
	for _, address := range dependencies.Addresses {
		addresses[address] = struct{}{}
	}

	return &rpcEventsCollector{
		config:      config,
		logger:      dependencies.Logger,
		syncABI:     syncABI,
		syncSig:     syncABI.Events[SYNC_KAFKA_EVENT].ID,
		kafkaClient: kafkaClient,
		addresses:   addresses,
	}, nil
}

// Start forwards logs until ctx is done or a subscription fails. The caller decides
// whether to start again.
func (s *rpcEventsCollector) Start(ctx context.Context) error {
	client, err := ethclient.DialContext(ctx, s.config.MainnetRPCWS)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.config.MainnetRPCWS, err)
	}
	defer client.Close()
	defer s.kafkaClient.close()

	// Sync has the same signature on every fork, so filter by topic and match
	// addresses here.
	query := ethereum.FilterQuery{
		Topics: [][]common.Hash{{s.syncSig}},
	}

	headCh := make(chan *types.Header, 1024)
	logsCh := make(chan types.Log, 1024)

	headSub, err := client.SubscribeNewHead(ctx, headCh)
	if err != nil {
		return err
	}
	defer headSub.Unsubscribe()

	logsSub, err := client.SubscribeFilterLogs(ctx, query, logsCh)
	if err != nil {
		return err
	}
	defer logsSub.Unsubscribe()

	s.logger.Info("collecting sync events", "pairs", len(s.addresses), "chain_id", s.config.ChainID)

	ticker := time.NewTicker(quietDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-logsSub.Err():
			return fmt.Errorf("logs subscription: %w", err)
		case err := <-headSub.Err():
			return fmt.Errorf("head subscription: %w", err)
		case head := <-headCh:
			if head == nil {
				continue
			}
			if err := s.handleHead(ctx, head.Number.Uint64()); err != nil {
				return err
			}
		case lg := <-logsCh:
			if err := s.handleLog(ctx, lg); err != nil {
				return err
			}
		case now := <-ticker.C:
			if err := s.handleTick(ctx, now); err != nil {
				return err
			}
		}
	}
}

func (s *rpcEventsCollector) decodeSyncLog(lg types.Log) (pairEvent, error) {
	if len(lg.Topics) == 0 || lg.Topics[0] != s.syncSig {
		return pairEvent{}, fmt.Errorf("%w: unexpected topic", ErrInvalidSyncLog)
	}

	values, err := s.syncABI.Events[SYNC_KAFKA_EVENT].Inputs.Unpack(lg.Data)
	if err != nil {
		return pairEvent{}, fmt.Errorf("%w: %v", ErrInvalidSyncLog, err)
	}
	if len(values) != 2 {
		return pairEvent{}, fmt.Errorf("%w: %d values", ErrInvalidSyncLog, len(values))
	}
	reserve0, ok0 := values[0].(*big.Int)
	reserve1, ok1 := values[1].(*big.Int)
	if !ok0 || !ok1 {
		return pairEvent{}, fmt.Errorf("%w: reserves are not integers", ErrInvalidSyncLog)
	}

	return pairEvent{
		Type:        SYNC_KAFKA_EVENT,
		Data:        &syncEventData{Reserve0: reserve0, Reserve1: reserve1},
		BlockNumber: lg.BlockNumber,
		Address:     strings.ToLower(lg.Address.Hex()),
		TxHash:      lg.TxHash.Hex(),
	}, nil
}

// pendingBlock reports whether the last block with logs has not been closed yet.
func (s *rpcEventsCollector) pendingBlock() bool {
	return s.lastLogBlockNumber > s.lastOveredBlockNumber
}

func (s *rpcEventsCollector) blockOver(ctx context.Context) error {
	err := s.kafkaClient.sendPairEvents(ctx, pairEvent{
		Type:        BLOCK_OVER,
		BlockNumber: s.lastLogBlockNumber,
	})
	if err != nil {
		return err
	}
	s.lastOveredBlockNumber = s.lastLogBlockNumber
	s.logger.Debug("block over", "block", s.lastLogBlockNumber)
	return nil
}

func (s *rpcEventsCollector) handleLog(ctx context.Context, lg types.Log) error {
	if lg.Removed {
		return nil
	}
	if _, ok := s.addresses[lg.Address]; !ok {
		return nil
	}
	if lg.BlockNumber <= s.lastOveredBlockNumber {
		s.logger.Warn("log for a closed block", "block", lg.BlockNumber, "address", lg.Address.Hex())
		return nil
	}

	event, err := s.decodeSyncLog(lg)
	if err != nil {
		s.logger.Warn("skipping log", "tx", lg.TxHash.Hex(), "err", err)
		return nil
	}

	if s.pendingBlock() && lg.BlockNumber > s.lastLogBlockNumber {
		if err := s.blockOver(ctx); err != nil {
			return err
		}
	}

	if err := s.kafkaClient.sendPairEvents(ctx, event); err != nil {
		return err
	}
	s.lastLogTime = time.Now()
	s.lastLogBlockNumber = max(s.lastLogBlockNumber, lg.BlockNumber)
	return nil
}

// handleHead closes the pending block once the chain has moved past it.
func (s *rpcEventsCollector) handleHead(ctx context.Context, blockNumber uint64) error {
	if s.pendingBlock() && blockNumber > s.lastLogBlockNumber {
		return s.blockOver(ctx)
	}
	return nil
}

// handleTick closes the pending block after quietDelay without logs.
func (s *rpcEventsCollector) handleTick(ctx context.Context, now time.Time) error {
	if s.pendingBlock() && now.Sub(s.lastLogTime) > quietDelay {
		return s.blockOver(ctx)
	}
	return nil
}
