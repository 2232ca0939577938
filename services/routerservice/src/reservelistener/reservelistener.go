package reservelistener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/alexkalak/go_v2_router/common/models"
	"github.com/alexkalak/go_v2_router/services/routerservice/src/routerservice"
	"github.com/segmentio/kafka-go"
)

const (
	BLOCK_OVER       = "BlockOver"
	SYNC_KAFKA_EVENT = "Sync"
)

var ErrInvalidEvent = errors.New("invalid reserve event")

type pairEventMetaData struct {
	Type        string `json:"type"`
	BlockNumber uint64 `json:"block_number"`
	Address     string `json:"address"`
	TxHash      string `json:"tx_hash"`
}

type syncEventData struct {
	Reserve0 *big.Int `json:"reserve0"`
	Reserve1 *big.Int `json:"reserve1"`
}

type pairEvent struct {
	Data syncEventData `json:"data"`
}

type ReserveUpdater interface {
	ChainID() uint
	ApplyReserveUpdate(update routerservice.ReserveUpdate) (models.UniswapV2Pair, error)
}

type ReserveListener interface {
	Start(ctx context.Context) error
}

type ReserveListenerConfig struct {
	KafkaServer string
	Topic       string
	GroupID     string
}

func (c *ReserveListenerConfig) validate() error {
	if c.KafkaServer == "" {
		return errors.New("reserve listener config KafkaServer not set")
	}
	if c.Topic == "" {
		return errors.New("reserve listener config Topic not set")
	}
	if c.GroupID == "" {
		return errors.New("reserve listener config GroupID not set")
	}
	return nil
}

type ReserveListenerDependencies struct {
	Updater ReserveUpdater
	Sinks   []routerservice.ReserveSink
	Logger  *slog.Logger
}

func (d *ReserveListenerDependencies) validate() error {
	if d.Updater == nil {
		return errors.New("reserve listener dependencies Updater cannot be nil")
	}
	if d.Logger == nil {
		return errors.New("reserve listener dependencies Logger cannot be nil")
	}
	return nil
}

type reserveListener struct {
	config  ReserveListenerConfig
	updater ReserveUpdater
	sinks   []routerservice.ReserveSink
	logger  *slog.Logger

	currentCheckingBlock    uint64
	currentBlockPairChanges map[models.V2PairIdentificator]models.UniswapV2Pair
}

func New(config ReserveListenerConfig, dependencies ReserveListenerDependencies) (ReserveListener, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if err := dependencies.validate(); err != nil {
		return nil, err
	}

	return newListener(config, dependencies), nil
}

func newListener(config ReserveListenerConfig, dependencies ReserveListenerDependencies) *reserveListener {
	return &reserveListener{
		config:                  config,
		updater:                 dependencies.Updater,
		sinks:                   dependencies.Sinks,
		logger:                  dependencies.Logger,
		currentBlockPairChanges: map[models.V2PairIdentificator]models.UniswapV2Pair{},
	}
}

// Start consumes events until ctx is cancelled. Graph updates happen per Sync event;
// sinks see a block's changes only after its BlockOver event.
func (l *reserveListener) Start(ctx context.Context) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{l.config.KafkaServer},
		Topic:   l.config.Topic,
		GroupID: l.config.GroupID,
	})
	defer reader.Close()

	lastTimeLogged := time.Now()
	msgCount := 0

	l.logger.Info("listening for reserve events", "topic", l.config.Topic)
	for {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("failed to read message", "err", err)
			continue
		}

		msgCount++
		if time.Since(lastTimeLogged) > time.Minute {
			l.logger.Info("reserve events handled", "count", msgCount, "block", l.currentCheckingBlock)
			msgCount = 0
			lastTimeLogged = time.Now()
		}

		if err := l.handleMessage(m.Value); err != nil {
			l.logger.Warn("skipping message", "offset", m.Offset, "err", err)
		}
	}
}

func (l *reserveListener) handleMessage(value []byte) error {
	metaData := pairEventMetaData{}
	if err := json.Unmarshal(value, &metaData); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	switch metaData.Type {
	case BLOCK_OVER:
		if metaData.BlockNumber != l.currentCheckingBlock {
			return nil
		}
		return l.flush(metaData.BlockNumber)
	case SYNC_KAFKA_EVENT:
		return l.handleSyncEvent(metaData, value)
	default:
		return nil
	}
}

func (l *reserveListener) handleSyncEvent(metaData pairEventMetaData, value []byte) error {
	event := pairEvent{}
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if metaData.Address == "" || event.Data.Reserve0 == nil || event.Data.Reserve1 == nil {
		return fmt.Errorf("%w: sync without address or reserves", ErrInvalidEvent)
	}

	l.currentCheckingBlock = metaData.BlockNumber

	pair, err := l.updater.ApplyReserveUpdate(routerservice.ReserveUpdate{
		Address:     metaData.Address,
		Reserve0:    event.Data.Reserve0,
		Reserve1:    event.Data.Reserve1,
		BlockNumber: metaData.BlockNumber,
	})
	if err != nil {
		if errors.Is(err, routerservice.ErrUnknownPair) {
			return nil
		}
		return err
	}

	key := models.V2PairIdentificator{Address: strings.ToLower(pair.Address), ChainID: pair.ChainID}
	l.currentBlockPairChanges[key] = pair

	return nil
}

func (l *reserveListener) flush(blockNumber uint64) error {
	pairs := make([]models.UniswapV2Pair, 0, len(l.currentBlockPairChanges))
	for _, pair := range l.currentBlockPairChanges {
		pairs = append(pairs, pair)
	}
	clear(l.currentBlockPairChanges)

	var errs []error
	for _, sink := range l.sinks {
		for _, pair := range pairs {
			if err := sink.SetPair(pair); err != nil {
				errs = append(errs, err)
			}
		}
		if err := sink.SetBlockNumber(l.updater.ChainID(), blockNumber); err != nil {
			errs = append(errs, err)
		}
	}

	l.logger.Debug("block flushed", "block", blockNumber, "pairs", len(pairs))
	return errors.Join(errs...)
}
