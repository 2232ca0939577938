package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexkalak/go_v2_router/common/helpers/envhelper"
	"github.com/alexkalak/go_v2_router/common/helpers/logging"
	"github.com/alexkalak/go_v2_router/common/repo/snapshotrepo"
	"github.com/alexkalak/go_v2_router/services/eventcollectorservice/src/eventcollectorservice"
	"github.com/ethereum/go-ethereum/common"
)

const restartDelay = 3 * time.Second

func main() {
	env, err := envhelper.GetEnv()
	if err != nil {
		slog.Error("loading env", "err", err)
		os.Exit(1)
	}
	logger, err := logging.NewLogger(env.LOG_LEVEL)
	if err != nil {
		slog.Error("creating logger", "err", err)
		os.Exit(1)
	}

	err = env.Require(envhelper.ETH_MAINNET_RPC_WS, envhelper.KAFKA_SERVER, envhelper.KAFKA_PAIR_RESERVES_TOPIC, envhelper.SNAPSHOT_PATH)
	if err != nil {
		logger.Error("missing configuration", "err", err)
		os.Exit(1)
	}

	addresses, err := pairAddresses(env)
	if err != nil {
		logger.Error("reading pairs", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for {
		collector, err := eventcollectorservice.New(eventcollectorservice.RPCEventsCollectorServiceConfig{
			ChainID:      env.CHAIN_ID,
			MainnetRPCWS: env.ETH_MAINNET_RPC_WS,
			KafkaServer:  env.KAFKA_SERVER,
			KafkaTopic:   env.KAFKA_PAIR_RESERVES_TOPIC,
		}, eventcollectorservice.RPCEventCollectorServiceDependencies{
			Addresses: addresses,
			Logger:    logger,
		})
		if err != nil {
			logger.Error("creating collector", "err", err)
			os.Exit(1)
		}

		err = collector.Start(ctx)
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("collector stopped, restarting", "err", err, "delay", restartDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(restartDelay):
		}
	}
}

// pairAddresses reads the non dusty pairs of the snapshot and releases the file so the
// router can keep writing to it.
func pairAddresses(env *envhelper.Environment) ([]common.Address, error) {
	snapshot, err := snapshotrepo.New(snapshotrepo.SnapshotRepoConfig{Path: env.SNAPSHOT_PATH})
	if err != nil {
		return nil, err
	}
	defer snapshot.Close()

	pairs, err := snapshot.GetPairs(env.CHAIN_ID)
	if err != nil {
		return nil, err
	}

	addresses := make([]common.Address, 0, len(pairs))
	for _, pair := range pairs {
		if pair.IsDusty || !common.IsHexAddress(pair.Address) {
			continue
		}
		addresses = append(addresses, common.HexToAddress(pair.Address))
	}
	return addresses, nil
}
