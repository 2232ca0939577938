package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alexkalak/go_v2_router/common/core/exchangables/v2pairexchangable"
	"github.com/alexkalak/go_v2_router/common/core/trade"
	"github.com/alexkalak/go_v2_router/common/external/rpcclient"
	"github.com/alexkalak/go_v2_router/common/external/subgraphs"
	"github.com/alexkalak/go_v2_router/common/helpers/envhelper"
	"github.com/alexkalak/go_v2_router/common/helpers/logging"
	"github.com/alexkalak/go_v2_router/common/models"
	"github.com/alexkalak/go_v2_router/common/periphery/pgdatabase"
	"github.com/alexkalak/go_v2_router/common/periphery/redisdb"
	"github.com/alexkalak/go_v2_router/common/repo/exchangerepo/v2pairsrepo"
	"github.com/alexkalak/go_v2_router/common/repo/snapshotrepo"
	"github.com/alexkalak/go_v2_router/common/repo/tokenrepo"
	"github.com/alexkalak/go_v2_router/services/routerservice/src/report"
	"github.com/alexkalak/go_v2_router/services/routerservice/src/reservelistener"
	"github.com/alexkalak/go_v2_router/services/routerservice/src/routerservice"
)

type flags struct {
	command   string
	source    string
	in        string
	out       string
	amount    string
	exact     string
	hops      int
	results   int
	slippage  string
	recipient string
}

func parseFlags() flags {
	f := flags{}
	flag.StringVar(&f.command, "command", "quote", "quote | seed | refresh | listen")
	flag.StringVar(&f.source, "source", "snapshot", "where quote and listen read pairs from: snapshot | cache | db")
	flag.StringVar(&f.in, "in", "ETH", "input token address or ETH")
	flag.StringVar(&f.out, "out", "", "output token address or ETH")
	flag.StringVar(&f.amount, "amount", "1", "amount of the exact side in whole units")
	flag.StringVar(&f.exact, "exact", "in", "in | out")
	flag.IntVar(&f.hops, "hops", 3, "max pairs per route")
	flag.IntVar(&f.results, "results", 3, "max routes to show")
	flag.StringVar(&f.slippage, "slippage", "0.5", "slippage tolerance in percent")
	flag.StringVar(&f.recipient, "recipient", "", "recipient; prints router calldata when set")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f, env, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("command failed", "command", f.command, "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, f flags, env *envhelper.Environment, logger *slog.Logger) error {
	switch f.command {
	case "quote":
		return quote(f, env, logger)
	case "seed":
		return seed(ctx, env, logger)
	case "refresh":
		return refresh(ctx, env, logger)
	case "listen":
		return listen(ctx, f, env, logger)
	default:
		return fmt.Errorf("unknown command %q", f.command)
	}
}

func openSnapshot(env *envhelper.Environment) (snapshotrepo.SnapshotRepo, error) {
	if err := env.Require(envhelper.SNAPSHOT_PATH); err != nil {
		return nil, err
	}
	return snapshotrepo.New(snapshotrepo.SnapshotRepoConfig{Path: env.SNAPSHOT_PATH})
}

func openCache(ctx context.Context, env *envhelper.Environment) (v2pairsrepo.V2PairCacheRepo, error) {
	if err := env.Require(envhelper.REDIS_SERVER); err != nil {
		return nil, err
	}
	redisDB, err := redisdb.New(redisdb.RedisDatabaseConfig{RedisServer: env.REDIS_SERVER})
	if err != nil {
		return nil, err
	}
	if err := redisDB.Ping(ctx); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return v2pairsrepo.NewCacheRepo(ctx, v2pairsrepo.V2PairCacheRepoDependencies{Database: redisDB})
}

func openDB(env *envhelper.Environment) (tokenrepo.TokenRepo, v2pairsrepo.V2PairDBRepo, error) {
	err := env.Require(
		envhelper.POSTGRES_HOST,
		envhelper.POSTGRES_PORT,
		envhelper.POSTGRES_USER,
		envhelper.POSTGRES_PASSWORD,
		envhelper.POSTGRES_DB_NAME,
	)
	if err != nil {
		return nil, nil, err
	}

	pgDB, err := pgdatabase.New(pgdatabase.PgDatabaseConfig{
		Host:     env.POSTGRES_HOST,
		Port:     env.POSTGRES_PORT,
		User:     env.POSTGRES_USER,
		Password: env.POSTGRES_PASSWORD,
		DBName:   env.POSTGRES_DB_NAME,
		SSlMode:  env.POSTGRES_SSL_MODE,
	})
	if err != nil {
		return nil, nil, err
	}

	tokenRepo, err := tokenrepo.New(tokenrepo.TokenRepoDependencies{Database: pgDB})
	if err != nil {
		return nil, nil, err
	}
	pairRepo, err := v2pairsrepo.NewDBRepo(v2pairsrepo.V2PairDBRepoDependencies{Database: pgDB})
	if err != nil {
		return nil, nil, err
	}
	return tokenRepo, pairRepo, nil
}

type openedService struct {
	service routerservice.RouterService
	// sinks are the stores listen persists flushed blocks to.
	sinks   []routerservice.ReserveSink
	closers []func() error
}

// Close releases the snapshot file lock and the database connections.
func (o *openedService) Close() error {
	var errs []error
	for _, closer := range o.closers {
		errs = append(errs, closer())
	}
	return errors.Join(errs...)
}

func newService(ctx context.Context, source string, env *envhelper.Environment, logger *slog.Logger) (*openedService, error) {
	opened := &openedService{}
	dependencies := routerservice.RouterServiceDependencies{Logger: logger}

	fail := func(err error) (*openedService, error) {
		return nil, errors.Join(err, opened.Close())
	}

	switch source {
	case "snapshot":
		snapshot, err := openSnapshot(env)
		if err != nil {
			return fail(err)
		}
		opened.closers = append(opened.closers, snapshot.Close)
		dependencies.Tokens, dependencies.Pairs = snapshot, snapshot
		opened.sinks = append(opened.sinks, snapshot)
	case "cache":
		snapshot, err := openSnapshot(env)
		if err != nil {
			return fail(err)
		}
		opened.closers = append(opened.closers, snapshot.Close)
		cache, err := openCache(ctx, env)
		if err != nil {
			return fail(err)
		}
		dependencies.Tokens, dependencies.Pairs = snapshot, cache
		opened.sinks = append(opened.sinks, cache, snapshot)
	case "db":
		tokenRepo, pairRepo, err := openDB(env)
		if err != nil {
			return fail(err)
		}
		dependencies.Tokens = routerservice.TokensFromDB(tokenRepo)
		dependencies.Pairs = routerservice.PairsFromDB(pairRepo)
		opened.sinks = append(opened.sinks, routerservice.SinkToDB(pairRepo))
	default:
		return fail(fmt.Errorf("unknown source %q", source))
	}

	service, err := routerservice.New(routerservice.RouterServiceConfig{ChainID: env.CHAIN_ID}, dependencies)
	if err != nil {
		return fail(err)
	}
	opened.service = service
	return opened, nil
}

func quote(f flags, env *envhelper.Environment, logger *slog.Logger) error {
	if f.out == "" {
		return errors.New("-out is required")
	}

	var tradeType trade.TradeType
	switch strings.ToLower(f.exact) {
	case "in":
		tradeType = trade.ExactInput
	case "out":
		tradeType = trade.ExactOutput
	default:
		return fmt.Errorf("-exact must be in or out, got %q", f.exact)
	}

	slippage, err := routerservice.ParseSlippage(f.slippage)
	if err != nil {
		return err
	}

	opened, err := newService(context.Background(), f.source, env, logger)
	if err != nil {
		return err
	}
	defer opened.Close()

	quotes, err := opened.service.Quote(routerservice.QuoteRequest{
		CurrencyIn:  f.in,
		CurrencyOut: f.out,
		Amount:      f.amount,
		TradeType:   tradeType,
		MaxHops:     f.hops,
		MaxResults:  f.results,
		Slippage:    slippage,
		Recipient:   f.recipient,
	})
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s %s %s -> %s", tradeType, f.amount, f.in, f.out)
	if err := report.Write(os.Stdout, report.QuotesTable(title, tradeType, quotes)+"\n"); err != nil {
		return err
	}
	if f.recipient != "" {
		return report.Write(os.Stdout, report.SwapsTable(quotes)+"\n")
	}
	return nil
}

// seed pulls every v2 pair from the subgraph and stores it in the snapshot, and in
// Redis and Postgres when they are configured.
func seed(ctx context.Context, env *envhelper.Environment, logger *slog.Logger) error {
	client, err := subgraphs.NewSubgraphClient(subgraphs.SubgraphClientConfig{
		APIKey: env.SUBGRAPH_API_TOKEN,
		Logger: logger,
	})
	if err != nil {
		return err
	}

	tokens, pairs, err := client.GetV2PairsWithTokens(ctx, env.CHAIN_ID)
	if err != nil {
		return err
	}
	pairs = v2pairexchangable.MarkDustyPairs(tokens, pairs)

	return store(ctx, env, logger, tokens, pairs)
}

// refresh re-reads reserves of the snapshot's pairs from the node at the latest block.
func refresh(ctx context.Context, env *envhelper.Environment, logger *slog.Logger) error {
	if err := env.Require(envhelper.ETH_MAINNET_RPC_HTTP); err != nil {
		return err
	}

	snapshot, err := openSnapshot(env)
	if err != nil {
		return err
	}
	tokens, err := snapshot.GetTokens(env.CHAIN_ID)
	if err != nil {
		return err
	}
	pairs, err := snapshot.GetPairs(env.CHAIN_ID)
	if err != nil {
		return err
	}
	if err := snapshot.Close(); err != nil {
		return err
	}

	client, err := rpcclient.NewRpcClient(rpcclient.RpcClientConfig{EthMainnetHttp: env.ETH_MAINNET_RPC_HTTP})
	if err != nil {
		return err
	}
	blockNumber, err := client.BlockNumber(ctx, env.CHAIN_ID)
	if err != nil {
		return err
	}

	logger.Info("reading reserves", "pairs", len(pairs), "block", blockNumber)
	pairs, err = client.GetPairsData(ctx, pairs, env.CHAIN_ID, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return err
	}
	pairs = v2pairexchangable.MarkDustyPairs(tokens, pairs)

	return store(ctx, env, logger, tokens, pairs)
}

func store(ctx context.Context, env *envhelper.Environment, logger *slog.Logger, tokens []models.Token, pairs []models.UniswapV2Pair) error {
	var blockNumber uint64
	for _, pair := range pairs {
		blockNumber = max(blockNumber, pair.BlockNumber)
	}

	snapshot, err := openSnapshot(env)
	if err != nil {
		return err
	}
	defer snapshot.Close()

	if err := snapshot.SaveTokens(env.CHAIN_ID, tokens); err != nil {
		return err
	}
	if err := snapshot.SavePairs(env.CHAIN_ID, pairs); err != nil {
		return err
	}
	if err := snapshot.SetBlockNumber(env.CHAIN_ID, blockNumber); err != nil {
		return err
	}
	logger.Info("snapshot saved", "path", env.SNAPSHOT_PATH, "tokens", len(tokens), "pairs", len(pairs), "block", blockNumber)

	if env.REDIS_SERVER != "" {
		cache, err := openCache(ctx, env)
		if err != nil {
			return err
		}
		if err := cache.ClearPairs(env.CHAIN_ID); err != nil {
			return err
		}
		if err := cache.SetPairs(env.CHAIN_ID, pairs); err != nil {
			return err
		}
		if err := cache.SetBlockNumber(env.CHAIN_ID, blockNumber); err != nil {
			return err
		}
		logger.Info("cache updated", "pairs", len(pairs))
	}

	if env.POSTGRES_HOST != "" {
		tokenRepo, pairRepo, err := openDB(env)
		if err != nil {
			return err
		}
		if err := tokenRepo.UpsertTokens(tokens); err != nil {
			return err
		}
		if err := pairRepo.UpsertPairs(pairs); err != nil {
			return err
		}
		logger.Info("database updated", "tokens", len(tokens), "pairs", len(pairs))
	}

	return nil
}

func listen(ctx context.Context, f flags, env *envhelper.Environment, logger *slog.Logger) error {
	err := env.Require(envhelper.KAFKA_SERVER, envhelper.KAFKA_PAIR_RESERVES_TOPIC, envhelper.KAFKA_GROUP_ID)
	if err != nil {
		return err
	}

	opened, err := newService(ctx, f.source, env, logger)
	if err != nil {
		return err
	}
	defer opened.Close()

	listener, err := reservelistener.New(reservelistener.ReserveListenerConfig{
		KafkaServer: env.KAFKA_SERVER,
		Topic:       env.KAFKA_PAIR_RESERVES_TOPIC,
		GroupID:     env.KAFKA_GROUP_ID,
	}, reservelistener.ReserveListenerDependencies{
		Updater: opened.service,
		Sinks:   opened.sinks,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	return listener.Start(ctx)
}
