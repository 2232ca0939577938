package envhelper

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Environment struct {
	CHAIN_ID  uint
	LOG_LEVEL string

	SUBGRAPH_API_TOKEN string
	POSTGRES_HOST      string
	POSTGRES_PORT      string
	POSTGRES_USER      string
	POSTGRES_PASSWORD  string
	POSTGRES_DB_NAME   string
	POSTGRES_SSL_MODE  string

	ETH_MAINNET_RPC_HTTP string
	ETH_MAINNET_RPC_WS   string

	KAFKA_SERVER              string
	KAFKA_PAIR_RESERVES_TOPIC string
	KAFKA_GROUP_ID            string

	REDIS_SERVER  string
	SNAPSHOT_PATH string
}

var env *Environment

func GetEnv() (*Environment, error) {
	if env != nil {
		return env, nil
	}

	env = &Environment{}
	err := load()
	if err != nil {
		env = nil
		return nil, err
	}
	return env, nil
}

const CHAIN_ID = "CHAIN_ID"
const LOG_LEVEL = "LOG_LEVEL"
const SUBGRAPH_API_TOKEN = "SUBGRAPH_API_TOKEN"

const POSTGRES_HOST = "POSTGRES_HOST"
const POSTGRES_PORT = "POSTGRES_PORT"
const POSTGRES_USER = "POSTGRES_USER"
const POSTGRES_PASSWORD = "POSTGRES_PASSWORD"
const POSTGRES_DB_NAME = "POSTGRES_DB_NAME"
const POSTGRES_SSL_MODE = "POSTGRES_SSL_MODE"

const ETH_MAINNET_RPC_HTTP = "ETH_MAINNET_RPC_HTTP"
const ETH_MAINNET_RPC_WS = "ETH_MAINNET_RPC_WS"

const KAFKA_SERVER = "KAFKA_SERVER"
const KAFKA_PAIR_RESERVES_TOPIC = "KAFKA_PAIR_RESERVES_TOPIC"
const KAFKA_GROUP_ID = "KAFKA_GROUP_ID"

const REDIS_SERVER = "REDIS_SERVER"
const SNAPSHOT_PATH = "SNAPSHOT_PATH"

func load() error {
	godotenv.Load()

	env.CHAIN_ID = 1
	if chainIDStr := os.Getenv(CHAIN_ID); chainIDStr != "" {
		chainID, err := strconv.ParseUint(chainIDStr, 10, 64)
		if err != nil || chainID == 0 {
			return buildLoadingEnvError(CHAIN_ID)
		}
		env.CHAIN_ID = uint(chainID)
	}

	env.LOG_LEVEL = os.Getenv(LOG_LEVEL)
	if env.LOG_LEVEL == "" {
		env.LOG_LEVEL = "info"
	}

	env.SUBGRAPH_API_TOKEN = os.Getenv(SUBGRAPH_API_TOKEN)

	env.POSTGRES_HOST = os.Getenv(POSTGRES_HOST)
	env.POSTGRES_PORT = os.Getenv(POSTGRES_PORT)
	env.POSTGRES_USER = os.Getenv(POSTGRES_USER)
	env.POSTGRES_PASSWORD = os.Getenv(POSTGRES_PASSWORD)
	env.POSTGRES_DB_NAME = os.Getenv(POSTGRES_DB_NAME)
	env.POSTGRES_SSL_MODE = os.Getenv(POSTGRES_SSL_MODE)
	if env.POSTGRES_SSL_MODE == "" {
		env.POSTGRES_SSL_MODE = "disable"
	}

	env.ETH_MAINNET_RPC_HTTP = os.Getenv(ETH_MAINNET_RPC_HTTP)
	env.ETH_MAINNET_RPC_WS = os.Getenv(ETH_MAINNET_RPC_WS)

	env.KAFKA_SERVER = os.Getenv(KAFKA_SERVER)
	env.KAFKA_PAIR_RESERVES_TOPIC = os.Getenv(KAFKA_PAIR_RESERVES_TOPIC)
	env.KAFKA_GROUP_ID = os.Getenv(KAFKA_GROUP_ID)
	if env.KAFKA_GROUP_ID == "" {
		env.KAFKA_GROUP_ID = "routerservice"
	}

	env.REDIS_SERVER = os.Getenv(REDIS_SERVER)
	env.SNAPSHOT_PATH = os.Getenv(SNAPSHOT_PATH)
	if env.SNAPSHOT_PATH == "" {
		env.SNAPSHOT_PATH = "snapshot.db"
	}

	return nil
}

// Require fails on the first of keys that was left empty. Commands call it with the
// variables they actually use.
func (e *Environment) Require(keys ...string) error {
	values := map[string]string{
		SUBGRAPH_API_TOKEN:        e.SUBGRAPH_API_TOKEN,
		POSTGRES_HOST:             e.POSTGRES_HOST,
		POSTGRES_PORT:             e.POSTGRES_PORT,
		POSTGRES_USER:             e.POSTGRES_USER,
		POSTGRES_PASSWORD:         e.POSTGRES_PASSWORD,
		POSTGRES_DB_NAME:          e.POSTGRES_DB_NAME,
		POSTGRES_SSL_MODE:         e.POSTGRES_SSL_MODE,
		ETH_MAINNET_RPC_HTTP:      e.ETH_MAINNET_RPC_HTTP,
		ETH_MAINNET_RPC_WS:        e.ETH_MAINNET_RPC_WS,
		KAFKA_SERVER:              e.KAFKA_SERVER,
		KAFKA_PAIR_RESERVES_TOPIC: e.KAFKA_PAIR_RESERVES_TOPIC,
		KAFKA_GROUP_ID:            e.KAFKA_GROUP_ID,
		REDIS_SERVER:              e.REDIS_SERVER,
		SNAPSHOT_PATH:             e.SNAPSHOT_PATH,
		LOG_LEVEL:                 e.LOG_LEVEL,
	}

	for _, key := range keys {
		if values[key] == "" {
			return buildLoadingEnvError(key)
		}
	}
	return nil
}

func buildLoadingEnvError(key string) error {
	return fmt.Errorf("error with variable: %s", key)
}
