package redisdb

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

var ErrUninitialized = errors.New("redis database uninitialized")

type RedisDatabaseConfig struct {
	RedisServer string
}

type RedisDatabase struct {
	rdb *redis.Client
}

func (d *RedisDatabase) GetDB() (*redis.Client, error) {
	if d == nil || d.rdb == nil {
		return nil, ErrUninitialized
	}

	return d.rdb, nil
}

func New(config RedisDatabaseConfig) (*RedisDatabase, error) {
	if config.RedisServer == "" {
		return nil, errors.New("redis server address cannot be empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: config.RedisServer,
	})

	return &RedisDatabase{
		rdb: rdb,
	}, nil
}

func (d *RedisDatabase) Ping(ctx context.Context) error {
	rdb, err := d.GetDB()
	if err != nil {
		return err
	}
	return rdb.Ping(ctx).Err()
}

func (d *RedisDatabase) Close() error {
	if d == nil || d.rdb == nil {
		return nil
	}
	return d.rdb.Close()
}
