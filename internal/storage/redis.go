package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisKV struct {
	client *redis.Client
	prefix string
}

func openRedis(ctx context.Context, redisURL, prefix string) (*redisKV, error) {
	if redisURL == "" {
		return nil, errors.New("redis store: url is empty")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	// check redis connection
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &redisKV{client: client, prefix: prefix}, nil
}

func (store *redisKV) get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := store.client.Get(ctx, store.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (store *redisKV) put(ctx context.Context, key string, value []byte) error {
	return store.client.Set(ctx, store.prefix+key, value, 0).Err()
}

func (store *redisKV) close() error {
	return store.client.Close()
}
