package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/malusev998/currency-converter"
)

type redisStorage struct {
	ctx    context.Context
	client *redis.Client
	prefix string
}

func NewRedisStorage(config RedisConfig) (currency.Storage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return NewRedisStorageFromClient(baseContext(config.BaseConfig), client, config.Prefix, config.Migrate)
}

func NewRedisStorageFromClient(ctx context.Context, client *redis.Client, prefix string, migrate bool) (currency.Storage, error) {
	storage := redisStorage{ctx: ctx, client: client, prefix: prefix}

	if migrate {
		if err := storage.Migrate(); err != nil {
			return nil, err
		}
	}

	return storage, nil
}

func (r redisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()

	if errors.Is(err, redis.Nil) {
		return "", currency.ErrPreferenceNotFound
	}

	return value, err
}

func (r redisStorage) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r redisStorage) GetStorageProviderName() string {
	return string(Redis)
}

// Migrate only checks that the server answers.
func (r redisStorage) Migrate() error {
	return r.client.Ping(r.ctx).Err()
}

func (r redisStorage) Close() error {
	return r.client.Close()
}
