package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/malusev998/currency-converter"
)

type (
	Provider   string
	BaseConfig struct {
		Ctx     context.Context
		Migrate bool
	}
	FileConfig struct {
		BaseConfig
		Path string
	}
	MySQLConfig struct {
		BaseConfig
		ConnectionString string
		TableName        string
	}
	MongoDBConfig struct {
		BaseConfig
		ConnectionString string
		Database         string
		Collection       string
	}
	RedisConfig struct {
		BaseConfig
		Addr     string
		Password string
		DB       int
		Prefix   string
	}
)

const (
	File    Provider = "file"
	MySQL   Provider = "mysql"
	MongoDB Provider = "mongodb"
	Redis   Provider = "redis"
)

var (
	ErrStorageNotFound = errors.New("storage is not found")
)

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(str) {
	case "file", "":
		return File, nil
	case "mysql":
		return MySQL, nil
	case "mongodb", "mongo":
		return MongoDB, nil
	case "redis":
		return Redis, nil
	}

	return "", fmt.Errorf("value %s is not valid Provider", str)
}

func NewStorage(provider Provider, config interface{}) (currency.Storage, error) {
	switch provider {
	case File:
		return NewFileStorage(config.(FileConfig))
	case MySQL:
		return NewMySQLStorage(config.(MySQLConfig))
	case MongoDB:
		return NewMongoStorage(config.(MongoDBConfig))
	case Redis:
		return NewRedisStorage(config.(RedisConfig))
	}

	return nil, ErrStorageNotFound
}

func baseContext(config BaseConfig) context.Context {
	if config.Ctx == nil {
		return context.Background()
	}

	return config.Ctx
}
