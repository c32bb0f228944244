package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/malusev998/currency-converter"
	"github.com/malusev998/currency-converter/fetchers"
	"github.com/malusev998/currency-converter/logger"
	"github.com/malusev998/currency-converter/services"
	"github.com/malusev998/currency-converter/storage"
)

type (
	StorageConfig map[storage.Provider]interface{}
)

func setDefaults() {
	viper.SetDefault("provider.name", "exchangerateapi")
	viper.SetDefault("provider.url", fetchers.ExchangeRateAPIURL)
	viper.SetDefault("provider.timeout", time.Duration(0))
	viper.SetDefault("provider.fallback", currency.DefaultFallbackBase)
	viper.SetDefault("defaults.amount", services.DefaultAmount)
	viper.SetDefault("defaults.base", services.DefaultBase)
	viper.SetDefault("defaults.target", services.DefaultTarget)
	viper.SetDefault("storage", string(storage.File))
	viper.SetDefault("databases.file.path", storage.DefaultFilePath())
	viper.SetDefault("databases.mysql.table", "preferences")
	viper.SetDefault("databases.mongodb.collection", "preferences")
	viper.SetDefault("databases.redis.prefix", "currency-converter:")
	viper.SetDefault("log.level", "warn")
}

// readConfig loads .env, then the config file when it exists, then
// CURRENCY_CONVERTER_* environment variables.
func readConfig(file string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error while reading .env: %w", err)
	}

	setDefaults()
	viper.SetEnvPrefix("CURRENCY_CONVERTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if file == "" {
		return nil
	}

	absolutePath, err := filepath.Abs(file)

	if err != nil {
		return err
	}

	if _, err := os.Stat(absolutePath); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	viper.SetConfigFile(absolutePath)

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error while reading in the config file: %w", err)
	}

	return nil
}

func getMysqlDSN(config map[string]string) string {
	mysqlDriverConfig := mysql.NewConfig()
	mysqlDriverConfig.User = config["user"]
	mysqlDriverConfig.Passwd = config["password"]
	mysqlDriverConfig.Addr = config["addr"]
	mysqlDriverConfig.Net = "tcp"
	mysqlDriverConfig.DBName = config["db"]

	return mysqlDriverConfig.FormatDSN()
}

// getStorageConfig reads every key on its own so CURRENCY_CONVERTER_*
// variables override nested values.
func getStorageConfig(ctx context.Context) StorageConfig {
	base := storage.BaseConfig{
		Ctx:     ctx,
		Migrate: viper.GetBool("migrate"),
	}
	dsn := getMysqlDSN(map[string]string{
		"user":     viper.GetString("databases.mysql.user"),
		"password": viper.GetString("databases.mysql.password"),
		"addr":     viper.GetString("databases.mysql.addr"),
		"db":       viper.GetString("databases.mysql.db"),
	})

	return StorageConfig{
		storage.File: storage.FileConfig{
			BaseConfig: base,
			Path:       viper.GetString("databases.file.path"),
		},
		storage.MySQL: storage.MySQLConfig{
			BaseConfig:       base,
			ConnectionString: dsn,
			TableName:        viper.GetString("databases.mysql.table"),
		},
		storage.MongoDB: storage.MongoDBConfig{
			BaseConfig:       base,
			ConnectionString: viper.GetString("databases.mongodb.uri"),
			Database:         viper.GetString("databases.mongodb.database"),
			Collection:       viper.GetString("databases.mongodb.collection"),
		},
		storage.Redis: storage.RedisConfig{
			BaseConfig: base,
			Addr:       viper.GetString("databases.redis.addr"),
			Password:   viper.GetString("databases.redis.password"),
			DB:         viper.GetInt("databases.redis.db"),
			Prefix:     viper.GetString("databases.redis.prefix"),
		},
	}
}

// fillConfig sets every field of config that is still empty from viper.
// Fields set by the caller, as in tests, are kept.
func fillConfig(config *Config) error {
	if config.Fetcher == nil {
		provider, err := currency.ConvertToProviderFromString(viper.GetString("provider.name"))

		if err != nil {
			return err
		}

		config.Fetcher = fetchers.NewRateFetcher(provider, fetchers.ExchangeRateAPIConfig{
			BaseConfig: fetchers.BaseConfig{
				URL:     viper.GetString("provider.url"),
				Timeout: viper.GetDuration("provider.timeout"),
			},
		})
	}

	if config.Storage == nil {
		provider, err := storage.ConvertToProviderFromString(viper.GetString("storage"))

		if err != nil {
			return err
		}

		st, err := storage.NewStorage(provider, getStorageConfig(config.context())[provider])

		if err != nil {
			return fmt.Errorf("error while creating %s storage: %w", provider, err)
		}

		config.Storage = st
	}

	if config.Scheme == nil {
		config.Scheme = services.SchemeFromEnv()
	}

	if config.FallbackBase == "" {
		config.FallbackBase = viper.GetString("provider.fallback")
	}

	if config.Defaults.Base == "" {
		config.Defaults = currency.ConversionState{
			Amount: viper.GetFloat64("defaults.amount"),
			Base:   viper.GetString("defaults.base"),
			Target: viper.GetString("defaults.target"),
		}
	}

	config.NoColor = config.NoColor || noColor

	return nil
}

func prepare(config *Config) error {
	if err := readConfig(configFile); err != nil {
		return err
	}

	level := viper.GetString("log.level")

	if debug {
		level = "debug"
	}

	if err := logger.Initialize(level); err != nil {
		return fmt.Errorf("error while initializing logger: %w", err)
	}

	logger.Log.Debugw("configuration loaded", "file", viper.ConfigFileUsed(), "provider", viper.GetString("provider.name"), "storage", viper.GetString("storage"))

	return fillConfig(config)
}
