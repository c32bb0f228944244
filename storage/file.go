package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/malusev998/currency-converter"
)

type fileStorage struct {
	mutex sync.Mutex
	path  string
	v     *viper.Viper
}

// DefaultFilePath is preferences.yml inside the user's config directory.
func DefaultFilePath() string {
	dir, err := os.UserConfigDir()

	if err != nil {
		dir = os.TempDir()
	}

	return filepath.Join(dir, "currency-converter", "preferences.yml")
}

func NewFileStorage(config FileConfig) (currency.Storage, error) {
	path := config.Path

	if path == "" {
		path = DefaultFilePath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	storage := &fileStorage{path: path, v: v}

	if config.Migrate {
		if err := storage.Migrate(); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return storage, nil
}

func (f *fileStorage) Get(_ context.Context, key string) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if !f.v.IsSet(key) {
		return "", currency.ErrPreferenceNotFound
	}

	return f.v.GetString(key), nil
}

func (f *fileStorage) Set(_ context.Context, key, value string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}

	f.v.Set(key, value)

	return f.v.WriteConfigAs(f.path)
}

func (f *fileStorage) GetStorageProviderName() string {
	return string(File)
}

func (f *fileStorage) Migrate() error {
	return os.MkdirAll(filepath.Dir(f.path), 0o755)
}

func (f *fileStorage) Close() error {
	return nil
}
