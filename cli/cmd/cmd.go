package cmd

import (
	"context"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/malusev998/currency-converter"
	"github.com/malusev998/currency-converter/logger"
	"github.com/malusev998/currency-converter/services"
)

var (
	debug      bool
	noColor    bool
	configFile string
)

type (
	Config struct {
		Ctx          context.Context
		Fetcher      currency.Fetcher
		FallbackBase string
		Defaults     currency.ConversionState
		Storage      currency.Storage
		Scheme       *services.SchemeSource
		NoColor      bool
		// Rand seeds the quick-select coin flip when set.
		Rand         *rand.Rand
	}
)

func Execute(config *Config) error {
	return newRootCmd(config).Execute()
}

func newRootCmd(config *Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "currency-converter",
		Short:        "Convert amounts between currencies using live exchange rates",
		Version:      "v1.0.0",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug flag")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./config.yml", "Path to config file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return prepare(config)
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if config.Storage != nil {
			if err := config.Storage.Close(); err != nil {
				logger.Log.Warnw("closing preference storage", "error", err)
			}
		}
	}

	rootCmd.AddCommand(
		convert(config),
		rates(config),
		interactive(config),
		theme(config),
	)

	return rootCmd
}

func (c *Config) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}

	return c.Ctx
}

func newController(config *Config) *services.ConversionController {
	store := services.NewRateStore(config.context(), config.Fetcher)

	if config.FallbackBase != "" {
		store.FallbackBase = config.FallbackBase
	}

	defaults := config.Defaults

	if defaults.Base == "" || defaults.Target == "" {
		defaults = services.DefaultConversionState()
	}

	controller := services.NewConversionController(store, defaults)

	if config.Rand != nil {
		controller.Rand = config.Rand
	}

	return controller
}

// loadTheme never fails: a preference that cannot be read falls back to
// "system".
func loadTheme(config *Config) *services.ThemeStore {
	store := services.NewThemeStore(config.Storage, config.Scheme)

	if config.Storage == nil {
		return store
	}

	if err := store.Load(config.context()); err != nil {
		logger.Log.Warnw("could not load theme preference", "storage", config.Storage.GetStorageProviderName(), "error", err)
	}

	return store
}
