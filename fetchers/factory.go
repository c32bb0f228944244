package fetchers

import (
	"net/http"
	"time"

	"github.com/malusev998/currency-converter"
)

type (
	BaseConfig struct {
		URL     string
		Timeout time.Duration
	}
	ExchangeRateAPIConfig struct {
		BaseConfig
	}
)

// NewRateFetcher returns nil for an unknown provider.
func NewRateFetcher(provider currency.Provider, config interface{}) currency.Fetcher {
	switch provider {
	case currency.ExchangeRateAPIProvider:
		c := config.(ExchangeRateAPIConfig)

		return ExchangeRateAPIFetcher{
			URL:    c.URL,
			Client: &http.Client{Timeout: c.Timeout},
		}
	}

	return nil
}
