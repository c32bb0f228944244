package currency

import (
	"context"
	"errors"
)

// DefaultFallbackBase is the base currency requested when the primary
// request for another base fails.
const DefaultFallbackBase = "USD"

var (
	ErrNetworkFailure      = errors.New("network failure")
	ErrMalformedResponse   = errors.New("malformed response")
	ErrCurrencyUnavailable = errors.New("currency is not available in rate table")
	ErrPreferenceNotFound  = errors.New("preference is not found")
)

type (
	// Fetcher retrieves the rate table for a single base currency.
	// One call is one outbound request.
	Fetcher interface {
		Fetch(ctx context.Context, base string) (RateTable, error)
	}

	Storage interface {
		Get(ctx context.Context, key string) (string, error)
		Set(ctx context.Context, key, value string) error
		GetStorageProviderName() string
		Migrate() error
		Close() error
	}
)
