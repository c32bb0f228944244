package fetchers

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/malusev998/currency-converter"
)

type (
	ExchangeRateAPIFetcher struct {
		URL    string
		Client *http.Client
	}
)

func (e ExchangeRateAPIFetcher) Fetch(ctx context.Context, base string) (currency.RateTable, error) {
	url := e.URL

	if url == "" {
		url = ExchangeRateAPIURL
	}

	client := e.Client

	if client == nil {
		client = http.DefaultClient
	}

	if ctx == nil {
		ctx = context.Background()
	}

	req, err := getData(ctx, url, base)

	if err != nil {
		return currency.RateTable{}, err
	}

	res, err := client.Do(req)

	if err != nil {
		return currency.RateTable{}, fmt.Errorf("%w: %v", currency.ErrNetworkFailure, err)
	}

	defer res.Body.Close()

	if err := handleHTTPStatusCodeError(res); err != nil {
		return currency.RateTable{}, err
	}

	body, err := io.ReadAll(res.Body)

	if err != nil {
		return currency.RateTable{}, fmt.Errorf("%w: %v", currency.ErrNetworkFailure, err)
	}

	return parseRates(body, base)
}
