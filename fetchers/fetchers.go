package fetchers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/malusev998/currency-converter"
)

const (
	ExchangeRateAPIURL = "https://api.exchangerate-api.com/v4/latest"
)

var (
	ErrClient  = errors.New("client error")
	ErrServer  = errors.New("server error")
	ErrUnknown = errors.New("unknown error")
)

func getData(ctx context.Context, url, base string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		strings.TrimRight(url, "/")+"/"+currency.NormalizeCode(base),
		nil,
	)

	if err != nil {
		return nil, err
	}

	req.Header.Add("Accept", "application/json")

	return req, nil
}

func handleHTTPStatusCodeError(res *http.Response) error {
	switch {
	case res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices:
		return nil
	case res.StatusCode >= http.StatusBadRequest && res.StatusCode < http.StatusInternalServerError:
		return fmt.Errorf("%w: %w: status %d", currency.ErrNetworkFailure, ErrClient, res.StatusCode)
	case res.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w: status %d", currency.ErrNetworkFailure, ErrServer, res.StatusCode)
	}

	return fmt.Errorf("%w: %w: status %d", currency.ErrNetworkFailure, ErrUnknown, res.StatusCode)
}

// parseRates reads the "rates" object of a provider response. Entries
// that are not numbers are skipped.
func parseRates(body []byte, requested string) (currency.RateTable, error) {
	if !gjson.ValidBytes(body) {
		return currency.RateTable{}, fmt.Errorf("%w: body is not valid JSON", currency.ErrMalformedResponse)
	}

	result := gjson.ParseBytes(body)
	rates := result.Get("rates")

	if !rates.IsObject() {
		return currency.RateTable{}, fmt.Errorf("%w: rates are missing", currency.ErrMalformedResponse)
	}

	data := make(map[string]float64)

	rates.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Number {
			data[key.String()] = value.Float()
		}

		return true
	})

	base := result.Get("base").String()

	if base == "" {
		base = requested
	}

	return currency.NewRateTable(base, data), nil
}
