package services

import (
	"strings"

	"github.com/malusev998/currency-converter"
)

// PreferredCurrencies are offered first, in this order.
var PreferredCurrencies = []string{"usd", "eur", "gbp", "jpy", "aud", "cad", "chf", "cny", "inr"}

// FeaturedCurrencies are the quick-select chips.
var FeaturedCurrencies = PreferredCurrencies[:8]

// CurrencyOptions lists the preferred currencies followed by every other
// code of the table, lowercased and without duplicates.
func CurrencyOptions(table currency.RateTable) []string {
	options := make([]string, 0, len(PreferredCurrencies)+table.Len())
	seen := make(map[string]struct{}, cap(options))

	add := func(code string) {
		code = strings.ToLower(strings.TrimSpace(code))
		if code == "" {
			return
		}

		if _, ok := seen[code]; ok {
			return
		}

		seen[code] = struct{}{}
		options = append(options, code)
	}

	for _, code := range PreferredCurrencies {
		add(code)
	}

	for _, code := range table.Codes() {
		add(code)
	}

	return options
}

func isFeatured(code string) bool {
	code = strings.ToLower(code)

	for _, c := range FeaturedCurrencies {
		if c == code {
			return true
		}
	}

	return false
}
