package services

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malusev998/currency-converter"
)

func newController(t *testing.T, fetcher currency.Fetcher, initial currency.ConversionState) *ConversionController {
	t.Helper()

	store := NewRateStore(context.Background(), fetcher)
	c := NewConversionController(store, initial)
	t.Cleanup(c.Close)

	<-c.Start()

	return c
}

func TestConvert(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	values := []struct {
		amount float64
		rate   float64
	}{
		{1, 0.92},
		{100, 0.92},
		{1.531454, 1.2564421},
		{12345.67, 83.123},
		{0.01, 0.5},
	}

	for _, value := range values {
		asserts.InDelta(value.amount*value.rate, Convert(value.amount, value.rate), 1e-9)
		asserts.Equal(0.0, Convert(0, value.rate))
	}
}

func TestConversionController(t *testing.T) {
	t.Parallel()

	fetcher := staticFetcher{
		"USD": {"EUR": 0.92, "INR": 83.0, "GBP": 0.79},
		"EUR": {"USD": 1.09, "INR": 90.2, "GBP": 0.86},
		"GBP": {"USD": 1.27, "EUR": 1.16},
	}

	t.Run("Defaults", func(t *testing.T) {
		asserts := require.New(t)
		c := newController(t, fetcher, DefaultConversionState())

		state := c.State()
		asserts.Equal(1.0, state.Amount)
		asserts.Equal("USD", state.Base)
		asserts.Equal("INR", state.Target)
		asserts.InDelta(83.0, state.Converted, 1e-9)
	})

	t.Run("HundredDollarsToEuro", func(t *testing.T) {
		asserts := require.New(t)
		c := newController(t, staticFetcher{"USD": {"EUR": 0.92}}, currency.ConversionState{
			Amount: 100, Base: "USD", Target: "EUR",
		})

		asserts.InDelta(92.0, c.ConvertedAmount(), 1e-9)

		view := c.View()
		asserts.Equal(currency.StatusReady, view.Status)
		asserts.True(view.HasRate)
		asserts.Equal(0.92, view.Rate)
	})

	t.Run("SetAmountIsIdempotent", func(t *testing.T) {
		asserts := require.New(t)
		c := newController(t, fetcher, DefaultConversionState())

		c.SetAmount(42.5)
		once := c.ConvertedAmount()
		c.SetAmount(42.5)

		asserts.Equal(once, c.ConvertedAmount())
		asserts.InDelta(42.5*83.0, once, 1e-9)
	})

	t.Run("InvalidAmountsClampToZero", func(t *testing.T) {
		asserts := require.New(t)
		c := newController(t, fetcher, DefaultConversionState())
		before := c.ConvertedAmount()

		c.SetAmount(-5)
		asserts.Equal(0.0, c.State().Amount)
		asserts.Equal(before, c.ConvertedAmount())

		c.SetAmountString("abc")
		asserts.Equal(0.0, c.State().Amount)

		c.SetAmountString("$1,250.5")
		asserts.Equal(1250.5, c.State().Amount)
		asserts.InDelta(1250.5*83.0, c.ConvertedAmount(), 1e-9)

		c.SetAmountString("1.2.3")
		asserts.Equal(1.2, c.State().Amount)
	})

	t.Run("TargetChangeRecomputes", func(t *testing.T) {
		asserts := require.New(t)
		c := newController(t, fetcher, currency.ConversionState{Amount: 10, Base: "USD", Target: "INR"})

		c.SetTargetCurrency("gbp")
		asserts.Equal("GBP", c.State().Target)
		asserts.InDelta(7.9, c.ConvertedAmount(), 1e-9)
	})

	t.Run("UnknownTargetIsNotAvailable", func(t *testing.T) {
		asserts := require.New(t)
		c := newController(t, fetcher, currency.ConversionState{Amount: 10, Base: "USD", Target: "EUR"})
		before := c.ConvertedAmount()

		asserts.NotPanics(func() {
			c.SetTargetCurrency("XYZ")
		})

		view := c.View()
		asserts.False(view.HasRate)
		asserts.Equal(before, view.Converted)
		asserts.Equal(currency.StatusReady, view.Status)

		c.SetAmount(20)
		asserts.Equal(before, c.ConvertedAmount())
	})

	t.Run("BaseChangeRefetches", func(t *testing.T) {
		asserts := require.New(t)
		c := newController(t, fetcher, currency.ConversionState{Amount: 2, Base: "USD", Target: "INR"})

		<-c.SetBaseCurrency("eur")
		asserts.Equal("EUR", c.State().Base)
		asserts.Equal("EUR", c.Store.Current().Table.Base())
		asserts.InDelta(180.4, c.ConvertedAmount(), 1e-9)
	})

	t.Run("SwapExchangesValues", func(t *testing.T) {
		asserts := require.New(t)
		gated := newGatedFetcher(map[string]map[string]float64{
			"USD": {"EUR": 0.92},
			"EUR": {"USD": 1.1},
		})
		gated.release("USD")

		c := newController(t, gated, currency.ConversionState{Amount: 100, Base: "USD", Target: "EUR"})
		asserts.InDelta(92.0, c.ConvertedAmount(), 1e-9)

		done := c.Swap()

		state := c.State()
		asserts.Equal("EUR", state.Base)
		asserts.Equal("USD", state.Target)
		asserts.InDelta(92.0, state.Amount, 1e-9)
		asserts.Equal(100.0, state.Converted)
		asserts.Equal(currency.StatusLoading, c.View().Status)

		c.SetAmount(92)
		asserts.Equal(100.0, c.ConvertedAmount())

		gated.release("EUR")
		<-done

		asserts.InDelta(92*1.1, c.ConvertedAmount(), 1e-9)
	})

	t.Run("SwapTwiceRestoresPair", func(t *testing.T) {
		asserts := require.New(t)
		c := newController(t, fetcher, currency.ConversionState{Amount: 3, Base: "GBP", Target: "EUR"})

		<-c.Swap()
		<-c.Swap()

		asserts.Equal("GBP", c.State().Base)
		asserts.Equal("EUR", c.State().Target)
	})

	t.Run("FailedKeepsLastConvertedAmount", func(t *testing.T) {
		asserts := require.New(t)
		c := newController(t, fetcher, currency.ConversionState{Amount: 10, Base: "USD", Target: "EUR"})
		before := c.ConvertedAmount()

		<-c.SetBaseCurrency("JPY")

		view := c.View()
		asserts.Equal(currency.StatusReady, view.Status)
		asserts.True(view.Fallback)

		store := NewRateStore(context.Background(), staticFetcher{})
		failing := NewConversionController(store, currency.ConversionState{Amount: 10, Base: "USD", Target: "EUR", Converted: before})
		defer failing.Close()
		<-failing.Start()

		view = failing.View()
		asserts.Equal(currency.StatusFailed, view.Status)
		asserts.Equal(MessageUnableToFetch, view.Message)
		asserts.Equal(before, view.Converted)
		asserts.False(view.HasRate)
		asserts.Equal(PreferredCurrencies, view.Options)
	})

	t.Run("Retry", func(t *testing.T) {
		asserts := require.New(t)
		c := newController(t, fetcher, DefaultConversionState())
		rec := &recorder{}
		c.Store.Subscribe(rec.record)

		<-c.Retry()

		asserts.Equal([]currency.Status{currency.StatusLoading, currency.StatusReady}, rec.statuses())
	})
}

func TestConversionController_SelectChip(t *testing.T) {
	t.Parallel()

	fetcher := staticFetcher{
		"USD": {"EUR": 0.92, "INR": 83.0, "JPY": 150},
		"JPY": {"USD": 0.0067, "INR": 0.55},
	}

	t.Run("AssignsToOneSide", func(t *testing.T) {
		for seed := int64(0); seed < 10; seed++ {
			c := newController(t, fetcher, DefaultConversionState())
			c.Rand = rand.New(rand.NewSource(seed))

			<-c.SelectChip("jpy")

			state := c.State()
			require.True(t, (state.Base == "JPY" && state.Target == "INR") || (state.Base == "USD" && state.Target == "JPY"))
		}
	})

	t.Run("IgnoresSelectedAndUnfeatured", func(t *testing.T) {
		asserts := require.New(t)
		c := newController(t, fetcher, DefaultConversionState())

		<-c.SelectChip("usd")
		<-c.SelectChip("INR")
		<-c.SelectChip("zar")

		asserts.Equal("USD", c.State().Base)
		asserts.Equal("INR", c.State().Target)
	})
}

func TestCurrencyOptions(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)

	table := currency.NewRateTable("USD", map[string]float64{"USD": 1, "EUR": 0.9, "ZZZ": 3, "AAA": 2})
	options := CurrencyOptions(table)

	asserts.Equal(PreferredCurrencies, options[:len(PreferredCurrencies)])
	asserts.Equal([]string{"aaa", "zzz"}, options[len(PreferredCurrencies):])

	count := 0

	for _, o := range options {
		if o == "zzz" {
			count++
		}
	}

	asserts.Equal(1, count)
	asserts.Equal(PreferredCurrencies, CurrencyOptions(currency.RateTable{}))
	asserts.Len(FeaturedCurrencies, 8)
}
