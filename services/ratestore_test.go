package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/malusev998/currency-converter"
)

func TestRateStore_Resolve(t *testing.T) {
	t.Parallel()

	usdTable := currency.NewRateTable("USD", map[string]float64{"EUR": 0.92, "INR": 83.1})
	eurTable := currency.NewRateTable("EUR", map[string]float64{"USD": 1.09})
	networkErr := fmt.Errorf("%w: connection refused", currency.ErrNetworkFailure)
	malformedErr := fmt.Errorf("%w: rates are missing", currency.ErrMalformedResponse)

	t.Run("Ready", func(t *testing.T) {
		asserts := require.New(t)
		fetcher := &MockFetcher{}
		fetcher.On("Fetch", mock.Anything, "EUR").Return(eurTable, nil).Once()

		store := NewRateStore(context.Background(), fetcher)
		rec := &recorder{}
		store.Subscribe(rec.record)

		done := store.Resolve("eur")
		<-done

		state := store.Current()
		asserts.Equal(currency.StatusReady, state.Status)
		asserts.False(state.Fallback)
		asserts.Equal("EUR", state.Requested)
		asserts.Equal([]currency.Status{currency.StatusLoading, currency.StatusReady}, rec.statuses())
		fetcher.AssertNumberOfCalls(t, "Fetch", 1)
	})

	t.Run("InitialStateIsLoading", func(t *testing.T) {
		store := NewRateStore(context.Background(), &MockFetcher{})
		require.Equal(t, currency.StatusLoading, store.Current().Status)
	})

	t.Run("MalformedPrimaryUsesFallback", func(t *testing.T) {
		asserts := require.New(t)
		fetcher := &MockFetcher{}
		fetcher.On("Fetch", mock.Anything, "GBP").Return(currency.RateTable{}, malformedErr).Once()
		fetcher.On("Fetch", mock.Anything, "USD").Return(usdTable, nil).Once()

		store := NewRateStore(context.Background(), fetcher)
		<-store.Resolve("GBP")

		state := store.Current()
		asserts.Equal(currency.StatusReady, state.Status)
		asserts.True(state.Fallback)
		asserts.Equal("GBP", state.Requested)
		asserts.Equal("USD", state.Table.Base())
		fetcher.AssertExpectations(t)
	})

	t.Run("MalformedPrimaryFailingFallback", func(t *testing.T) {
		asserts := require.New(t)
		fetcher := &MockFetcher{}
		fetcher.On("Fetch", mock.Anything, "GBP").Return(currency.RateTable{}, malformedErr).Once()
		fetcher.On("Fetch", mock.Anything, "USD").Return(currency.RateTable{}, networkErr).Once()

		store := NewRateStore(context.Background(), fetcher)
		rec := &recorder{}
		store.Subscribe(rec.record)
		<-store.Resolve("GBP")

		state := store.Current()
		asserts.Equal(currency.StatusFailed, state.Status)
		asserts.NotEmpty(state.Message)
		asserts.Equal(MessageUnableToFetch, state.Message)
		asserts.Equal([]currency.Status{currency.StatusLoading, currency.StatusFailed}, rec.statuses())
	})

	t.Run("NetworkFailureMessages", func(t *testing.T) {
		values := []struct {
			fallbackErr error
			message     string
		}{
			{malformedErr, MessageServiceUnavailable},
			{networkErr, MessageCheckConnection},
		}

		for _, value := range values {
			fetcher := &MockFetcher{}
			fetcher.On("Fetch", mock.Anything, "EUR").Return(currency.RateTable{}, networkErr).Once()
			fetcher.On("Fetch", mock.Anything, "USD").Return(currency.RateTable{}, value.fallbackErr).Once()

			store := NewRateStore(context.Background(), fetcher)
			<-store.Resolve("EUR")

			require.Equal(t, currency.StatusFailed, store.Current().Status)
			require.Equal(t, value.message, store.Current().Message)
			fetcher.AssertNumberOfCalls(t, "Fetch", 2)
		}
	})

	t.Run("NetworkFailureFallbackSucceeds", func(t *testing.T) {
		fetcher := &MockFetcher{}
		fetcher.On("Fetch", mock.Anything, "EUR").Return(currency.RateTable{}, networkErr).Once()
		fetcher.On("Fetch", mock.Anything, "USD").Return(usdTable, nil).Once()

		store := NewRateStore(context.Background(), fetcher)
		<-store.Resolve("EUR")

		require.Equal(t, currency.StatusReady, store.Current().Status)
		require.True(t, store.Current().Fallback)
	})

	t.Run("EveryResolvePassesThroughLoading", func(t *testing.T) {
		asserts := require.New(t)
		fetcher := staticFetcher{
			"USD": {"EUR": 0.92},
			"EUR": {"USD": 1.09},
		}

		store := NewRateStore(context.Background(), fetcher)
		rec := &recorder{}
		store.Subscribe(rec.record)

		<-store.Resolve("USD")
		<-store.Resolve("EUR")
		<-store.Resolve("EUR")

		asserts.Equal([]currency.Status{
			currency.StatusLoading, currency.StatusReady,
			currency.StatusLoading, currency.StatusReady,
			currency.StatusLoading, currency.StatusReady,
		}, rec.statuses())
	})

	t.Run("StaleResponseIsDiscarded", func(t *testing.T) {
		asserts := require.New(t)
		fetcher := newGatedFetcher(map[string]map[string]float64{
			"USD": {"EUR": 0.92},
			"EUR": {"USD": 1.09},
		})

		store := NewRateStore(context.Background(), fetcher)
		rec := &recorder{}
		store.Subscribe(rec.record)

		older := store.Resolve("USD")
		newer := store.Resolve("EUR")

		fetcher.release("EUR")
		<-newer
		fetcher.release("USD")
		<-older

		state := store.Current()
		asserts.Equal(currency.StatusReady, state.Status)
		asserts.Equal("EUR", state.Requested)
		asserts.Equal("EUR", state.Table.Base())
		asserts.Equal([]currency.Status{
			currency.StatusLoading, currency.StatusLoading, currency.StatusReady,
		}, rec.statuses())
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		store := NewRateStore(context.Background(), staticFetcher{"USD": {"EUR": 1}})
		rec := &recorder{}
		unsubscribe := store.Subscribe(rec.record)
		unsubscribe()

		<-store.Resolve("USD")
		require.Empty(t, rec.statuses())
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fetcher := newGatedFetcher(map[string]map[string]float64{"USD": {"EUR": 1}})

		store := NewRateStore(ctx, fetcher)
		<-store.Resolve("EUR")

		require.Equal(t, currency.StatusFailed, store.Current().Status)
		require.Equal(t, MessageCheckConnection, store.Current().Message)
	})
}
