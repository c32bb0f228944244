package services

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/malusev998/currency-converter"
	"github.com/malusev998/currency-converter/logger"
)

const (
	MessageUnableToFetch      = "Unable to fetch currency data"
	MessageServiceUnavailable = "Currency service temporarily unavailable"
	MessageCheckConnection    = "Unable to connect to currency service. Please check your internet connection."
)

type (
	// RateStore resolves the rate table of the current base currency.
	// Only the most recent Resolve may change the state; completions of
	// older requests are dropped.
	RateStore struct {
		Ctx          context.Context
		Fetcher      currency.Fetcher
		FallbackBase string
		Logger       *zap.SugaredLogger

		mutex     sync.Mutex
		seq       uint64
		state     currency.FetchState
		listeners map[uint64]func(currency.FetchState)
		nextID    uint64
	}
)

func NewRateStore(ctx context.Context, fetcher currency.Fetcher) *RateStore {
	return &RateStore{
		Ctx:          ctx,
		Fetcher:      fetcher,
		FallbackBase: currency.DefaultFallbackBase,
	}
}

func (r *RateStore) log() *zap.SugaredLogger {
	if r.Logger != nil {
		return r.Logger
	}

	return logger.Log
}

// Current returns the latest state. Before the first Resolve it is Loading.
func (r *RateStore) Current() currency.FetchState {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.state
}

// Subscribe registers fn for every state transition. fn runs outside the
// store lock, either on the caller of Resolve (Loading) or on the fetch
// goroutine (Ready, Failed).
func (r *RateStore) Subscribe(fn func(currency.FetchState)) func() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.listeners == nil {
		r.listeners = make(map[uint64]func(currency.FetchState))
	}

	id := r.nextID
	r.nextID++
	r.listeners[id] = fn

	return func() {
		r.mutex.Lock()
		delete(r.listeners, id)
		r.mutex.Unlock()
	}
}

// Resolve moves the store to Loading for base and fetches its table in the
// background. The returned channel is closed once the request settles.
func (r *RateStore) Resolve(base string) <-chan struct{} {
	base = currency.NormalizeCode(base)
	done := make(chan struct{})

	r.mutex.Lock()
	r.seq++
	seq := r.seq
	r.state = currency.Loading(base)
	listeners := r.snapshotListeners()
	r.mutex.Unlock()

	notify(listeners, currency.Loading(base))

	go func() {
		defer close(done)
		state := r.fetch(seq, base)
		r.apply(seq, state)
	}()

	return done
}

func (r *RateStore) snapshotListeners() []func(currency.FetchState) {
	listeners := make([]func(currency.FetchState), 0, len(r.listeners))

	for _, l := range r.listeners {
		listeners = append(listeners, l)
	}

	return listeners
}

func notify(listeners []func(currency.FetchState), state currency.FetchState) {
	for _, l := range listeners {
		l(state)
	}
}

func (r *RateStore) apply(seq uint64, state currency.FetchState) {
	r.mutex.Lock()

	if seq != r.seq {
		latest := r.seq
		r.mutex.Unlock()
		r.log().Debugw("discarding stale rate response", "seq", seq, "latest", latest, "base", state.Requested)

		return
	}

	r.state = state
	listeners := r.snapshotListeners()
	r.mutex.Unlock()

	notify(listeners, state)
}

func (r *RateStore) baseContext() context.Context {
	if r.Ctx == nil {
		return context.Background()
	}

	return r.Ctx
}

func (r *RateStore) fetch(seq uint64, base string) currency.FetchState {
	ctx := r.baseContext()
	requestID := uuid.New().String()
	log := r.log().With("request_id", requestID, "base", base, "seq", seq)

	log.Debugw("fetching rates")
	table, err := r.Fetcher.Fetch(ctx, base)

	if err == nil {
		log.Debugw("rates fetched", "count", table.Len())
		return currency.Ready(base, table, false)
	}

	log.Warnw("currency API error, trying fallback", "error", err, "fallback", r.fallbackBase())
	primaryMalformed := errors.Is(err, currency.ErrMalformedResponse)

	fallback, fallbackErr := r.Fetcher.Fetch(ctx, r.fallbackBase())

	if fallbackErr == nil {
		log.Warnw("using fallback rates, table is relative to fallback base", "table_base", fallback.Base())
		return currency.Ready(base, fallback, true)
	}

	log.Errorw("fallback API error", "error", fallbackErr)

	switch {
	case primaryMalformed:
		return currency.Failed(base, MessageUnableToFetch)
	case errors.Is(fallbackErr, currency.ErrMalformedResponse):
		return currency.Failed(base, MessageServiceUnavailable)
	}

	return currency.Failed(base, MessageCheckConnection)
}

func (r *RateStore) fallbackBase() string {
	if r.FallbackBase == "" {
		return currency.DefaultFallbackBase
	}

	return r.FallbackBase
}
