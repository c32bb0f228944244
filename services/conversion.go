package services

import (
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/malusev998/currency-converter"
)

const (
	DefaultAmount = 1
	DefaultBase   = "USD"
	DefaultTarget = "INR"
)

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

var _ currency.Converter = (*ConversionController)(nil)

type (
	// ConversionController keeps the user's input and the converted amount
	// derived from the RateStore. The converted amount is recomputed when the
	// amount, the target or the rate table changes, and only while the store
	// is Ready.
	ConversionController struct {
		Store *RateStore
		// Rand decides where a quick-select chip goes. The choice is
		// intentionally random; seed it for reproducible runs.
		Rand *rand.Rand

		mutex       sync.Mutex
		state       currency.ConversionState
		unsubscribe func()
	}
)

func DefaultConversionState() currency.ConversionState {
	return currency.ConversionState{
		Amount: DefaultAmount,
		Base:   DefaultBase,
		Target: DefaultTarget,
	}
}

func NewConversionController(store *RateStore, initial currency.ConversionState) *ConversionController {
	initial.Base = currency.NormalizeCode(initial.Base)
	initial.Target = currency.NormalizeCode(initial.Target)
	initial.Amount = sanitizeAmount(initial.Amount)

	c := &ConversionController{
		Store: store,
		Rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		state: initial,
	}

	c.unsubscribe = store.Subscribe(c.onFetchState)

	return c
}

// Convert multiplies amount by rate.
func Convert(amount, rate float64) float64 {
	value, _ := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(rate)).Float64()

	return value
}

func sanitizeAmount(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0
	}

	return amount
}

// Start requests the rate table of the initial base currency.
func (c *ConversionController) Start() <-chan struct{} {
	return c.Store.Resolve(c.State().Base)
}

func (c *ConversionController) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *ConversionController) onFetchState(state currency.FetchState) {
	if state.Status != currency.StatusReady {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.recompute()
}

// recompute must be called with c.mutex held.
func (c *ConversionController) recompute() {
	fs := c.Store.Current()

	if fs.Status != currency.StatusReady || c.state.Amount <= 0 {
		return
	}

	rate, ok := fs.Table.Rate(c.state.Target)

	if !ok {
		return
	}

	c.state.Converted = Convert(c.state.Amount, rate)
}

func (c *ConversionController) SetAmount(amount float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.state.Amount = sanitizeAmount(amount)
	c.recompute()
}

// SetAmountString accepts free-form input, keeping only digits and dots.
// Input that does not parse to a number sets the amount to 0.
func (c *ConversionController) SetAmountString(value string) {
	c.SetAmount(parseAmount(value))
}

func parseAmount(value string) float64 {
	value = nonNumeric.ReplaceAllString(value, "")

	if parts := strings.SplitN(value, ".", 3); len(parts) == 3 {
		value = parts[0] + "." + parts[1]
	}

	amount, err := strconv.ParseFloat(value, 64)

	if err != nil {
		return 0
	}

	return amount
}

func (c *ConversionController) SetBaseCurrency(code string) <-chan struct{} {
	c.mutex.Lock()
	c.state.Base = currency.NormalizeCode(code)
	base := c.state.Base
	c.mutex.Unlock()

	return c.Store.Resolve(base)
}

func (c *ConversionController) SetTargetCurrency(code string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.state.Target = currency.NormalizeCode(code)
	c.recompute()
}

// Swap exchanges the currencies and the two amounts as they are. The
// converted amount is only recomputed once the new base's table is Ready.
func (c *ConversionController) Swap() <-chan struct{} {
	c.mutex.Lock()
	c.state.Base, c.state.Target = c.state.Target, c.state.Base
	c.state.Amount, c.state.Converted = c.state.Converted, c.state.Amount
	base := c.state.Base
	c.mutex.Unlock()

	return c.Store.Resolve(base)
}

// SelectChip assigns a featured currency to the base or the target by a
// coin flip, unless it is already one of them.
func (c *ConversionController) SelectChip(code string) <-chan struct{} {
	code = currency.NormalizeCode(code)

	c.mutex.Lock()

	if !isFeatured(code) || code == c.state.Base || code == c.state.Target {
		c.mutex.Unlock()
		return settled()
	}

	if c.Rand.Float64() < 0.5 {
		c.state.Base = code
		c.mutex.Unlock()

		return c.Store.Resolve(code)
	}

	c.state.Target = code
	c.recompute()
	c.mutex.Unlock()

	return settled()
}

// Retry requests the current base's table again.
func (c *ConversionController) Retry() <-chan struct{} {
	return c.Store.Resolve(c.State().Base)
}

func (c *ConversionController) State() currency.ConversionState {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.state
}

func (c *ConversionController) ConvertedAmount() float64 {
	return c.State().Converted
}

func (c *ConversionController) Options() []string {
	return CurrencyOptions(c.Store.Current().Table)
}

func (c *ConversionController) View() currency.View {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	fs := c.Store.Current()
	view := currency.View{
		Status:    fs.Status,
		Message:   fs.Message,
		Fallback:  fs.Fallback,
		TableBase: fs.Table.Base(),
		Options:   CurrencyOptions(fs.Table),
		Converted: c.state.Converted,
		Amount:    c.state.Amount,
		Base:      c.state.Base,
		Target:    c.state.Target,
	}

	if fs.Status == currency.StatusReady {
		view.Rate, view.HasRate = fs.Table.Rate(c.state.Target)
	}

	return view
}

func settled() <-chan struct{} {
	done := make(chan struct{})
	close(done)

	return done
}
