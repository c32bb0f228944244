package currency

import (
	"math"
	"sort"
	"strings"
)

type (
	Status int

	// RateTable maps currency codes to rates relative to Base.
	// It is never modified after construction.
	RateTable struct {
		base  string
		rates map[string]float64
	}

	FetchState struct {
		Status    Status
		Table     RateTable
		Message   string
		Requested string
		Fallback  bool
	}

	ConversionState struct {
		Amount    float64
		Base      string
		Target    string
		Converted float64
	}

	View struct {
		Status    Status
		Message   string
		Fallback  bool
		TableBase string
		Options   []string
		Rate      float64
		HasRate   bool
		Converted float64
		Amount    float64
		Base      string
		Target    string
	}
)

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}

	return "unknown"
}

// NormalizeCode upper-cases and trims a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewRateTable copies rates into a new table. Blank codes and rates that
// are negative, NaN or infinite are dropped.
func NewRateTable(base string, rates map[string]float64) RateTable {
	table := RateTable{
		base:  NormalizeCode(base),
		rates: make(map[string]float64, len(rates)),
	}

	for code, rate := range rates {
		code = NormalizeCode(code)
		if code == "" || rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			continue
		}

		table.rates[code] = rate
	}

	return table
}

func (t RateTable) Base() string {
	return t.base
}

func (t RateTable) Rate(code string) (float64, bool) {
	rate, ok := t.rates[NormalizeCode(code)]
	return rate, ok
}

// Codes returns the table's currency codes in ascending order.
func (t RateTable) Codes() []string {
	codes := make([]string, 0, len(t.rates))

	for code := range t.rates {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	return codes
}

func (t RateTable) Len() int {
	return len(t.rates)
}

func (t RateTable) IsEmpty() bool {
	return len(t.rates) == 0
}

func Loading(requested string) FetchState {
	return FetchState{Status: StatusLoading, Requested: NormalizeCode(requested)}
}

func Ready(requested string, table RateTable, fallback bool) FetchState {
	return FetchState{
		Status:    StatusReady,
		Table:     table,
		Requested: NormalizeCode(requested),
		Fallback:  fallback,
	}
}

func Failed(requested, message string) FetchState {
	return FetchState{Status: StatusFailed, Message: message, Requested: NormalizeCode(requested)}
}
