package model

import (
	"math"
	"sort"
	"time"
)

// RateTable is an immutable snapshot of rates
// relative to a pivot currency. Refreshes build
// a new table, readers never see a partial update.
type RateTable struct {
	pivot string
	rates map[string]float64
}

// NewRateTable copies rates into a new table for pivot.
// The pivot rate is forced to exactly 1.0 and entries that are
// negative or not finite are dropped. A zero rate is kept.
func NewRateTable(pivot string, rates map[string]float64) RateTable {
	if pivot == "" {
		pivot = Pivot
	}
	t := RateTable{pivot: pivot, rates: make(map[string]float64, len(rates)+1)}

	for code, rate := range rates {
		if !validRate(rate) {
			continue
		}
		t.rates[code] = rate
	}
	t.rates[pivot] = 1.0

	return t
}

func validRate(rate float64) bool {
	return rate >= 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

// Pivot returns the currency the table is relative to
func (t RateTable) Pivot() string {
	if t.pivot == "" {
		return Pivot
	}
	return t.pivot
}

// Rate returns the pivot-relative rate for code
func (t RateTable) Rate(code string) (float64, bool) {
	if code == t.Pivot() {
		return 1.0, true
	}
	rate, ok := t.rates[code]
	return rate, ok
}

// Len returns the number of entries including the pivot
func (t RateTable) Len() int {
	if t.rates == nil {
		return 1
	}
	return len(t.rates)
}

// Codes returns the sorted currency codes present in the table
func (t RateTable) Codes() []string {
	codes := make([]string, 0, len(t.rates)+1)
	for code := range t.rates {
		codes = append(codes, code)
	}
	if t.rates == nil {
		codes = append(codes, t.Pivot())
	}
	sort.Strings(codes)
	return codes
}

// Map returns a copy of the underlying rates
func (t RateTable) Map() map[string]float64 {
	out := make(map[string]float64, len(t.rates)+1)
	for code, rate := range t.rates {
		out[code] = rate
	}
	out[t.Pivot()] = 1.0
	return out
}

// Merge returns a new table where updates overlay the current rates.
// Codes missing from updates keep their previous value.
func (t RateTable) Merge(updates map[string]float64) RateTable {
	merged := t.Map()
	for code, rate := range updates {
		if validRate(rate) {
			merged[code] = rate
		}
	}
	return NewRateTable(t.Pivot(), merged)
}

// RateCache is the persisted form of a RateTable
type RateCache struct {
	Rates     RateTable // Pivot-relative rates
	Timestamp time.Time // Capture time
	Pivot     string    // Pivot currency marker
}

// DefaultMaxAge is the age after which cached rates are reported stale
const DefaultMaxAge = time.Hour

// IsExpired reports whether the cache is older than maxAge at now.
// Expiry is informational, stale rates stay usable.
func (c RateCache) IsExpired(now time.Time, maxAge time.Duration) bool {
	return now.Sub(c.Timestamp) > maxAge
}

// Age returns how old the cache is at now
func (c RateCache) Age(now time.Time) time.Duration {
	return now.Sub(c.Timestamp)
}

// offline snapshot of EUR-relative rates
var defaultRates = map[string]float64{
	"EUR": 1.0,
	"USD": 1.1793,
	"GBP": 0.8690,
	"CHF": 0.9364,
	"JPY": 173.12,
	"CAD": 1.6301,
	"AUD": 1.7862,
	"NZD": 1.9817,
	"CNY": 8.4147,
	"HKD": 9.1968,
	"SGD": 1.5104,
	"SEK": 11.0125,
	"NOK": 11.7490,
	"DKK": 7.4638,
	"PLN": 4.2585,
	"CZK": 24.4230,
	"HUF": 391.95,
	"INR": 103.3510,
	"BRL": 6.3361,
	"MXN": 21.7632,
	"TRY": 48.5280,
	"ZAR": 20.5948,
}

// DefaultRates returns the built-in offline rate table
func DefaultRates() RateTable {
	return NewRateTable(Pivot, defaultRates)
}

// DefaultRateCache wraps the offline table with the given time
func DefaultRateCache(now time.Time) RateCache {
	return RateCache{Rates: DefaultRates(), Timestamp: now, Pivot: Pivot}
}
