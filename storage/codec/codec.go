// Package codec encodes rate caches and preferences as JSON text.
//
// Decoding never fails from the caller's point of view: anything that
// cannot be trusted yields a Result with Outcome UseDefault and the
// reason, and the caller substitutes its defaults.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kylycht/fxpad/model"
)

// Outcome tells whether a decoded value can be used
type Outcome int

const (
	Decoded Outcome = iota
	UseDefault
)

func (o Outcome) String() string {
	if o == Decoded {
		return "decoded"
	}
	return "use_default"
}

// Result is the outcome of decoding a persisted blob
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Reason  error // why the default must be used
}

// OK reports whether Value was decoded successfully
func (r Result[T]) OK() bool {
	return r.Outcome == Decoded
}

// Or returns Value when decoded, def otherwise
func (r Result[T]) Or(def T) T {
	if r.OK() {
		return r.Value
	}
	return def
}

func useDefault[T any](reason error) Result[T] {
	return Result[T]{Outcome: UseDefault, Reason: reason}
}

var (
	ErrEmptyRates   = errors.New("rate cache has no rates")
	ErrInvalidRate  = errors.New("rate cache holds an invalid rate")
	ErrPivotMissing = errors.New("rate cache has no pivot")
)

type rateRecord struct {
	Rates     map[string]float64 `json:"rates"`
	Timestamp int64              `json:"timestamp"` // unix millis
	Pivot     string             `json:"pivot"`
}

type preferencesRecord struct {
	SelectedCodes []string `json:"selectedCodes"`
	ActiveCode    *string  `json:"activeCode"`
	InputText     string   `json:"inputText"`
	LastSaved     int64    `json:"lastSaved"` // unix millis
}

// EncodeRates renders a rate cache
func EncodeRates(c model.RateCache) (string, error) {
	pivot := c.Pivot
	if pivot == "" {
		pivot = c.Rates.Pivot()
	}

	b, err := json.Marshal(rateRecord{
		Rates:     c.Rates.Map(),
		Timestamp: c.Timestamp.UnixMilli(),
		Pivot:     pivot,
	})
	if err != nil {
		return "", fmt.Errorf("encode rates: %w", err)
	}
	return string(b), nil
}

// DecodeRates parses a rate cache. Rates must be finite and not negative.
func DecodeRates(text string) Result[model.RateCache] {
	var rec rateRecord
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return useDefault[model.RateCache](fmt.Errorf("decode rates: %w", err))
	}

	if rec.Pivot == "" {
		return useDefault[model.RateCache](ErrPivotMissing)
	}
	if len(rec.Rates) == 0 {
		return useDefault[model.RateCache](ErrEmptyRates)
	}
	for code, rate := range rec.Rates {
		if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
			return useDefault[model.RateCache](fmt.Errorf("%w: %s=%v", ErrInvalidRate, code, rate))
		}
	}

	return Result[model.RateCache]{Value: model.RateCache{
		Rates:     model.NewRateTable(rec.Pivot, rec.Rates),
		Timestamp: time.UnixMilli(rec.Timestamp),
		Pivot:     rec.Pivot,
	}}
}

// EncodePreferences renders user preferences
func EncodePreferences(p model.UserPreferences) (string, error) {
	rec := preferencesRecord{
		SelectedCodes: p.SelectedCodes,
		InputText:     p.InputText,
		LastSaved:     p.LastSaved.UnixMilli(),
	}
	if rec.SelectedCodes == nil {
		rec.SelectedCodes = []string{}
	}
	if p.ActiveCode != "" {
		active := p.ActiveCode
		rec.ActiveCode = &active
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode preferences: %w", err)
	}
	return string(b), nil
}

// DecodePreferences parses user preferences
func DecodePreferences(text string) Result[model.UserPreferences] {
	var rec preferencesRecord
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return useDefault[model.UserPreferences](fmt.Errorf("decode preferences: %w", err))
	}
	if rec.SelectedCodes == nil {
		return useDefault[model.UserPreferences](errors.New("preferences have no selection"))
	}

	p := model.UserPreferences{
		SelectedCodes: rec.SelectedCodes,
		InputText:     rec.InputText,
		LastSaved:     time.UnixMilli(rec.LastSaved),
	}
	if rec.ActiveCode != nil {
		p.ActiveCode = *rec.ActiveCode
	}

	return Result[model.UserPreferences]{Value: p}
}
