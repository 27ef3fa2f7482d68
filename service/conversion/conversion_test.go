package conversion

import (
	"math"
	"testing"

	"github.com/kylycht/fxpad/model"
	"github.com/stretchr/testify/assert"
)

func sampleRates() model.RateTable {
	return model.NewRateTable("EUR", map[string]float64{
		"EUR": 1.0,
		"USD": 1.1793,
		"GBP": 0.8690,
	})
}

func TestConvert_KnownRates(t *testing.T) {
	rates := sampleRates()

	assert.InDelta(t, 117.93, Convert("EUR", "USD", 100, rates), 0.01)
	assert.InDelta(t, 73.68, Convert("USD", "GBP", 100, rates), 0.01)
	assert.InDelta(t, 84.80, Convert("USD", "EUR", 100, rates), 0.01)
}

func TestConvert_Identity(t *testing.T) {
	tables := []model.RateTable{
		sampleRates(),
		{},
		model.NewRateTable("EUR", map[string]float64{"USD": 0}),
	}

	for _, table := range tables {
		for _, code := range []string{"EUR", "USD", "XXX"} {
			for _, amount := range []float64{0, 1, 123.456, 1e12} {
				assert.Equal(t, amount, Convert(code, code, amount, table))
			}
		}
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	rates := model.DefaultRates()
	codes := rates.Codes()

	for _, from := range codes {
		for _, to := range codes {
			there := Convert(from, to, 250.75, rates)
			back := Convert(to, from, there, rates)
			assert.InDelta(t, 250.75, back, 1e-9, "%s -> %s", from, to)
		}
	}
}

func TestConvert_Fallbacks(t *testing.T) {
	rates := model.NewRateTable("EUR", map[string]float64{"USD": 1.2})

	// missing target from the pivot reads as 1.0
	assert.Equal(t, 50.0, Convert("EUR", "XXX", 50, rates))
	// missing source to the pivot
	assert.Equal(t, 50.0, Convert("XXX", "EUR", 50, rates))
	// missing source on a cross conversion
	assert.Equal(t, 50.0, Convert("XXX", "USD", 50, rates))
	// missing target on a cross conversion
	assert.Equal(t, 50.0, Convert("USD", "XXX", 50, rates))

	zero := model.NewRateTable("EUR", map[string]float64{"USD": 1.2, "XAU": 0})

	// a present zero target rate is not a missing one
	assert.Equal(t, 0.0, Convert("EUR", "XAU", 100, zero))
	assert.Equal(t, 0.0, Convert("USD", "XAU", 100, zero))
	// zero source rate
	assert.Equal(t, 100.0, Convert("XAU", "EUR", 100, zero))
	assert.Equal(t, 100.0, Convert("XAU", "USD", 100, zero))
}

func TestConvert_NeverNaNOrInf(t *testing.T) {
	tables := []model.RateTable{
		{},
		model.NewRateTable("EUR", nil),
		model.NewRateTable("EUR", map[string]float64{"USD": 0, "GBP": math.NaN()}),
		model.NewRateTable("EUR", map[string]float64{"USD": 1e-320, "GBP": 1e308}),
	}

	for _, table := range tables {
		for _, from := range []string{"EUR", "USD", "GBP", "XXX"} {
			for _, to := range []string{"EUR", "USD", "GBP", "XXX"} {
				got := Convert(from, to, 1e10, table)
				assert.False(t, math.IsNaN(got), "%s -> %s", from, to)
				assert.False(t, math.IsInf(got, 0), "%s -> %s", from, to)
			}
		}
	}
}

func TestConvertAll(t *testing.T) {
	rates := sampleRates()

	got := ConvertAll("USD", 100, []string{"USD", "EUR", "GBP"}, rates)

	assert.Len(t, got, 3)
	assert.Equal(t, 100.0, got["USD"])
	assert.InDelta(t, 84.80, got["EUR"], 0.01)
	assert.InDelta(t, 73.68, got["GBP"], 0.01)

	assert.Empty(t, ConvertAll("USD", 100, nil, rates))
}
