// Package conversion converts amounts between currencies
// through the pivot currency of a rate table.
package conversion

import (
	"math"

	"github.com/kylycht/fxpad/model"
)

// Convert converts amount from one currency to another using rates.
// It never fails: a missing or zero source rate, a missing target
// rate on a cross conversion, or a non-finite result all return
// amount unchanged. A missing target rate from the pivot is read as 1.0,
// a zero target rate that is present converts to 0.
func Convert(from, to string, amount float64, rates model.RateTable) float64 {
	if from == to {
		return amount
	}

	pivot := rates.Pivot()
	fromRate, hasFrom := rates.Rate(from)
	toRate, hasTo := rates.Rate(to)

	var result float64

	switch {
	case from == pivot:
		if !hasTo {
			toRate = 1.0
		}
		result = amount * toRate

	case to == pivot:
		if !hasFrom || fromRate == 0 {
			return amount
		}
		result = amount / fromRate

	default:
		// cross rate through the pivot
		if !hasFrom || fromRate == 0 || !hasTo {
			return amount
		}
		result = amount / fromRate * toRate
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return amount
	}

	return result
}

// ConvertAll converts amount from anchor into every code.
// The anchor itself maps to amount unchanged.
func ConvertAll(anchor string, amount float64, codes []string, rates model.RateTable) map[string]float64 {
	out := make(map[string]float64, len(codes))
	for _, code := range codes {
		out[code] = Convert(anchor, code, amount, rates)
	}
	return out
}
