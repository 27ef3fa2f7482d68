package service

import (
	"context"
)

// RateResponse holds the rates returned
// by a remote source for a pivot currency
type RateResponse struct {
	Pivot string             // Pivot the rates are relative to
	Rates map[string]float64 // Rates per code, the pivot itself may be absent
}

// Exchange interface describes
// methods specs for obtaining exchange rates
type Exchange interface {
	// FetchRates returns the latest rates
	// relative to pivot
	FetchRates(ctx context.Context, pivot string) (RateResponse, error)
}
