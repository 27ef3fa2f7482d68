package model

import (
	"strings"

	"github.com/Rhymond/go-money"
)

// Pivot is the currency every rate in a RateTable is expressed against
const Pivot = "EUR"

// Currency holds information
// on a selectable currency
type Currency struct {
	Code   string `json:"code"`   // ISO 4217 code, unique key
	Name   string `json:"name"`   // Display name
	Symbol string `json:"symbol"` // Display symbol
}

// catalog entries in display order, symbols come from go-money
var catalog = newCatalog(
	[2]string{"EUR", "Euro"},
	[2]string{"USD", "US Dollar"},
	[2]string{"GBP", "British Pound"},
	[2]string{"CHF", "Swiss Franc"},
	[2]string{"JPY", "Japanese Yen"},
	[2]string{"CAD", "Canadian Dollar"},
	[2]string{"AUD", "Australian Dollar"},
	[2]string{"NZD", "New Zealand Dollar"},
	[2]string{"CNY", "Chinese Yuan"},
	[2]string{"HKD", "Hong Kong Dollar"},
	[2]string{"SGD", "Singapore Dollar"},
	[2]string{"SEK", "Swedish Krona"},
	[2]string{"NOK", "Norwegian Krone"},
	[2]string{"DKK", "Danish Krone"},
	[2]string{"PLN", "Polish Zloty"},
	[2]string{"CZK", "Czech Koruna"},
	[2]string{"HUF", "Hungarian Forint"},
	[2]string{"INR", "Indian Rupee"},
	[2]string{"BRL", "Brazilian Real"},
	[2]string{"MXN", "Mexican Peso"},
	[2]string{"TRY", "Turkish Lira"},
	[2]string{"ZAR", "South African Rand"},
)

// Catalog is the fixed set of currencies a user can select from
type Catalog struct {
	ordered []Currency
	byCode  map[string]Currency
}

func newCatalog(entries ...[2]string) Catalog {
	c := Catalog{byCode: make(map[string]Currency, len(entries))}

	for _, e := range entries {
		cur := Currency{Code: e[0], Name: e[1], Symbol: e[0]}
		if mc := money.GetCurrency(e[0]); mc != nil && mc.Grapheme != "" {
			cur.Symbol = mc.Grapheme
		}

		c.ordered = append(c.ordered, cur)
		c.byCode[cur.Code] = cur
	}

	return c
}

// DefaultCatalog returns the predefined currencies
func DefaultCatalog() Catalog {
	return catalog
}

// Lookup finds a currency by code, case-insensitively
func (c Catalog) Lookup(code string) (Currency, bool) {
	cur, ok := c.byCode[strings.ToUpper(code)]
	return cur, ok
}

// Currencies returns a copy of all currencies in display order
func (c Catalog) Currencies() []Currency {
	out := make([]Currency, len(c.ordered))
	copy(out, c.ordered)
	return out
}
