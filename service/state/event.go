package state

import "github.com/kylycht/fxpad/model"

// Event is a transition request handled by Reduce
type Event struct {
	Name  string
	apply func(State) (State, error)
}

// Reduce applies ev to s. On error s is returned unchanged.
func Reduce(s State, ev Event) (State, error) {
	if ev.apply == nil {
		return s, nil
	}
	next, err := ev.apply(s)
	if err != nil {
		return s, err
	}
	return next, nil
}

func pure(name string, fn func(State) State) Event {
	return Event{Name: name, apply: func(s State) (State, error) { return fn(s), nil }}
}

// Digit is a keypad digit press
func Digit(d string) Event {
	return pure("digit", func(s State) State { return s.Digit(d) })
}

// DecimalPoint is a keypad decimal separator press
func DecimalPoint() Event {
	return pure("decimal", State.DecimalPoint)
}

// Backspace is a keypad backspace press
func Backspace() Event {
	return pure("backspace", State.Backspace)
}

// EditText replaces the anchor text, e.g. on paste
func EditText(text string) Event {
	return pure("edit", func(s State) State { return s.EditText(text) })
}

// Select moves the anchor cursor or selection
func Select(start, end int) Event {
	return pure("select", func(s State) State { return s.Select(start, end) })
}

// SetActive makes a selected currency the anchor
func SetActive(code string) Event {
	return pure("set_active", func(s State) State { return s.SetActive(code) })
}

// AddCurrency appends a currency to the selection
func AddCurrency(code string) Event {
	return Event{Name: "add_currency", apply: func(s State) (State, error) { return s.AddCurrency(code) }}
}

// RemoveCurrency drops a currency from the selection
func RemoveCurrency(code string) Event {
	return pure("remove_currency", func(s State) State { return s.RemoveCurrency(code) })
}

// RatesUpdated applies a freshly loaded rate table
func RatesUpdated(rates model.RateTable) Event {
	return pure("rates_updated", func(s State) State { return s.UpdateRates(rates) })
}
