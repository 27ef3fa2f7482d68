// Package state holds the conversion screen state and its transitions.
//
// Exactly one selected currency is the anchor. Its raw text is the source
// of truth, every other item is derived from the last valid anchor value
// through the current rate table. Transitions are pure: they return a new
// State and never modify the receiver.
package state

import (
	"errors"
	"strings"

	"github.com/kylycht/fxpad/model"
	"github.com/kylycht/fxpad/service/conversion"
)

// ErrUnknownCurrency is returned when a code is not in the catalog
var ErrUnknownCurrency = errors.New("unknown currency")

// PlaceholderText replaces the anchor text when it is erased completely
const PlaceholderText = "0.00"

// default anchor amount after the anchor is reassigned
const resetValue = 1.0

// Selection is a rune range [Start, End) inside an item text.
// A collapsed selection is a cursor.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Collapsed reports whether the selection is a plain cursor
func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// Item is the display state of one selected currency
type Item struct {
	Currency  model.Currency `json:"currency"`
	Text      string         `json:"text"`
	Selection Selection      `json:"selection"`
	Value     float64        `json:"value"`
	Active    bool           `json:"active"`
}

// State is an immutable snapshot of the conversion screen
type State struct {
	catalog model.Catalog
	rates   model.RateTable
	anchor  string
	value   float64 // last value the anchor text parsed to
	items   []Item
}

// New builds the state restored from prefs. Unknown and duplicate
// codes are skipped. When the saved anchor is not selected the first
// currency becomes anchor at the default amount.
func New(catalog model.Catalog, rates model.RateTable, prefs model.UserPreferences) State {
	s := State{catalog: catalog, rates: rates}

	for _, code := range prefs.SelectedCodes {
		cur, ok := catalog.Lookup(code)
		if !ok || s.indexOf(cur.Code) >= 0 {
			continue
		}
		s.items = append(s.items, Item{Currency: cur})
	}

	if len(s.items) == 0 {
		return s
	}

	idx := s.indexOf(strings.ToUpper(prefs.ActiveCode))
	if idx < 0 {
		s.resetAnchor(0)
		return s.derive()
	}

	s.anchor = s.items[idx].Currency.Code
	s.value = resetValue
	if v, ok := conversion.ParseAmount(prefs.InputText); ok {
		s.value = v
	}
	s.items[idx].Text = prefs.InputText
	s.items[idx].Selection = fullSelection(prefs.InputText)

	return s.derive()
}

// Anchor returns the anchor currency code, empty when nothing is selected
func (s State) Anchor() string {
	return s.anchor
}

// AnchorValue returns the last valid numeric value of the anchor
func (s State) AnchorValue() float64 {
	return s.value
}

// AnchorItem returns the anchor display item
func (s State) AnchorItem() (Item, bool) {
	idx := s.indexOf(s.anchor)
	if idx < 0 {
		return Item{}, false
	}
	return s.items[idx], true
}

// Item returns the display item for code
func (s State) Item(code string) (Item, bool) {
	idx := s.indexOf(code)
	if idx < 0 {
		return Item{}, false
	}
	return s.items[idx], true
}

// Items returns a copy of the display items in selection order
func (s State) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Selected returns the selected currency codes in display order
func (s State) Selected() []string {
	codes := make([]string, len(s.items))
	for i, it := range s.items {
		codes[i] = it.Currency.Code
	}
	return codes
}

// Rates returns the rate table the derived items were computed with
func (s State) Rates() model.RateTable {
	return s.rates
}

// Preferences returns the persistable part of the state
func (s State) Preferences() model.UserPreferences {
	p := model.UserPreferences{SelectedCodes: s.Selected(), ActiveCode: s.anchor}
	if it, ok := s.AnchorItem(); ok {
		p.InputText = it.Text
	}
	return p
}

// AddCurrency appends code to the selection. Adding a selected code
// is a no-op. The first currency added to an empty selection becomes
// the anchor at the default amount.
func (s State) AddCurrency(code string) (State, error) {
	cur, ok := s.catalog.Lookup(code)
	if !ok {
		return s, ErrUnknownCurrency
	}
	if s.indexOf(cur.Code) >= 0 {
		return s, nil
	}

	next := s.clone()
	next.items = append(next.items, Item{Currency: cur})
	if next.anchor == "" {
		next.resetAnchor(len(next.items) - 1)
	}

	return next.derive(), nil
}

// RemoveCurrency drops code from the selection. Removing the anchor
// promotes the first remaining currency at the default amount.
func (s State) RemoveCurrency(code string) State {
	idx := s.indexOf(strings.ToUpper(code))
	if idx < 0 {
		return s
	}

	next := s.clone()
	removed := next.items[idx].Currency.Code
	next.items = append(next.items[:idx], next.items[idx+1:]...)

	if removed != next.anchor {
		return next.derive()
	}

	if len(next.items) == 0 {
		next.anchor = ""
		next.value = 0
		return next
	}

	next.resetAnchor(0)
	return next.derive()
}

// SetActive makes code the anchor and selects its whole text
// so the next digit replaces it.
func (s State) SetActive(code string) State {
	idx := s.indexOf(strings.ToUpper(code))
	if idx < 0 {
		return s
	}

	next := s.clone()
	it := &next.items[idx]
	if next.anchor != it.Currency.Code {
		next.anchor = it.Currency.Code
		next.value = it.Value
	}
	it.Selection = fullSelection(it.Text)

	return next.derive()
}

// EditText replaces the anchor text and puts the cursor at the end.
// Text that parses changes the anchor value and re-derives every other
// item, the literal text is kept as typed. Text that does not parse
// only changes the anchor text.
func (s State) EditText(text string) State {
	return s.edit(text, cursorAt(runeLen(text)))
}

// Select moves the anchor cursor or selection, clamped to its text
func (s State) Select(start, end int) State {
	idx := s.indexOf(s.anchor)
	if idx < 0 {
		return s
	}

	next := s.clone()
	it := &next.items[idx]
	it.Selection = clampSelection(Selection{Start: start, End: end}, runeLen(it.Text))
	return next
}

// UpdateRates swaps the rate table and re-derives the items
func (s State) UpdateRates(rates model.RateTable) State {
	next := s.clone()
	next.rates = rates
	return next.derive()
}

func (s State) edit(text string, sel Selection) State {
	idx := s.indexOf(s.anchor)
	if idx < 0 {
		return s
	}

	next := s.clone()
	it := &next.items[idx]
	it.Text = text
	it.Selection = clampSelection(sel, runeLen(text))

	v, ok := conversion.ParseAmount(text)
	if !ok {
		return next
	}

	next.value = v
	return next.derive()
}

// resetAnchor makes item idx the anchor at the default amount
func (s *State) resetAnchor(idx int) {
	text := model.DefaultInputText
	s.anchor = s.items[idx].Currency.Code
	s.value = resetValue
	s.items[idx].Text = text
	s.items[idx].Selection = fullSelection(text)
}

// derive recomputes every non-anchor item from the anchor value.
// s must already own its items.
func (s State) derive() State {
	if s.anchor == "" {
		return s
	}

	values := conversion.ConvertAll(s.anchor, s.value, s.Selected(), s.rates)

	for i := range s.items {
		it := &s.items[i]
		code := it.Currency.Code

		if code == s.anchor {
			it.Active = true
			it.Value = s.value
			continue
		}

		it.Active = false
		it.Value = values[code]
		it.Text = conversion.FormatAmount(it.Value)
		it.Selection = cursorAt(runeLen(it.Text))
	}

	return s
}

func (s State) clone() State {
	next := s
	next.items = make([]Item, len(s.items))
	copy(next.items, s.items)
	return next
}

func (s State) indexOf(code string) int {
	if code == "" {
		return -1
	}
	for i, it := range s.items {
		if it.Currency.Code == code {
			return i
		}
	}
	return -1
}

func runeLen(text string) int {
	return len([]rune(text))
}

func cursorAt(pos int) Selection {
	return Selection{Start: pos, End: pos}
}

func fullSelection(text string) Selection {
	return Selection{Start: 0, End: runeLen(text)}
}

func clampSelection(sel Selection, n int) Selection {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > n {
			return n
		}
		return v
	}

	sel.Start, sel.End = clamp(sel.Start), clamp(sel.End)
	if sel.Start > sel.End {
		sel.Start, sel.End = sel.End, sel.Start
	}
	return sel
}
