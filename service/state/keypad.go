package state

import (
	"strings"

	"github.com/kylycht/fxpad/service/conversion"
)

// Digit types d into the anchor. An active selection is replaced,
// otherwise d is inserted at the cursor. The cursor ends up at the end.
func (s State) Digit(d string) State {
	if len(d) != 1 || d[0] < '0' || d[0] > '9' {
		return s
	}

	it, ok := s.AnchorItem()
	if !ok {
		return s
	}

	text := []rune(it.Text)
	sel := clampSelection(it.Selection, len(text))

	var out string
	if sel.Collapsed() {
		out = string(text[:sel.Start]) + d + string(text[sel.Start:])
	} else {
		out = string(text[:sel.Start]) + d + string(text[sel.End:])
	}

	return s.EditText(out)
}

// DecimalPoint types the decimal separator into the anchor
func (s State) DecimalPoint() State {
	it, ok := s.AnchorItem()
	if !ok {
		return s
	}

	text := []rune(it.Text)
	sel := clampSelection(it.Selection, len(text))

	switch {
	case !sel.Collapsed():
		return s.EditText(string(text[:sel.Start]) + "0" + conversion.DecimalSeparator + string(text[sel.End:]))
	case strings.Contains(it.Text, conversion.DecimalSeparator):
		return s
	case it.Text == "" || it.Text == "0":
		return s.EditText("0" + conversion.DecimalSeparator)
	default:
		return s.EditText(it.Text + conversion.DecimalSeparator)
	}
}

// Backspace erases the active selection or the last character.
// Erasing the last remaining character leaves the placeholder,
// fully selected so the next digit replaces it.
func (s State) Backspace() State {
	it, ok := s.AnchorItem()
	if !ok {
		return s
	}

	text := []rune(it.Text)
	sel := clampSelection(it.Selection, len(text))

	switch {
	case !sel.Collapsed():
		return s.edit(string(text[:sel.Start])+string(text[sel.End:]), cursorAt(sel.Start))
	case len(text) <= 1:
		return s.edit(PlaceholderText, fullSelection(PlaceholderText))
	default:
		return s.EditText(string(text[:len(text)-1]))
	}
}
