package model

import "time"

// DefaultInputText is the anchor text used when nothing was saved
const DefaultInputText = "1.00"

// starter selection, the first entry is the initial anchor
var starterCodes = []string{"EUR", "USD", "GBP", "CHF"}

// UserPreferences holds the state that survives restarts
type UserPreferences struct {
	SelectedCodes []string  // Selected currencies in display order
	ActiveCode    string    // Anchor currency, empty when nothing is selected
	InputText     string    // Raw anchor text
	LastSaved     time.Time // Stamped on save
}

// DefaultPreferences returns the preferences of a fresh install
func DefaultPreferences() UserPreferences {
	codes := make([]string, len(starterCodes))
	copy(codes, starterCodes)

	return UserPreferences{
		SelectedCodes: codes,
		ActiveCode:    codes[0],
		InputText:     DefaultInputText,
	}
}
