package conversion

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DecimalSeparator  = "."
	GroupingSeparator = ","
)

// digits with at most one decimal separator, grouping already stripped
var numberPattern = regexp.MustCompile(`^[0-9]*\.?[0-9]*$`)

var printer = message.NewPrinter(language.English)

// ParseAmount parses raw anchor text.
// Empty text, a lone decimal separator and a lone grouping separator
// read as zero. Grouping separators are ignored, anything other
// than digits and one decimal separator fails to parse.
func ParseAmount(text string) (float64, bool) {
	switch text {
	case "", DecimalSeparator, GroupingSeparator:
		return 0, true
	}

	clean := strings.ReplaceAll(text, GroupingSeparator, "")
	if !numberPattern.MatchString(clean) {
		return 0, false
	}

	clean = strings.TrimSuffix(clean, DecimalSeparator)
	if strings.HasPrefix(clean, DecimalSeparator) {
		clean = "0" + clean
	}
	if clean == "" {
		return 0, true
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, false
	}

	return d.InexactFloat64(), true
}

// FormatAmount renders a derived amount with two decimals
// and grouped thousands, e.g. 1,234.56
func FormatAmount(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	rounded := decimal.NewFromFloat(amount).Round(2).InexactFloat64()
	return printer.Sprintf("%.2f", rounded)
}
