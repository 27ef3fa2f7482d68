package conversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"", 0, true},
		{".", 0, true},
		{",", 0, true},
		{"0", 0, true},
		{"100", 100, true},
		{"100.", 100, true},
		{".5", 0.5, true},
		{"1,234.56", 1234.56, true},
		{"1,234,", 1234, true},
		{"0.005", 0.005, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1e5", 0, false},
		{"-5", 0, false},
		{" 5", 0, false},
		{"NaN", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "1.00", FormatAmount(1))
	assert.Equal(t, "117.93", FormatAmount(117.93))
	assert.Equal(t, "1,234.56", FormatAmount(1234.56))
	assert.Equal(t, "1,234,567.89", FormatAmount(1234567.891))
	assert.Equal(t, "0.01", FormatAmount(0.005))
}
