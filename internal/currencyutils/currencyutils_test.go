package currencyutils

import (
	"testing"

	"fjacquet/pricelist-import/internal/parsererror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		amountStr string
		expected  string
		hasError  bool
	}{
		{"Simple decimal", "123.45", "123.45", false},
		{"Negative decimal", "-123.45", "-123.45", false},
		{"Integer", "100", "100", false},
		{"With comma decimal separator", "123,45", "123.45", false},
		{"Single decimal after comma", "12,5", "12.5", false},
		{"With thousand separator (comma)", "1,234.56", "1234.56", false},
		{"With thousand separator (apostrophe)", "1'234.56", "1234.56", false},
		{"European format", "1.234,56", "1234.56", false},
		{"With currency symbol (EUR)", "€123.45", "123.45", false},
		{"With currency code prefix", "CHF 123.45", "123.45", false},
		{"With currency code suffix", "123.45 EUR", "123.45", false},
		{"With spaces", "  123.45  ", "123.45", false},
		{"Malformed decimal", "123.45.67", "", true},
		{"Non-numeric", "notanumber", "", true},
		{"Empty string", "", "", true},
		{"Blank string", "   ", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseAmount(tc.amountStr)
			if tc.hasError {
				require.Error(t, err)
				assert.ErrorIs(t, err, parsererror.ErrNumberFormat)
				return
			}
			require.NoError(t, err)
			expected := decimal.RequireFromString(tc.expected)
			assert.True(t, expected.Equal(result), "expected %s but got %s", expected, result)
		})
	}
}

func TestStandardizeAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"123.45", "123.45"},
		{"1,234,567.89", "1234567.89"},
		{"1.234.567,89", "1234567.89"},
		{"1.234.567", "1234567"},
		{"1,234", "1234"},
		{"€1.234,56", "1234.56"},
		{"1 234,50", "1234.50"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, StandardizeAmount(tc.input))
		})
	}
}

func TestParseWholeNumber(t *testing.T) {
	n, err := ParseWholeNumber("12")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	n, err = ParseWholeNumber("1'200.0")
	require.NoError(t, err)
	assert.Equal(t, 1200, n)

	_, err = ParseWholeNumber("2.5")
	assert.ErrorIs(t, err, parsererror.ErrNumberFormat)

	_, err = ParseWholeNumber("ten")
	assert.ErrorIs(t, err, parsererror.ErrNumberFormat)
}

func TestParseWholeNumber_OutOfRange(t *testing.T) {
	for _, value := range []string{"18446744073709551617", "9223372036854775808", "2147483648", "-2147483649", "1e40"} {
		t.Run(value, func(t *testing.T) {
			_, err := ParseWholeNumber(value)
			require.Error(t, err)
			assert.ErrorIs(t, err, parsererror.ErrNumberFormat)
		})
	}

	n, err := ParseWholeNumber("2147483647")
	require.NoError(t, err)
	assert.Equal(t, 2147483647, n)
}

func TestParseAmount_ExponentBounds(t *testing.T) {
	for _, value := range []string{"1e400000000", "1E-400000000", "5e33"} {
		t.Run(value, func(t *testing.T) {
			_, err := ParseAmount(value)
			require.Error(t, err)
			assert.ErrorIs(t, err, parsererror.ErrNumberFormat)
			assert.Contains(t, err.Error(), "exponent out of range")
		})
	}

	amount, err := ParseAmount("1.25E+3")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1250).Equal(amount))
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(decimal.New(1, MaxExponent)))
	assert.True(t, InRange(decimal.New(1, -MaxExponent)))
	assert.False(t, InRange(decimal.New(1, MaxExponent+1)))
	assert.False(t, InRange(decimal.New(1, 400000000)))
}

func TestIsPositive(t *testing.T) {
	assert.True(t, IsPositive(decimal.NewFromFloat(0.01)))
	assert.False(t, IsPositive(decimal.Zero))
	assert.False(t, IsPositive(decimal.NewFromInt(-1)))
}
