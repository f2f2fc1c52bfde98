// Package currencyutils normalizes the numeric cells found in supplier price lists.
//
// Suppliers export prices as "1'234.56", "€1.234,56", "CHF 12.50" or "12,5".
// StandardizeAmount rewrites such values into the plain form accepted by
// decimal.NewFromString.
package currencyutils

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"fjacquet/pricelist-import/internal/parsererror"

	"github.com/shopspring/decimal"
)

var (
	currencySymbols = regexp.MustCompile(`[€$£¥₣₤₧₹₺₽₩฿₫₲₴₸₼₪\s\x{00A0}\x{202F}]`)
	currencyCodes   = regexp.MustCompile(`^(?:CHF|EUR|USD|GBP|JPY|SEK|NOK|DKK|PLN|CZK|CAD|AUD)|(?:CHF|EUR|USD|GBP|JPY|SEK|NOK|DKK|PLN|CZK|CAD|AUD)$`)
	commaGroups     = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+$`)
	dotGroups       = regexp.MustCompile(`^-?\d{1,3}(\.\d{3}){2,}$`)
)

// MaxExponent bounds the decimal exponent of accepted numbers. Comparing
// decimals rescales them, so "1e400000000" would allocate a 400M digit integer.
const MaxExponent = 32

// InRange reports whether the exponent of d lies within ±MaxExponent.
func InRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -MaxExponent && exp <= MaxExponent
}

// ParseAmount parses a price-list number into a decimal value.
// Blank input is an error: callers decide whether a blank cell is allowed.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, fmt.Errorf("empty value: %w", parsererror.ErrNumberFormat)
	}

	amount, err := decimal.NewFromString(StandardizeAmount(amountStr))
	if err != nil {
		return decimal.Zero, parsererror.ErrNumberFormat
	}
	if !InRange(amount) {
		return decimal.Zero, fmt.Errorf("exponent out of range: %w", parsererror.ErrNumberFormat)
	}
	return amount, nil
}

var (
	maxWhole = decimal.NewFromInt(math.MaxInt32)
	minWhole = decimal.NewFromInt(math.MinInt32)
)

// ParseWholeNumber parses a value that must be an integer ("12", "12.0", "1'200").
func ParseWholeNumber(value string) (int, error) {
	amount, err := ParseAmount(value)
	if err != nil {
		return 0, err
	}
	if !amount.Equal(amount.Truncate(0)) {
		return 0, fmt.Errorf("not a whole number: %w", parsererror.ErrNumberFormat)
	}
	if amount.GreaterThan(maxWhole) || amount.LessThan(minWhole) {
		return 0, fmt.Errorf("value out of range: %w", parsererror.ErrNumberFormat)
	}
	return int(amount.IntPart()), nil
}

// StandardizeAmount converts the usual supplier number notations to a string
// that decimal.NewFromString understands.
func StandardizeAmount(amountStr string) string {
	amountStr = currencySymbols.ReplaceAllString(amountStr, "")
	amountStr = currencyCodes.ReplaceAllString(strings.ToUpper(amountStr), "")

	// Apostrophes are Swiss thousands separators (1'234.56)
	amountStr = strings.ReplaceAll(amountStr, "'", "")

	hasComma := strings.Contains(amountStr, ",")
	hasDot := strings.Contains(amountStr, ".")
	switch {
	case hasComma && hasDot:
		if strings.LastIndex(amountStr, ".") < strings.LastIndex(amountStr, ",") {
			// 1.234,56
			amountStr = strings.ReplaceAll(amountStr, ".", "")
			amountStr = strings.ReplaceAll(amountStr, ",", ".")
		} else {
			// 1,234.56
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	case hasComma:
		parts := strings.Split(amountStr, ",")
		if len(parts) == 2 && len(parts[1]) != 3 {
			// 1234,56 or 12,5
			amountStr = strings.Replace(amountStr, ",", ".", 1)
		} else if commaGroups.MatchString(amountStr) {
			// 1,234 or 1,234,567
			amountStr = strings.ReplaceAll(amountStr, ",", "")
		}
	case dotGroups.MatchString(amountStr):
		// 1.234.567
		amountStr = strings.ReplaceAll(amountStr, ".", "")
	}

	return amountStr
}

// IsPositive checks if an amount is strictly greater than zero
func IsPositive(amount decimal.Decimal) bool {
	return amount.GreaterThan(decimal.Zero)
}
