// Package transform applies the per-field conversions declared in a parser
// configuration to raw cell values.
package transform

import (
	"fmt"
	"strings"

	"fjacquet/pricelist-import/internal/currencyutils"
	"fjacquet/pricelist-import/internal/models"

	"github.com/shopspring/decimal"
)

// Apply runs ts over value in declared order. Numeric steps parse the current
// value as a decimal and render the result back; they leave blank values alone
// so optional cells stay optional.
func Apply(value string, ts []models.Transformation) (string, error) {
	for _, t := range ts {
		next, err := applyOne(value, t)
		if err != nil {
			return value, err
		}
		value = next
	}
	return value, nil
}

func applyOne(value string, t models.Transformation) (string, error) {
	switch t.Kind {
	case models.TransformTrim:
		return strings.TrimSpace(value), nil
	case models.TransformUppercase:
		return strings.ToUpper(value), nil
	case models.TransformLowercase:
		return strings.ToLower(value), nil
	case models.TransformDivide, models.TransformMultiply:
		if strings.TrimSpace(value) == "" {
			return value, nil
		}
		amount, err := currencyutils.ParseAmount(value)
		if err != nil {
			return value, fmt.Errorf("cannot %s: %w", t.Kind, err)
		}
		return numeric(amount, t).String(), nil
	}
	return value, fmt.Errorf("unknown transformation %q", t.Kind)
}

func numeric(amount decimal.Decimal, t models.Transformation) decimal.Decimal {
	if t.Kind == models.TransformDivide {
		return amount.Div(t.Factor)
	}
	return amount.Mul(t.Factor)
}

// Fields applies the transformations of every field present in values and
// returns the transformed copy. The first failing field is reported.
func Fields(values map[models.Field]string, ts map[models.Field][]models.Transformation) (map[models.Field]string, models.Field, error) {
	out := make(map[models.Field]string, len(values))
	for _, f := range models.TargetFields() {
		v, ok := values[f]
		if !ok {
			continue
		}
		transformed, err := Apply(v, ts[f])
		if err != nil {
			return nil, f, err
		}
		out[f] = transformed
	}
	return out, "", nil
}
