package models

import (
	"fmt"
	"strings"

	"fjacquet/pricelist-import/internal/currencyutils"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// TransformKind tags a Transformation variant.
type TransformKind string

const (
	TransformDivide    TransformKind = "divide"
	TransformMultiply  TransformKind = "multiply"
	TransformTrim      TransformKind = "trim"
	TransformUppercase TransformKind = "uppercase"
	TransformLowercase TransformKind = "lowercase"
)

// Transformation is one declared conversion step for a field's value.
// Factor is only meaningful for divide (the divisor) and multiply (the multiplier).
type Transformation struct {
	Kind   TransformKind
	Factor decimal.Decimal
}

// Divide returns a divide transformation.
func Divide(divisor decimal.Decimal) Transformation {
	return Transformation{Kind: TransformDivide, Factor: divisor}
}

// Multiply returns a multiply transformation.
func Multiply(multiplier decimal.Decimal) Transformation {
	return Transformation{Kind: TransformMultiply, Factor: multiplier}
}

// Trim returns a whitespace trim transformation.
func Trim() Transformation { return Transformation{Kind: TransformTrim} }

// Uppercase returns an upper-casing transformation.
func Uppercase() Transformation { return Transformation{Kind: TransformUppercase} }

// Lowercase returns a lower-casing transformation.
func Lowercase() Transformation { return Transformation{Kind: TransformLowercase} }

// IsNumeric reports whether the transformation works on the parsed number.
func (t Transformation) IsNumeric() bool {
	return t.Kind == TransformDivide || t.Kind == TransformMultiply
}

// factorKey is the YAML key carrying the factor of a numeric transformation.
func (k TransformKind) factorKey() string {
	switch k {
	case TransformDivide:
		return "divisor"
	case TransformMultiply:
		return "multiplier"
	}
	return ""
}

func (k TransformKind) known() bool {
	switch k {
	case TransformDivide, TransformMultiply, TransformTrim, TransformUppercase, TransformLowercase:
		return true
	}
	return false
}

func (t Transformation) String() string {
	if t.IsNumeric() {
		return fmt.Sprintf("%s(%s)", t.Kind, t.Factor.String())
	}
	return string(t.Kind)
}

// UnmarshalYAML accepts the three documented shapes:
//
//	trim
//	{type: divide, divisor: 100}
//	{divide: 100}
func (t *Transformation) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		kind := TransformKind(strings.ToLower(node.Value))
		if !kind.known() {
			return fmt.Errorf("unknown transformation %q", node.Value)
		}
		if kind.factorKey() != "" {
			return fmt.Errorf("transformation %q needs a %s", kind, kind.factorKey())
		}
		*t = Transformation{Kind: kind}
		return nil
	case yaml.MappingNode:
		return t.decodeMapping(node)
	default:
		return fmt.Errorf("transformation must be a name or a mapping")
	}
}

func (t *Transformation) decodeMapping(node *yaml.Node) error {
	pairs := mappingPairs(node)

	if typeNode, ok := pairs["type"]; ok {
		kind := TransformKind(strings.ToLower(typeNode.Value))
		if !kind.known() {
			return fmt.Errorf("unknown transformation %q", typeNode.Value)
		}
		allowed := []string{"type"}
		if key := kind.factorKey(); key != "" {
			allowed = append(allowed, key)
		}
		if err := rejectUnknownKeys(pairs, allowed...); err != nil {
			return err
		}
		out := Transformation{Kind: kind}
		if key := kind.factorKey(); key != "" {
			factorNode, ok := pairs[key]
			if !ok {
				return fmt.Errorf("transformation %q needs a %s", kind, key)
			}
			factor, err := decodeDecimal(factorNode)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			out.Factor = factor
		}
		*t = out
		return nil
	}

	// short form: a single key naming the transformation
	if len(pairs) != 1 {
		return fmt.Errorf("transformation mapping needs a type key or exactly one transformation name")
	}
	for name, value := range pairs {
		kind := TransformKind(strings.ToLower(name))
		if !kind.known() {
			return fmt.Errorf("unknown transformation %q", name)
		}
		out := Transformation{Kind: kind}
		if kind.factorKey() != "" {
			factor, err := decodeDecimal(value)
			if err != nil {
				return fmt.Errorf("%s: %w", kind.factorKey(), err)
			}
			out.Factor = factor
		}
		*t = out
	}
	return nil
}

// MarshalYAML writes the explicit {type, divisor|multiplier} form.
func (t Transformation) MarshalYAML() (interface{}, error) {
	out := map[string]string{"type": string(t.Kind)}
	if key := t.Kind.factorKey(); key != "" {
		out[key] = t.Factor.String()
	}
	return out, nil
}

func decodeDecimal(node *yaml.Node) (decimal.Decimal, error) {
	if node.Kind != yaml.ScalarNode {
		return decimal.Zero, fmt.Errorf("expected a number")
	}
	d, err := decimal.NewFromString(strings.TrimSpace(node.Value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("expected a number, got %q", node.Value)
	}
	if !currencyutils.InRange(d) {
		return decimal.Zero, fmt.Errorf("number %q is out of range", node.Value)
	}
	return d, nil
}
