package models

import "strings"

// Field is a logical price-list field a source column can be mapped to.
type Field string

const (
	FieldProductVariantID Field = "product_variant_id"
	FieldProductID        Field = "product_id"
	FieldSupplierSKU      Field = "supplier_sku"
	FieldVariantSKU       Field = "variant_sku"
	FieldCostPrice        Field = "cost_price"
	FieldQuantity         Field = "quantity"
	FieldLeadTimeDays     Field = "lead_time_days"
	FieldNotes            Field = "notes"
	FieldDescription      Field = "description"
)

// targetFields lists every mappable field in the order items are assembled.
var targetFields = []Field{
	FieldProductVariantID,
	FieldProductID,
	FieldSupplierSKU,
	FieldVariantSKU,
	FieldCostPrice,
	FieldQuantity,
	FieldLeadTimeDays,
	FieldNotes,
	FieldDescription,
}

// fieldAliases are accepted in configurations in place of the canonical name.
var fieldAliases = map[string]Field{
	"sku": FieldSupplierSKU,
}

// TargetFields returns the mappable fields in canonical order.
func TargetFields() []Field {
	out := make([]Field, len(targetFields))
	copy(out, targetFields)
	return out
}

// NormalizeField resolves a configured field name (canonical or alias).
func NormalizeField(name string) (Field, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := fieldAliases[key]; ok {
		return alias, true
	}
	for _, f := range targetFields {
		if string(f) == key {
			return f, true
		}
	}
	return "", false
}

// IsIdentifier reports whether f identifies a product or supplier article.
func (f Field) IsIdentifier() bool {
	switch f {
	case FieldProductVariantID, FieldProductID, FieldSupplierSKU, FieldVariantSKU:
		return true
	}
	return false
}

// IdentifierFields returns the identifier fields in precedence order.
func IdentifierFields() []Field {
	return []Field{FieldProductVariantID, FieldSupplierSKU, FieldVariantSKU, FieldProductID}
}

func (f Field) String() string {
	return string(f)
}
