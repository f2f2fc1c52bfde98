package models

import (
	"github.com/shopspring/decimal"
)

// ParsedPriceListItem is one supplier price-list row after mapping and
// transformation. Row is the 1-based physical line (or sheet row) it came from.
type ParsedPriceListItem struct {
	ProductVariantID string          `json:"product_variant_id,omitempty" yaml:"product_variant_id,omitempty"`
	ProductID        string          `json:"product_id,omitempty" yaml:"product_id,omitempty"`
	SupplierSKU      string          `json:"supplier_sku,omitempty" yaml:"supplier_sku,omitempty"`
	VariantSKU       string          `json:"variant_sku,omitempty" yaml:"variant_sku,omitempty"`
	CostPrice        decimal.Decimal `json:"cost_price" yaml:"cost_price"`
	Quantity         *int            `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	LeadTimeDays     *int            `json:"lead_time_days,omitempty" yaml:"lead_time_days,omitempty"`
	Notes            string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	Description      string          `json:"description,omitempty" yaml:"description,omitempty"`
	Row              int             `json:"row" yaml:"row"`
}

// Identifier returns the value of an identifier field.
func (i ParsedPriceListItem) Identifier(f Field) string {
	switch f {
	case FieldProductVariantID:
		return i.ProductVariantID
	case FieldProductID:
		return i.ProductID
	case FieldSupplierSKU:
		return i.SupplierSKU
	case FieldVariantSKU:
		return i.VariantSKU
	}
	return ""
}

// HasIdentifier reports whether at least one identifier is set.
func (i ParsedPriceListItem) HasIdentifier() bool {
	for _, f := range IdentifierFields() {
		if i.Identifier(f) != "" {
			return true
		}
	}
	return false
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
