package models

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/pricelist-import/internal/currencyutils"
	"fjacquet/pricelist-import/internal/parsererror"
)

var (
	errRequired    = errors.New("is required")
	errNotPositive = errors.New("must be greater than zero")
	errNegative    = errors.New("must not be negative")
)

// PriceListItemBuilder provides a fluent API for assembling a ParsedPriceListItem
// from raw cell values. The first failure sticks and is returned by Build.
type PriceListItemBuilder struct {
	item     ParsedPriceListItem
	err      error
	costSeen bool
}

// NewPriceListItemBuilder starts an item for the given physical row.
func NewPriceListItemBuilder(row int) *PriceListItemBuilder {
	return &PriceListItemBuilder{item: ParsedPriceListItem{Row: row}}
}

func (b *PriceListItemBuilder) fail(f Field, value string, err error) *PriceListItemBuilder {
	b.err = &parsererror.RowError{Row: b.item.Row, Field: string(f), Value: value, Err: err}
	return b
}

// WithField routes a raw value to the setter of f.
func (b *PriceListItemBuilder) WithField(f Field, value string) *PriceListItemBuilder {
	switch f {
	case FieldCostPrice:
		return b.WithCostPrice(value)
	case FieldQuantity:
		return b.WithQuantity(value)
	case FieldLeadTimeDays:
		return b.WithLeadTimeDays(value)
	case FieldNotes:
		return b.WithNotes(value)
	case FieldDescription:
		return b.WithDescription(value)
	default:
		return b.WithIdentifier(f, value)
	}
}

// WithIdentifier sets one of the identifier fields. Blank values are ignored.
func (b *PriceListItemBuilder) WithIdentifier(f Field, value string) *PriceListItemBuilder {
	if b.err != nil || strings.TrimSpace(value) == "" {
		return b
	}
	switch f {
	case FieldProductVariantID:
		b.item.ProductVariantID = value
	case FieldProductID:
		b.item.ProductID = value
	case FieldSupplierSKU:
		b.item.SupplierSKU = value
	case FieldVariantSKU:
		b.item.VariantSKU = value
	default:
		b.err = fmt.Errorf("%s is not an identifier field", f)
	}
	return b
}

// WithCostPrice parses and sets the cost price, which must be positive.
func (b *PriceListItemBuilder) WithCostPrice(value string) *PriceListItemBuilder {
	if b.err != nil {
		return b
	}
	b.costSeen = true
	if strings.TrimSpace(value) == "" {
		return b.fail(FieldCostPrice, value, errRequired)
	}
	amount, err := currencyutils.ParseAmount(value)
	if err != nil {
		return b.fail(FieldCostPrice, value, err)
	}
	if !currencyutils.IsPositive(amount) {
		return b.fail(FieldCostPrice, value, errNotPositive)
	}
	b.item.CostPrice = amount
	return b
}

// WithQuantity sets the optional quantity; blank leaves it unset.
func (b *PriceListItemBuilder) WithQuantity(value string) *PriceListItemBuilder {
	if b.err != nil || strings.TrimSpace(value) == "" {
		return b
	}
	n, err := currencyutils.ParseWholeNumber(value)
	if err != nil {
		return b.fail(FieldQuantity, value, err)
	}
	if n <= 0 {
		return b.fail(FieldQuantity, value, errNotPositive)
	}
	b.item.Quantity = IntPtr(n)
	return b
}

// WithLeadTimeDays sets the optional lead time; blank leaves it unset.
func (b *PriceListItemBuilder) WithLeadTimeDays(value string) *PriceListItemBuilder {
	if b.err != nil || strings.TrimSpace(value) == "" {
		return b
	}
	n, err := currencyutils.ParseWholeNumber(value)
	if err != nil {
		return b.fail(FieldLeadTimeDays, value, err)
	}
	if n < 0 {
		return b.fail(FieldLeadTimeDays, value, errNegative)
	}
	b.item.LeadTimeDays = IntPtr(n)
	return b
}

// WithNotes sets free-text notes.
func (b *PriceListItemBuilder) WithNotes(value string) *PriceListItemBuilder {
	if b.err == nil {
		b.item.Notes = value
	}
	return b
}

// WithDescription sets the free-text description.
func (b *PriceListItemBuilder) WithDescription(value string) *PriceListItemBuilder {
	if b.err == nil {
		b.item.Description = value
	}
	return b
}

// Build validates the item invariants and returns it.
func (b *PriceListItemBuilder) Build() (ParsedPriceListItem, error) {
	if b.err != nil {
		return ParsedPriceListItem{}, b.err
	}
	if !b.costSeen {
		return ParsedPriceListItem{}, &parsererror.RowError{Row: b.item.Row, Field: string(FieldCostPrice), Err: errRequired}
	}
	if !b.item.HasIdentifier() {
		return ParsedPriceListItem{}, parsererror.NewRowError(b.item.Row,
			"no identifier: one of product_variant_id, supplier_sku, variant_sku, product_id is required")
	}
	return b.item, nil
}
