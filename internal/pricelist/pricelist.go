// Package pricelist persists supplier price lists and merges freshly parsed
// imports into them.
package pricelist

import (
	"context"
	"errors"
	"time"

	"fjacquet/pricelist-import/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a supplier has no stored price list yet.
var ErrNotFound = errors.New("price list not found")

// PriceList is the stored set of purchase prices of one supplier.
type PriceList struct {
	ID         uuid.UUID       `json:"id" yaml:"id"`
	SupplierID string          `json:"supplier_id" yaml:"supplier_id"`
	Name       string          `json:"name,omitempty" yaml:"name,omitempty"`
	Currency   string          `json:"currency,omitempty" yaml:"currency,omitempty"`
	Items      []PriceListItem `json:"items" yaml:"items"`
	CreatedAt  time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" yaml:"updated_at"`
}

// PriceListItem is the persisted form of a parsed row. Key identifies the item
// across imports.
type PriceListItem struct {
	Key              string          `json:"key" yaml:"key"`
	ProductVariantID string          `json:"product_variant_id,omitempty" yaml:"product_variant_id,omitempty"`
	ProductID        string          `json:"product_id,omitempty" yaml:"product_id,omitempty"`
	SupplierSKU      string          `json:"supplier_sku,omitempty" yaml:"supplier_sku,omitempty"`
	VariantSKU       string          `json:"variant_sku,omitempty" yaml:"variant_sku,omitempty"`
	CostPrice        decimal.Decimal `json:"cost_price" yaml:"cost_price"`
	Quantity         *int            `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	LeadTimeDays     *int            `json:"lead_time_days,omitempty" yaml:"lead_time_days,omitempty"`
	Notes            string          `json:"notes,omitempty" yaml:"notes,omitempty"`
	Description      string          `json:"description,omitempty" yaml:"description,omitempty"`
}

// Repository stores price lists, one per supplier.
type Repository interface {
	FindBySupplier(ctx context.Context, supplierID string) (*PriceList, error)
	Save(ctx context.Context, list *PriceList) error
	List(ctx context.Context) ([]PriceList, error)
}

// ItemKey returns the identity of a parsed item, taken from the first set
// identifier in the order product_variant_id, supplier_sku, variant_sku,
// product_id.
func ItemKey(item models.ParsedPriceListItem) string {
	for _, f := range models.IdentifierFields() {
		if v := item.Identifier(f); v != "" {
			return string(f) + ":" + v
		}
	}
	return ""
}

// FromParsed converts a parsed row into its persisted form.
func FromParsed(item models.ParsedPriceListItem) PriceListItem {
	return PriceListItem{
		Key:              ItemKey(item),
		ProductVariantID: item.ProductVariantID,
		ProductID:        item.ProductID,
		SupplierSKU:      item.SupplierSKU,
		VariantSKU:       item.VariantSKU,
		CostPrice:        item.CostPrice,
		Quantity:         copyInt(item.Quantity),
		LeadTimeDays:     copyInt(item.LeadTimeDays),
		Notes:            item.Notes,
		Description:      item.Description,
	}
}

// Equal reports whether two items carry the same data.
func (i PriceListItem) Equal(other PriceListItem) bool {
	return i.Key == other.Key &&
		i.ProductVariantID == other.ProductVariantID &&
		i.ProductID == other.ProductID &&
		i.SupplierSKU == other.SupplierSKU &&
		i.VariantSKU == other.VariantSKU &&
		i.CostPrice.Equal(other.CostPrice) &&
		equalInt(i.Quantity, other.Quantity) &&
		equalInt(i.LeadTimeDays, other.LeadTimeDays) &&
		i.Notes == other.Notes &&
		i.Description == other.Description
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	return models.IntPtr(*v)
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
