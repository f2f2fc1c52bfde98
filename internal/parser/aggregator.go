package parser

import (
	"fmt"

	"fjacquet/pricelist-import/internal/models"
)

// Aggregator collects the outcome of every data row of one payload.
// Each AddItem or AddError counts one data row; warnings are not rows.
type Aggregator struct {
	result *models.ParseResult
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{result: models.NewParseResult()}
}

// AddItem records a successfully mapped row.
func (a *Aggregator) AddItem(item models.ParsedPriceListItem) {
	a.result.TotalRows++
	a.result.ProcessedRows++
	a.result.Items = append(a.result.Items, item)
}

// AddError records a failed row.
func (a *Aggregator) AddError(row int, err error) {
	a.result.TotalRows++
	a.result.Errors = append(a.result.Errors, fmt.Sprintf("row %d: %v", row, err))
}

// AddWarning records a diagnostic. Row 0 means the warning is not tied to a row.
func (a *Aggregator) AddWarning(row int, msg string) {
	if row > 0 {
		msg = fmt.Sprintf("row %d: %s", row, msg)
	}
	a.result.Warnings = append(a.result.Warnings, msg)
}

// Result returns the collected result.
func (a *Aggregator) Result() *models.ParseResult {
	return a.result
}
