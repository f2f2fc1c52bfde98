package models

// ParseResult is the outcome of one import run. Every counted data row adds
// either one item or one error; warnings never affect the counters.
type ParseResult struct {
	Items         []ParsedPriceListItem `json:"items" yaml:"items"`
	Errors        []string              `json:"errors" yaml:"errors"`
	TotalRows     int                   `json:"total_rows" yaml:"total_rows"`
	ProcessedRows int                   `json:"processed_rows" yaml:"processed_rows"`
	Warnings      []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewParseResult returns an empty result with non-nil slices.
func NewParseResult() *ParseResult {
	return &ParseResult{
		Items:  []ParsedPriceListItem{},
		Errors: []string{},
	}
}

// HasErrors reports whether any row failed.
func (r *ParseResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorRatio is the share of data rows that failed, 0 for an empty payload.
func (r *ParseResult) ErrorRatio() float64 {
	if r.TotalRows == 0 {
		return 0
	}
	return float64(len(r.Errors)) / float64(r.TotalRows)
}
